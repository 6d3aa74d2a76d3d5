/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

// Package cdn talks to the package CDN that serves ES modules and their
// TypeScript declarations: fetching declaration text, probing package
// entries for their declaration header, and caching what was fetched.
package cdn

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/tinywasm/fetch"
)

// Fetcher provides an abstraction over HTTP fetching.
type Fetcher interface {
	// Fetch retrieves content from the given URL.
	// Returns the response body bytes or an error if the request fails.
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher implements Fetcher using tinywasm/fetch.
type HTTPFetcher struct{}

// NewHTTPFetcher creates a new HTTP fetcher.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{}
}

// Fetch retrieves content from the given URL. Transport failures and 5xx
// responses come back wrapped in RetryableError.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	type result struct {
		body []byte
		err  error
	}
	done := make(chan result, 1)

	fetch.Get(url).Send(func(resp *fetch.Response, err error) {
		if err != nil {
			done <- result{nil, &RetryableError{Err: &FetchError{URL: url, Message: err.Error()}}}
			return
		}
		if resp.Status < 200 || resp.Status > 299 {
			done <- result{nil, statusError(url, resp.Status)}
			return
		}
		done <- result{resp.Body(), nil}
	})

	select {
	case r := <-done:
		return r.body, r.err
	case <-ctx.Done():
		return nil, &FetchError{URL: url, Message: ctx.Err().Error()}
	}
}

// RetryingFetcher retries transient failures of the wrapped Fetcher.
type RetryingFetcher struct {
	fetcher  Fetcher
	attempts int
	delay    time.Duration
}

// NewRetryingFetcher wraps f so that retryable errors are attempted up to
// attempts times, doubling delay between tries.
func NewRetryingFetcher(f Fetcher, attempts int, delay time.Duration) *RetryingFetcher {
	return &RetryingFetcher{fetcher: f, attempts: attempts, delay: delay}
}

// Fetch implements Fetcher.
func (r *RetryingFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := Retry(ctx, r.attempts, r.delay, func() error {
		var err error
		body, err = r.fetcher.Fetch(ctx, url)
		return err
	})
	return body, err
}

// FetchError represents an HTTP fetch error with status information.
type FetchError struct {
	URL        string
	StatusCode int
	Message    string
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: HTTP %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("fetch %s: %s", e.URL, e.Message)
}

// IsNotFound returns true if the error represents a 404 Not Found response.
func (e *FetchError) IsNotFound() bool {
	return e.StatusCode == 404
}

// statusError builds the error for a non-2xx response. Server errors are
// retryable, client errors are not.
func statusError(url string, status int) error {
	err := &FetchError{
		URL:        url,
		StatusCode: status,
		Message:    http.StatusText(status),
	}
	if status >= 500 {
		return &RetryableError{Err: err}
	}
	return err
}
