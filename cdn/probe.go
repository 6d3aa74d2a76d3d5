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

package cdn

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/tinywasm/fetch"

	"bennypowers.dev/scatola/internal/logging"
	"bennypowers.dev/scatola/internal/version"
)

// DeclarationRef links a package entry URL to the declaration entry the
// CDN advertised for it.
type DeclarationRef struct {
	PackageURL string
	TypesURL   string
}

// Prober requests package entry modules and reads the declaration header
// from the response. Only the header matters; the body is discarded.
type Prober struct {
	header   string
	timeout  time.Duration
	logger   logging.Logger
	attempts int
	delay    time.Duration
}

// NewProber creates a Prober reading DefaultTypesHeader.
func NewProber() *Prober {
	return &Prober{
		header:   DefaultTypesHeader,
		timeout:  15 * time.Second,
		attempts: 3,
		delay:    500 * time.Millisecond,
	}
}

// WithProvider returns a new Prober reading the provider's header.
func (p *Prober) WithProvider(provider Provider) *Prober {
	c := *p
	c.header = provider.Header()
	return &c
}

// WithLogger returns a new Prober with the specified logger.
func (p *Prober) WithLogger(logger logging.Logger) *Prober {
	c := *p
	c.logger = logger
	return &c
}

// WithRetry returns a new Prober retrying transient failures up to
// attempts times, starting at delay.
func (p *Prober) WithRetry(attempts int, delay time.Duration) *Prober {
	c := *p
	c.attempts = attempts
	c.delay = delay
	return &c
}

// WithTimeout returns a new Prober giving each request d to complete.
func (p *Prober) WithTimeout(d time.Duration) *Prober {
	c := *p
	c.timeout = d
	return &c
}

// Probe fetches rawURL and returns the declaration entry it advertises.
// A response without the header yields ok == false and no error. A
// relative header value is resolved against rawURL.
func (p *Prober) Probe(ctx context.Context, rawURL string) (ref DeclarationRef, ok bool, err error) {
	err = Retry(ctx, p.attempts, p.delay, func() error {
		ref, ok, err = p.probe(ctx, rawURL)
		return err
	})
	return ref, ok, err
}

type probeResult struct {
	ref DeclarationRef
	ok  bool
	err error
}

func (p *Prober) probe(ctx context.Context, rawURL string) (DeclarationRef, bool, error) {
	base, err := url.Parse(rawURL)
	if err != nil {
		return DeclarationRef{}, false, &FetchError{URL: rawURL, Message: err.Error()}
	}

	done := make(chan probeResult, 1)
	fetch.Get(rawURL).
		Header("User-Agent", version.UserAgent()).
		Timeout(int(p.timeout.Milliseconds())).
		Send(func(resp *fetch.Response, err error) {
			if err != nil {
				done <- probeResult{err: &RetryableError{Err: &FetchError{URL: rawURL, Message: err.Error()}}}
				return
			}
			done <- p.read(rawURL, base, resp)
		})

	select {
	case r := <-done:
		return r.ref, r.ok, r.err
	case <-ctx.Done():
		return DeclarationRef{}, false, &FetchError{URL: rawURL, Message: ctx.Err().Error()}
	}
}

// read turns a response into a probe result. A relative header value is
// resolved against the requested URL, not a redirect target.
func (p *Prober) read(rawURL string, base *url.URL, resp *fetch.Response) probeResult {
	if resp.Status < 200 || resp.Status > 299 {
		return probeResult{err: statusError(rawURL, resp.Status)}
	}

	value := resp.GetHeader(p.header)
	if value == "" {
		if p.logger != nil {
			p.logger.Debug("No %s header on %s", p.header, rawURL)
		}
		return probeResult{}
	}

	typesURL, err := base.Parse(value)
	if err != nil {
		return probeResult{err: fmt.Errorf("invalid %s header %q from %s: %w", p.header, value, rawURL, err)}
	}
	return probeResult{ref: DeclarationRef{PackageURL: rawURL, TypesURL: typesURL.String()}, ok: true}
}
