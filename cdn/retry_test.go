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
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	tests := []struct {
		name      string
		failures  int
		retryable bool
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first time", 0, true, 3, 1, false},
		{"succeeds after transient failures", 2, true, 3, 3, false},
		{"gives up after attempts", 5, true, 3, 3, true},
		{"permanent error is not retried", 5, false, 3, 1, true},
		{"zero attempts still runs once", 0, true, 0, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					base := errors.New("boom")
					if tt.retryable {
						return &RetryableError{Err: base}
					}
					return base
				}
				return nil
			})
			if (err != nil) != tt.wantErr {
				t.Errorf("Retry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("Retry() made %d calls, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return &RetryableError{Err: errors.New("transient")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestStatusError(t *testing.T) {
	err := statusError("https://esm.sh/missing", 404)
	if IsRetryable(err) {
		t.Error("404 should not be retryable")
	}
	fe, ok := AsFetchError(err)
	if !ok || !fe.IsNotFound() {
		t.Errorf("Expected not-found FetchError, got %v", err)
	}

	err = statusError("https://esm.sh/broken", 502)
	if !IsRetryable(err) {
		t.Error("502 should be retryable")
	}
	fe, ok = AsFetchError(err)
	if !ok || fe.StatusCode != 502 {
		t.Errorf("Expected FetchError with status 502, got %v", err)
	}
}
