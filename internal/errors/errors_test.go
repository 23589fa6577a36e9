// Copyright 2025 The threads-scraper Authors
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		want     bool
	}{
		{
			name:     "direct invalid cookie error",
			err:      ErrInvalidCookie,
			sentinel: ErrInvalidCookie,
			want:     true,
		},
		{
			name:     "wrapped invalid cookie error",
			err:      fmt.Errorf("authentication rejected by threads: %w", ErrInvalidCookie),
			sentinel: ErrInvalidCookie,
			want:     true,
		},
		{
			name:     "different error type",
			err:      ErrBadResponse,
			sentinel: ErrInvalidCookie,
			want:     false,
		},
		{
			name:     "wrapped network error",
			err:      fmt.Errorf("connection failed: %w", ErrNetworkFailure),
			sentinel: ErrNetworkFailure,
			want:     true,
		},
		{
			name:     "double wrapped output error",
			err:      fmt.Errorf("export failed: %w", fmt.Errorf("mkdir: %w", ErrOutputWrite)),
			sentinel: ErrOutputWrite,
			want:     true,
		},
		{
			name:     "nil error",
			err:      nil,
			sentinel: ErrInvalidCookie,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errors.Is(tt.err, tt.sentinel)
			if got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", tt.err, tt.sentinel, got, tt.want)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrInvalidInput, "invalid input"},
		{ErrInvalidCookie, "invalid session cookie"},
		{ErrRateLimit, "threads rate limit exceeded"},
		{ErrNetworkFailure, "network connection failed"},
		{ErrPostNotFound, "post not found"},
		{ErrBadResponse, "unexpected response shape"},
		{ErrOutputWrite, "cannot write output"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
