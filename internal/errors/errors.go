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

// Package errors defines sentinel errors for consistent error handling across the application.
// These errors map to specific exit codes in the CLI for proper scripting support.
package errors

import "errors"

// Sentinel errors for consistent error handling and exit code mapping
var (
	// ErrInvalidInput indicates a malformed post URL or an unsupported
	// output format selector. Maps to exit code 1.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCookie indicates the session cookie is missing or was
	// rejected by the platform. Maps to exit code 2.
	ErrInvalidCookie = errors.New("invalid session cookie")

	// ErrRateLimit indicates the platform throttled our requests.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("threads rate limit exceeded")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrPostNotFound indicates the post does not exist or is not visible
	// to the authenticated session. Maps to exit code 1.
	ErrPostNotFound = errors.New("post not found")

	// ErrBadResponse indicates a response payload without the expected
	// shape: no reply array, missing page scripts, or invalid JSON.
	// Maps to exit code 1.
	ErrBadResponse = errors.New("unexpected response shape")

	// ErrOutputWrite indicates the output file could not be written.
	// Maps to exit code 1.
	ErrOutputWrite = errors.New("cannot write output")
)
