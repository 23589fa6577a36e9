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

package threads

import (
	"fmt"
	"net/url"
	"strings"

	scrapererrors "github.com/dimadisaputra/threads-scraper/internal/errors"
)

// ParsePostURL validates a Threads post URL and decomposes it into the
// author handle and post code. The expected path shape is
// /@<handle>/post/<code>, as in:
//
//	https://www.threads.net/@zuck/post/C9-tPByRVDO
//
// The host is not checked so that mirrors (threads.com) and test servers
// work; only the path shape matters. Query parameters and fragments are
// ignored.
func ParsePostURL(rawURL string) (*PostReference, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("malformed post URL %q: %w", rawURL, scrapererrors.ErrInvalidInput)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("post URL %q must use http or https: %w", rawURL, scrapererrors.ErrInvalidInput)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("post URL %q is missing a host: %w", rawURL, scrapererrors.ErrInvalidInput)
	}

	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) != 3 || segments[1] != "post" {
		return nil, fmt.Errorf("post URL %q does not match /@handle/post/code: %w", rawURL, scrapererrors.ErrInvalidInput)
	}

	handle, code := segments[0], segments[2]
	if !strings.HasPrefix(handle, "@") || len(handle) < 2 {
		return nil, fmt.Errorf("post URL %q is missing an author handle: %w", rawURL, scrapererrors.ErrInvalidInput)
	}
	if code == "" {
		return nil, fmt.Errorf("post URL %q is missing a post code: %w", rawURL, scrapererrors.ErrInvalidInput)
	}

	return &PostReference{
		Handle: strings.TrimPrefix(handle, "@"),
		Code:   code,
	}, nil
}
