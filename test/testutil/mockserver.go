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

// Package testutil provides common test helpers for threads-scraper
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/tidwall/gjson"
)

// PostPageHTML renders a minimal post page carrying the two embedded values
// the payload resolver looks for: the numeric post id inside a relay data
// blob and the fb_dtsg token in the __eqmc script.
func PostPageHTML(postID, fbDtsg string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<script>window.__openerPolicy = "restrict";</script>
<script type="application/json" data-sjs>{"require":[["RelayPrefetchedStreamCache","next",[],[{"__bbox":{"result":{"data":{"data":{"post_id":%q}}}}}]]]}</script>
<script type="application/json" id="__eqmc">{"u":"/ajax/qm?__a=1","e":42,"f":%q}</script>
</head>
<body></body>
</html>`, postID, fbDtsg)
}

// ThreadsServer mocks the two endpoints one fetch run talks to: the post
// page (GET, any path containing /post/) and the reply-listing endpoint
// (POST <base>/api/graphql). Listing responses are registered per cursor
// with AddPage; the first page uses cursor "".
type ThreadsServer struct {
	*httptest.Server

	PostID string
	FBDtsg string

	graphqlCalls int32

	mu            sync.Mutex
	pagesByCursor map[string]map[string]interface{}
	gotCursors    []string
	gotForms      []url.Values
	gotPageCookie string
	failCount     int
	failStatus    int
}

// NewThreadsServer creates a mock server that resolves to the given post id
// and fb_dtsg token. Register listing pages with AddPage before running the
// scraper against it.
func NewThreadsServer(t *testing.T, postID, fbDtsg string) *ThreadsServer {
	t.Helper()

	s := &ThreadsServer{
		PostID:        postID,
		FBDtsg:        fbDtsg,
		pagesByCursor: make(map[string]map[string]interface{}),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// AddPage registers the listing response served for the given cursor.
func (s *ThreadsServer) AddPage(cursor string, response map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pagesByCursor[cursor] = response
}

// FailListingRequests makes the next n listing requests answer with the
// given status code before normal responses resume. Post page requests are
// never failed.
func (s *ThreadsServer) FailListingRequests(n, statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failCount = n
	s.failStatus = statusCode
}

// PostURL returns a post page URL on this server for the given handle and
// shortcode, in the shape the CLI accepts.
func (s *ThreadsServer) PostURL(handle, code string) string {
	return fmt.Sprintf("%s/@%s/post/%s", s.URL, handle, code)
}

// GraphQLEndpoint returns the listing endpoint URL on this server.
func (s *ThreadsServer) GraphQLEndpoint() string {
	return s.URL + "/api/graphql"
}

// GraphQLCalls returns how many listing requests the server has seen.
func (s *ThreadsServer) GraphQLCalls() int {
	return int(atomic.LoadInt32(&s.graphqlCalls))
}

// Cursors returns the "after" cursor of every listing request, in order.
func (s *ThreadsServer) Cursors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	cursors := make([]string, len(s.gotCursors))
	copy(cursors, s.gotCursors)
	return cursors
}

// LastForm returns the form body of the most recent listing request.
func (s *ThreadsServer) LastForm() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.gotForms) == 0 {
		return nil
	}
	return s.gotForms[len(s.gotForms)-1]
}

// PageCookie returns the Cookie header of the most recent post page request.
func (s *ThreadsServer) PageCookie() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gotPageCookie
}

func (s *ThreadsServer) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/api/graphql"):
		s.handleGraphQL(w, r)
	case strings.Contains(r.URL.Path, "/post/"):
		s.mu.Lock()
		s.gotPageCookie = r.Header.Get("Cookie")
		s.mu.Unlock()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, PostPageHTML(s.PostID, s.FBDtsg))
	default:
		http.NotFound(w, r)
	}
}

func (s *ThreadsServer) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&s.graphqlCalls, 1)

	s.mu.Lock()
	if s.failCount > 0 {
		s.failCount--
		status := s.failStatus
		s.mu.Unlock()
		w.WriteHeader(status)
		_, _ = w.Write([]byte(http.StatusText(status)))
		return
	}
	s.mu.Unlock()

	if err := r.ParseForm(); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	after := gjson.Get(r.PostFormValue("variables"), "after").String()

	s.mu.Lock()
	s.gotCursors = append(s.gotCursors, after)
	s.gotForms = append(s.gotForms, r.PostForm)
	page, ok := s.pagesByCursor[after]
	s.mu.Unlock()

	if !ok {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `{"errors":[{"message":"no page registered for cursor %q"}]}`, after)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(page)
}

// NewErrorServer creates a mock server that always returns the specified error
func NewErrorServer(t *testing.T, statusCode int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(statusCode)
		_, _ = w.Write([]byte(http.StatusText(statusCode)))
	}))
}
