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

package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

// buildJSON marshals a builder result so gjson can walk the same paths the
// response parser walks.
func buildJSON(t *testing.T, v map[string]interface{}) string {
	t.Helper()

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Failed to marshal fixture: %v", err)
	}
	return string(data)
}

func TestReplyBuilderDefaults(t *testing.T) {
	edge := buildJSON(t, NewReplyBuilder("42").Build())

	post := gjson.Get(edge, "node.thread_items.0.post")
	if !post.Exists() {
		t.Fatal("Edge missing node.thread_items.0.post")
	}

	if got := post.Get("id").String(); got != "42" {
		t.Errorf("Expected id 42, got %q", got)
	}
	if got := post.Get("code").String(); got != "C42" {
		t.Errorf("Expected code C42, got %q", got)
	}
	if got := post.Get("user.username").String(); got != "user42" {
		t.Errorf("Expected username user42, got %q", got)
	}
	if got := post.Get("caption.text").String(); got != "reply 42" {
		t.Errorf("Expected text %q, got %q", "reply 42", got)
	}
	if !post.Get("taken_at").Exists() {
		t.Error("Post missing taken_at")
	}
	if !post.Get("text_post_app_info.direct_reply_count").Exists() {
		t.Error("Post missing text_post_app_info.direct_reply_count")
	}
}

func TestReplyBuilderOptions(t *testing.T) {
	edge := buildJSON(t, NewReplyBuilder("7").
		WithUsername("alice").
		WithDisplayName("Alice Example").
		WithVerified().
		WithText("hello there").
		WithCounts(5, 1, 2, 3).
		WithImages("https://example.com/a.jpg", "https://example.com/b.jpg").
		Build())

	post := gjson.Get(edge, "node.thread_items.0.post")

	if got := post.Get("user.username").String(); got != "alice" {
		t.Errorf("Expected username alice, got %q", got)
	}
	if got := post.Get("user.full_name").String(); got != "Alice Example" {
		t.Errorf("Expected full_name %q, got %q", "Alice Example", got)
	}
	if !post.Get("user.is_verified").Bool() {
		t.Error("Expected is_verified true")
	}
	if got := post.Get("like_count").Int(); got != 5 {
		t.Errorf("Expected like_count 5, got %d", got)
	}
	if got := post.Get("text_post_app_info.quote_count").Int(); got != 3 {
		t.Errorf("Expected quote_count 3, got %d", got)
	}

	candidates := post.Get("image_versions2.candidates")
	if len(candidates.Array()) != 2 {
		t.Fatalf("Expected 2 image candidates, got %d", len(candidates.Array()))
	}
	if got := candidates.Get("0.url").String(); got != "https://example.com/a.jpg" {
		t.Errorf("Expected first candidate url, got %q", got)
	}
}

func TestReplyBuilderMalformed(t *testing.T) {
	noUser := buildJSON(t, NewReplyBuilder("1").WithoutUser().Build())
	if gjson.Get(noUser, "node.thread_items.0.post.user").Exists() {
		t.Error("WithoutUser should drop the user block")
	}

	noText := buildJSON(t, NewReplyBuilder("2").WithoutText().Build())
	if gjson.Get(noText, "node.thread_items.0.post.caption").Exists() {
		t.Error("WithoutText should drop the caption block")
	}
}

func TestReplyPageBuilder(t *testing.T) {
	page := buildJSON(t, NewReplyPageBuilder().
		WithReplies(
			NewReplyBuilder("1").Build(),
			NewReplyBuilder("2").Build(),
		).
		WithPagination(true, "abc").
		Build())

	edges := gjson.Get(page, "data.data.edges")
	if !edges.IsArray() {
		t.Fatal("Page missing data.data.edges array")
	}
	if got := len(edges.Array()); got != 2 {
		t.Fatalf("Expected 2 edges, got %d", got)
	}

	if !gjson.Get(page, "data.data.page_info.has_next_page").Bool() {
		t.Error("Expected has_next_page true")
	}
	if got := gjson.Get(page, "data.data.page_info.end_cursor").String(); got != "abc" {
		t.Errorf("Expected end_cursor abc, got %q", got)
	}
}

func TestReplyPageBuilderLastPage(t *testing.T) {
	page := buildJSON(t, NewReplyPageBuilder().
		WithReplies(NewReplyBuilder("1").Build()).
		Build())

	if gjson.Get(page, "data.data.page_info.has_next_page").Bool() {
		t.Error("Expected has_next_page false by default")
	}
	if got := gjson.Get(page, "data.data.page_info.end_cursor").String(); got != "" {
		t.Errorf("Expected empty end_cursor, got %q", got)
	}
}

func TestReplyPageBuilderError(t *testing.T) {
	page := buildJSON(t, NewReplyPageBuilder().
		WithError("login_required").
		Build())

	if got := gjson.Get(page, "errors.0.message").String(); got != "login_required" {
		t.Errorf("Expected error message login_required, got %q", got)
	}
	if gjson.Get(page, "data").Exists() {
		t.Error("Error response should not carry data")
	}
}

func TestGenerateReplyPage(t *testing.T) {
	tests := []struct {
		name       string
		startNum   int
		endNum     int
		hasMore    bool
		wantCount  int
		wantCursor string
	}{
		{
			name:      "single reply",
			startNum:  1,
			endNum:    1,
			hasMore:   false,
			wantCount: 1,
		},
		{
			name:       "multiple replies with cursor",
			startNum:   1,
			endNum:     5,
			hasMore:    true,
			wantCount:  5,
			wantCursor: "cursor5",
		},
		{
			name:      "empty range",
			startNum:  5,
			endNum:    3,
			hasMore:   false,
			wantCount: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := buildJSON(t, GenerateReplyPage(tt.startNum, tt.endNum, tt.hasMore))

			edges := gjson.Get(page, "data.data.edges").Array()
			if len(edges) != tt.wantCount {
				t.Fatalf("Expected %d edges, got %d", tt.wantCount, len(edges))
			}

			if tt.wantCount > 0 {
				want := fmt.Sprintf("%d", tt.startNum)
				if first := edges[0].Get("node.thread_items.0.post.id").String(); first != want {
					t.Errorf("Expected first id %q, got %q", want, first)
				}
			}

			if got := gjson.Get(page, "data.data.page_info.end_cursor").String(); got != tt.wantCursor {
				t.Errorf("Expected cursor %q, got %q", tt.wantCursor, got)
			}
		})
	}
}

func TestThreadsServerPostPage(t *testing.T) {
	server := NewThreadsServer(t, "3141592653589793238", "test-dtsg")
	defer server.Close()

	req, err := http.NewRequest(http.MethodGet, server.PostURL("alice", "C123"), nil)
	AssertNoError(t, err)
	req.Header.Set("Cookie", "sessionid=abc")

	resp, err := http.DefaultClient.Do(req)
	AssertNoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("Expected html content type, got %q", ct)
	}

	body, err := io.ReadAll(resp.Body)
	AssertNoError(t, err)

	AssertContainsString(t, string(body), "3141592653589793238")
	AssertContainsString(t, string(body), "test-dtsg")
	AssertEqual(t, server.PageCookie(), "sessionid=abc")
}

func TestThreadsServerListing(t *testing.T) {
	server := NewThreadsServer(t, "314", "dtsg")
	defer server.Close()

	server.AddPage("", GenerateReplyPage(1, 2, true))
	server.AddPage("cursor2", GenerateReplyPage(3, 3, false))

	post := func(after string) *http.Response {
		t.Helper()
		variables := `{"postID":"314"}`
		if after != "" {
			variables = `{"postID":"314","after":"` + after + `"}`
		}
		resp, err := http.PostForm(server.GraphQLEndpoint(), url.Values{
			"fb_dtsg":   {"dtsg"},
			"doc_id":    {"8675309"},
			"variables": {variables},
		})
		AssertNoError(t, err)
		return resp
	}

	resp := post("")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	AssertNoError(t, err)
	if got := len(gjson.GetBytes(body, "data.data.edges").Array()); got != 2 {
		t.Errorf("Expected 2 edges on first page, got %d", got)
	}

	resp2 := post("cursor2")
	defer resp2.Body.Close()
	body2, err := io.ReadAll(resp2.Body)
	AssertNoError(t, err)
	if got := len(gjson.GetBytes(body2, "data.data.edges").Array()); got != 1 {
		t.Errorf("Expected 1 edge on second page, got %d", got)
	}

	AssertEqual(t, server.GraphQLCalls(), 2)

	cursors := server.Cursors()
	if len(cursors) != 2 || cursors[0] != "" || cursors[1] != "cursor2" {
		t.Errorf("Expected cursors [\"\" cursor2], got %v", cursors)
	}

	form := server.LastForm()
	AssertEqual(t, form.Get("fb_dtsg"), "dtsg")
	AssertEqual(t, form.Get("doc_id"), "8675309")
}

func TestThreadsServerUnknownCursor(t *testing.T) {
	server := NewThreadsServer(t, "314", "dtsg")
	defer server.Close()

	resp, err := http.PostForm(server.GraphQLEndpoint(), url.Values{
		"variables": {`{"postID":"314","after":"nope"}`},
	})
	AssertNoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected status 404 for unregistered cursor, got %d", resp.StatusCode)
	}
}

func TestThreadsServerTransientFailures(t *testing.T) {
	server := NewThreadsServer(t, "314", "dtsg")
	defer server.Close()

	server.AddPage("", GenerateReplyPage(1, 1, false))
	server.FailListingRequests(1, http.StatusTooManyRequests)

	resp, err := http.PostForm(server.GraphQLEndpoint(), url.Values{
		"variables": {`{"postID":"314"}`},
	})
	AssertNoError(t, err)
	resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429 on first call, got %d", resp.StatusCode)
	}

	resp2, err := http.PostForm(server.GraphQLEndpoint(), url.Values{
		"variables": {`{"postID":"314"}`},
	})
	AssertNoError(t, err)
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 after failures drained, got %d", resp2.StatusCode)
	}

	AssertEqual(t, server.GraphQLCalls(), 2)
}
