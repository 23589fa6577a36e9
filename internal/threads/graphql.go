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
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/dimadisaputra/threads-scraper/internal/apierror"
	scrapererrors "github.com/dimadisaputra/threads-scraper/internal/errors"
)

// relayProviderFlags are feature flags the web client sends alongside every
// reply-listing query. The endpoint rejects requests that omit them, so they
// are reproduced verbatim.
var relayProviderFlags = map[string]bool{
	"__relay_internal__pv__BarcelonaIsLoggedInrelayprovider":                        true,
	"__relay_internal__pv__BarcelonaShouldShowFediverseM1Featuresrelayprovider":     true,
	"__relay_internal__pv__BarcelonaIsInlineReelsEnabledrelayprovider":              true,
	"__relay_internal__pv__BarcelonaUseCometVideoPlaybackEnginerelayprovider":       false,
	"__relay_internal__pv__BarcelonaOptionalCookiesEnabledrelayprovider":            false,
	"__relay_internal__pv__BarcelonaShowReshareCountrelayprovider":                  false,
	"__relay_internal__pv__BarcelonaQuotePostImpressionLoggingEnabledrelayprovider": false,
	"__relay_internal__pv__BarcelonaShouldShowFediverseM075Featuresrelayprovider":   true,
}

// ClientConfig holds everything a GraphQLClient needs to issue authenticated
// reply-listing requests. Cookie and FBDtsg come from the user's browser
// session; the remaining fields default from configuration.
type ClientConfig struct {
	// Endpoint is the internal GraphQL endpoint URL.
	Endpoint string

	// Cookie is the raw session cookie string from a logged-in browser session.
	Cookie string

	// FBDtsg is the per-session CSRF token scraped from the post page.
	FBDtsg string

	// DocID identifies the persisted reply-listing query on the server.
	DocID string

	// AppID is sent as the X-IG-App-ID header.
	AppID string

	// UserAgent is sent as the User-Agent header.
	UserAgent string

	// Timeout bounds each request. Zero means no timeout.
	Timeout time.Duration
}

// GraphQLClient implements the Client interface against the Threads internal
// GraphQL endpoint. Unlike a standard GraphQL API, the endpoint takes
// form-encoded POST requests naming a persisted query by doc_id; the
// response is ordinary JSON. The client provides pagination, error
// classification, and safety features like timeouts and response size
// limits.
type GraphQLClient struct {
	httpClient *http.Client
	cfg        ClientConfig
	inspector  apierror.Inspector
}

// NewGraphQLClient creates a new client for the reply-listing endpoint.
// The client is configured with:
//   - Session cookie authentication on every request
//   - Response size limiting to prevent memory issues
//   - The User-Agent and X-IG-App-ID headers the web client sends
//   - Optimized connection pooling for API performance
func NewGraphQLClient(cfg ClientConfig) *GraphQLClient {
	// Create optimized transport with connection pooling
	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 10, // Increased from default 2
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true, // Ensure HTTP/2 is used
	}

	httpClient := &http.Client{
		Transport: &sessionTransport{
			cookie:    cfg.Cookie,
			appID:     cfg.AppID,
			userAgent: cfg.UserAgent,
			base:      transport,
		},
		Timeout: cfg.Timeout,
	}

	return &GraphQLClient{
		httpClient: httpClient,
		cfg:        cfg,
		inspector:  apierror.NewInspector(),
	}
}

// FetchReplyPage fetches a page of replies to the post identified by its
// numeric postID. It supports cursor-based pagination via the opts.After
// parameter. The method returns a ReplyPage containing the flattened replies
// and the pagination information needed to fetch subsequent pages.
func (c *GraphQLClient) FetchReplyPage(ctx context.Context, postID string, opts FetchOptions) (*ReplyPage, error) {
	form, err := c.buildForm(postID, opts.After)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query variables: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.mapError(err, postID)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.mapError(err, postID)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapError(fmt.Errorf("threads api returned status %s", resp.Status), postID)
	}

	page, err := parseReplyPage(body)
	if err != nil {
		return nil, c.mapError(err, postID)
	}

	return page, nil
}

// buildForm assembles the form-encoded body of a persisted-query request:
// the fb_dtsg token, the doc_id naming the query, and the JSON-encoded
// variables including the pagination cursor.
func (c *GraphQLClient) buildForm(postID, after string) (url.Values, error) {
	variables := map[string]interface{}{
		"postID": postID,
	}
	for flag, enabled := range relayProviderFlags {
		variables[flag] = enabled
	}
	if after != "" {
		variables["after"] = after
	}

	encoded, err := json.Marshal(variables)
	if err != nil {
		return nil, err
	}

	form := url.Values{}
	form.Set("fb_dtsg", c.cfg.FBDtsg)
	form.Set("doc_id", c.cfg.DocID)
	form.Set("variables", string(encoded))
	return form, nil
}

// parseReplyPage converts a raw response body into the domain model. The
// reply nodes live at data.data.edges and the cursor at data.data.page_info;
// a body without the edges array is an extraction failure.
func parseReplyPage(body []byte) (*ReplyPage, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response is not valid JSON: %w", scrapererrors.ErrBadResponse)
	}

	// The endpoint reports failures like login_required inside a 200 body.
	if errMsg := gjson.GetBytes(body, "errors.0.message"); errMsg.Exists() {
		return nil, fmt.Errorf("threads api error: %s", errMsg.String())
	}

	edges := gjson.GetBytes(body, "data.data.edges")
	if !edges.IsArray() {
		return nil, fmt.Errorf("no reply array at data.data.edges: %w", scrapererrors.ErrBadResponse)
	}

	pageInfo := gjson.GetBytes(body, "data.data.page_info")
	page := &ReplyPage{
		HasNextPage: pageInfo.Get("has_next_page").Bool(),
		EndCursor:   pageInfo.Get("end_cursor").String(),
	}

	edgeList := edges.Array()
	page.Replies = make([]ReplyRecord, 0, len(edgeList))
	for _, edge := range edgeList {
		record, ok := extractRecord(edge.Get("node.thread_items.0.post"))
		if !ok {
			page.Dropped++
			continue
		}
		page.Replies = append(page.Replies, record)
	}

	return page, nil
}

// extractRecord flattens one reply node into a ReplyRecord. The boolean is
// false when the node lacks an author handle or text, which marks it
// malformed and excluded from output.
func extractRecord(post gjson.Result) (ReplyRecord, bool) {
	if !post.Exists() {
		return ReplyRecord{}, false
	}

	username := post.Get("user.username").String()
	text := post.Get("caption.text").String()
	if username == "" || text == "" {
		return ReplyRecord{}, false
	}

	record := ReplyRecord{
		ID:                   post.Get("id").String(),
		Code:                 post.Get("code").String(),
		Timestamp:            time.Unix(post.Get("taken_at").Int(), 0).UTC(),
		LikeCount:            int(post.Get("like_count").Int()),
		DirectReplyCount:     int(post.Get("text_post_app_info.direct_reply_count").Int()),
		RepostCount:          int(post.Get("text_post_app_info.repost_count").Int()),
		QuoteCount:           int(post.Get("text_post_app_info.quote_count").Int()),
		UserID:               post.Get("user.id").String(),
		Username:             username,
		DisplayName:          post.Get("user.full_name").String(),
		IsVerified:           post.Get("user.is_verified").Bool(),
		ProfilePicURL:        post.Get("user.profile_pic_url").String(),
		Text:                 text,
		MediaType:            int(post.Get("media_type").Int()),
		AccessibilityCaption: post.Get("accessibility_caption").String(),
	}

	for _, candidate := range post.Get("image_versions2.candidates").Array() {
		if u := candidate.Get("url").String(); u != "" {
			record.ImageURLs = append(record.ImageURLs, u)
		}
	}

	return record, true
}

// mapError maps request errors to our domain errors with actionable messages
func (c *GraphQLClient) mapError(err error, postID string) error {
	if err == nil {
		return nil
	}

	// Use the inspector to classify errors
	// Check rate limit first, as 403 can be both auth and rate limit
	if c.inspector.IsRateLimitError(err) {
		return fmt.Errorf("threads rate limit exceeded. Please wait before retrying: %w", scrapererrors.ErrRateLimit)
	}

	if c.inspector.IsAuthError(err) {
		return fmt.Errorf("threads rejected the session. Please provide a fresh cookie from a logged-in browser session: %w", scrapererrors.ErrInvalidCookie)
	}

	if c.inspector.IsNotFoundError(err) {
		return fmt.Errorf("post %s not found. It may have been deleted or made private: %w", postID, scrapererrors.ErrPostNotFound)
	}

	if c.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error connecting to the threads api: %v: %w", err, scrapererrors.ErrNetworkFailure)
	}

	// Generic error
	return fmt.Errorf("failed to fetch replies for post %s: %w", postID, err)
}

// limitedReader wraps a ReadCloser with a size limit to prevent excessive memory usage.
type limitedReader struct {
	io.ReadCloser
	limit int64
	read  int64
}

// Read implements io.Reader with size limit enforcement.
func (lr *limitedReader) Read(p []byte) (n int, err error) {
	if lr.read >= lr.limit {
		return 0, fmt.Errorf("response size exceeded limit of %d bytes", lr.limit)
	}

	// Calculate how much we can read
	remaining := lr.limit - lr.read
	if int64(len(p)) > remaining {
		p = p[:remaining]
	}

	n, err = lr.ReadCloser.Read(p)
	lr.read += int64(n)

	return n, err
}

// sessionTransport adds the session headers and safety limits to HTTP requests
type sessionTransport struct {
	cookie    string
	appID     string
	userAgent string
	base      http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *sessionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	req = req.Clone(req.Context())

	// Add the headers the web client authenticates with
	req.Header.Set("Cookie", t.cookie)
	req.Header.Set("User-Agent", t.userAgent)
	req.Header.Set("X-IG-App-ID", t.appID)

	// Execute the request
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	// Apply response size limit (10MB)
	if resp.Body != nil {
		resp.Body = &limitedReader{
			ReadCloser: resp.Body,
			limit:      10 * 1024 * 1024, // 10MB
		}
	}

	return resp, nil
}
