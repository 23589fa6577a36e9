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
	"fmt"
	"time"

	scrapererrors "github.com/dimadisaputra/threads-scraper/internal/errors"
)

// MockClient is a mock implementation of the Client interface for testing.
// Pages are returned in call order; when they run out, an empty final page
// is returned.
type MockClient struct {
	// Pages to return, one per call
	Pages []*ReplyPage

	// Error to return
	Error error

	// Behavior flags
	ShouldFailAuth    bool
	ShouldFailNetwork bool

	// FailuresBeforeSuccess makes the first N calls fail with a transient
	// network error, for exercising retry behavior.
	FailuresBeforeSuccess int

	// Track calls for verification
	CallCount  int
	LastPostID string
	LastOpts   FetchOptions
	GotCursors []string

	pageIndex int
}

// NewMockClient creates a new mock client with default test data
func NewMockClient() *MockClient {
	return &MockClient{
		Pages: []*ReplyPage{
			{Replies: generateTestReplies(), HasNextPage: false, EndCursor: ""},
		},
	}
}

// FetchReplyPage implements the Client interface
func (m *MockClient) FetchReplyPage(ctx context.Context, postID string, opts FetchOptions) (*ReplyPage, error) {
	// Track the call
	m.CallCount++
	m.LastPostID = postID
	m.LastOpts = opts
	m.GotCursors = append(m.GotCursors, opts.After)

	// Check for context cancellation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Simulate various error conditions
	if m.ShouldFailAuth {
		return nil, fmt.Errorf("authentication failed: %w", scrapererrors.ErrInvalidCookie)
	}

	if m.ShouldFailNetwork {
		return nil, fmt.Errorf("network timeout: %w", scrapererrors.ErrNetworkFailure)
	}

	if m.FailuresBeforeSuccess > 0 && m.CallCount <= m.FailuresBeforeSuccess {
		return nil, fmt.Errorf("dial tcp 127.0.0.1:443: connection refused: %w", scrapererrors.ErrNetworkFailure)
	}

	// Return configured error if set
	if m.Error != nil {
		return nil, m.Error
	}

	// Return the next page of mock data
	if m.pageIndex >= len(m.Pages) {
		return &ReplyPage{}, nil
	}
	page := m.Pages[m.pageIndex]
	m.pageIndex++

	return page, nil
}

// generateTestReplies creates sample reply data for testing
func generateTestReplies() []ReplyRecord {
	now := time.Now().UTC().Truncate(time.Second)
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	return []ReplyRecord{
		{
			ID:        "3400000000000000001",
			Code:      "C1aaaaaaaaa",
			Timestamp: lastWeek,
			LikeCount: 42,
			UserID:    "101",
			Username:  "alice",
			Text:      "Great post, thanks for sharing!",
		},
		{
			ID:         "3400000000000000002",
			Code:       "C2bbbbbbbbb",
			Timestamp:  yesterday,
			LikeCount:  7,
			UserID:     "102",
			Username:   "bob",
			IsVerified: true,
			Text:       "Interesting take.",
			ImageURLs:  []string{"https://cdn.example/bob-attachment.jpg"},
		},
		{
			ID:        "3400000000000000003",
			Code:      "C3ccccccccc",
			Timestamp: now,
			UserID:    "103",
			Username:  "charlie",
			Text:      "Following this thread.",
		},
	}
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithPages sets the sequence of pages to return
func WithPages(pages ...*ReplyPage) MockClientOption {
	return func(m *MockClient) {
		m.Pages = pages
	}
}

// WithReplies sets a single page containing the given replies
func WithReplies(replies []ReplyRecord) MockClientOption {
	return func(m *MockClient) {
		m.Pages = []*ReplyPage{{Replies: replies}}
	}
}

// WithError makes the client return a specific error
func WithError(err error) MockClientOption {
	return func(m *MockClient) {
		m.Error = err
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// WithNetworkFailures makes the first n calls fail with a transient error
func WithNetworkFailures(n int) MockClientOption {
	return func(m *MockClient) {
		m.FailuresBeforeSuccess = n
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}
