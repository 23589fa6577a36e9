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

// Package threads provides types and interfaces for talking to the Threads
// internal reply-listing endpoint.
package threads

import "time"

// ReplyRecord represents one flattened reply to a post. This is the core
// data structure that gets serialized into the export file. Field order here
// fixes the column order of tabular exports.
type ReplyRecord struct {
	ID                   string    `json:"id"`
	Code                 string    `json:"code"`
	Timestamp            time.Time `json:"timestamp"`
	LikeCount            int       `json:"like_count"`
	DirectReplyCount     int       `json:"direct_reply_count"`
	RepostCount          int       `json:"repost_count"`
	QuoteCount           int       `json:"quote_count"`
	UserID               string    `json:"user_id"`
	Username             string    `json:"username"`
	DisplayName          string    `json:"display_name,omitempty"`
	IsVerified           bool      `json:"is_verified"`
	ProfilePicURL        string    `json:"profile_pic_url,omitempty"`
	Text                 string    `json:"text"`
	MediaType            int       `json:"media_type"`
	AccessibilityCaption string    `json:"accessibility_caption,omitempty"`
	ImageURLs            []string  `json:"img_urls,omitempty"`
}

// ReplyPage represents one page of replies from the paginated endpoint.
// It includes the replies for the current page and pagination information
// to support fetching subsequent pages. Dropped counts reply nodes that
// were skipped because they lacked an author handle or text.
type ReplyPage struct {
	Replies     []ReplyRecord
	HasNextPage bool
	EndCursor   string
	Dropped     int
}

// FetchOptions configures how a page of replies is fetched.
type FetchOptions struct {
	// After is the cursor for pagination.
	// Empty string fetches from the beginning.
	// Use ReplyPage.EndCursor from the previous response for the next page.
	After string
}

// PostReference identifies a post by the two components of its public URL:
// the author handle and the short alphanumeric post code.
type PostReference struct {
	Handle string
	Code   string
}

// PostPayload holds the values the reply-listing endpoint requires that are
// not part of the public URL: the numeric post id and the per-session
// fb_dtsg token. Both are scraped from the post page by a Resolver.
type PostPayload struct {
	PostID string
	FBDtsg string
}
