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
	"fmt"
	"time"
)

// ReplyBuilder provides a fluent API for creating test reply edges
type ReplyBuilder struct {
	id                   string
	code                 string
	takenAt              time.Time
	likeCount            int
	directReplyCount     int
	repostCount          int
	quoteCount           int
	userID               string
	username             string
	displayName          string
	isVerified           bool
	profilePicURL        string
	text                 string
	mediaType            int
	accessibilityCaption string
	imageURLs            []string
	withoutUser          bool
	withoutText          bool
}

// NewReplyBuilder creates a new reply builder with defaults
func NewReplyBuilder(id string) *ReplyBuilder {
	return &ReplyBuilder{
		id:            id,
		code:          "C" + id,
		takenAt:       time.Now().UTC().Truncate(time.Second),
		userID:        "u" + id,
		username:      "user" + id,
		displayName:   "User " + id,
		profilePicURL: fmt.Sprintf("https://example.com/avatars/%s.jpg", id),
		text:          "reply " + id,
		mediaType:     19,
	}
}

// WithCode sets the reply shortcode
func (b *ReplyBuilder) WithCode(code string) *ReplyBuilder {
	b.code = code
	return b
}

// WithTakenAt sets when the reply was posted
func (b *ReplyBuilder) WithTakenAt(t time.Time) *ReplyBuilder {
	b.takenAt = t
	return b
}

// WithCounts sets the engagement counters
func (b *ReplyBuilder) WithCounts(likes, directReplies, reposts, quotes int) *ReplyBuilder {
	b.likeCount = likes
	b.directReplyCount = directReplies
	b.repostCount = reposts
	b.quoteCount = quotes
	return b
}

// WithUsername sets the author handle
func (b *ReplyBuilder) WithUsername(username string) *ReplyBuilder {
	b.username = username
	return b
}

// WithDisplayName sets the author display name
func (b *ReplyBuilder) WithDisplayName(name string) *ReplyBuilder {
	b.displayName = name
	return b
}

// WithVerified marks the author as verified
func (b *ReplyBuilder) WithVerified() *ReplyBuilder {
	b.isVerified = true
	return b
}

// WithText sets the reply text
func (b *ReplyBuilder) WithText(text string) *ReplyBuilder {
	b.text = text
	return b
}

// WithMediaType sets the media type code
func (b *ReplyBuilder) WithMediaType(mediaType int) *ReplyBuilder {
	b.mediaType = mediaType
	return b
}

// WithImages attaches image candidates to the reply
func (b *ReplyBuilder) WithImages(urls ...string) *ReplyBuilder {
	b.imageURLs = urls
	return b
}

// WithAccessibilityCaption sets the generated image description
func (b *ReplyBuilder) WithAccessibilityCaption(caption string) *ReplyBuilder {
	b.accessibilityCaption = caption
	return b
}

// WithoutUser drops the author block, producing a malformed node
func (b *ReplyBuilder) WithoutUser() *ReplyBuilder {
	b.withoutUser = true
	return b
}

// WithoutText drops the caption block, producing a malformed node
func (b *ReplyBuilder) WithoutText() *ReplyBuilder {
	b.withoutText = true
	return b
}

// Build creates the reply edge data structure
func (b *ReplyBuilder) Build() map[string]interface{} {
	post := map[string]interface{}{
		"id":         b.id,
		"code":       b.code,
		"taken_at":   b.takenAt.Unix(),
		"like_count": b.likeCount,
		"text_post_app_info": map[string]interface{}{
			"direct_reply_count": b.directReplyCount,
			"repost_count":       b.repostCount,
			"quote_count":        b.quoteCount,
		},
		"media_type": b.mediaType,
	}

	if !b.withoutUser {
		post["user"] = map[string]interface{}{
			"id":              b.userID,
			"username":        b.username,
			"full_name":       b.displayName,
			"is_verified":     b.isVerified,
			"profile_pic_url": b.profilePicURL,
		}
	}

	if !b.withoutText {
		post["caption"] = map[string]interface{}{
			"text": b.text,
		}
	}

	if b.accessibilityCaption != "" {
		post["accessibility_caption"] = b.accessibilityCaption
	}

	if len(b.imageURLs) > 0 {
		candidates := make([]map[string]interface{}, len(b.imageURLs))
		for i, u := range b.imageURLs {
			candidates[i] = map[string]interface{}{
				"url": u,
			}
		}
		post["image_versions2"] = map[string]interface{}{
			"candidates": candidates,
		}
	}

	return map[string]interface{}{
		"node": map[string]interface{}{
			"thread_items": []interface{}{
				map[string]interface{}{
					"post": post,
				},
			},
		},
	}
}

// ReplyPageBuilder builds reply-listing responses
type ReplyPageBuilder struct {
	edges       []map[string]interface{}
	hasNextPage bool
	endCursor   string
	errors      []map[string]interface{}
}

// NewReplyPageBuilder creates a new page builder
func NewReplyPageBuilder() *ReplyPageBuilder {
	return &ReplyPageBuilder{
		edges: []map[string]interface{}{},
	}
}

// WithReplies adds reply edges to the page
func (b *ReplyPageBuilder) WithReplies(edges ...map[string]interface{}) *ReplyPageBuilder {
	b.edges = append(b.edges, edges...)
	return b
}

// WithPagination sets pagination info
func (b *ReplyPageBuilder) WithPagination(hasNext bool, cursor string) *ReplyPageBuilder {
	b.hasNextPage = hasNext
	b.endCursor = cursor
	return b
}

// WithError adds an error to the response
func (b *ReplyPageBuilder) WithError(message string) *ReplyPageBuilder {
	b.errors = append(b.errors, map[string]interface{}{
		"message": message,
	})
	return b
}

// Build creates the listing response
func (b *ReplyPageBuilder) Build() map[string]interface{} {
	if len(b.errors) > 0 {
		return map[string]interface{}{
			"errors": b.errors,
		}
	}

	var cursor *string
	if b.endCursor != "" {
		cursor = &b.endCursor
	}

	return map[string]interface{}{
		"data": map[string]interface{}{
			"data": map[string]interface{}{
				"edges": b.edges,
				"page_info": map[string]interface{}{
					"has_next_page": b.hasNextPage,
					"end_cursor":    cursor,
				},
			},
		},
	}
}

// GenerateReplyPage generates a listing response with sequentially numbered
// replies, for volume tests that don't care about individual fields.
func GenerateReplyPage(startNum, endNum int, hasMore bool) map[string]interface{} {
	page := NewReplyPageBuilder()
	for i := startNum; i <= endNum; i++ {
		page.WithReplies(NewReplyBuilder(fmt.Sprintf("%d", i)).Build())
	}
	if hasMore {
		page.WithPagination(true, fmt.Sprintf("cursor%d", endNum))
	}
	return page.Build()
}
