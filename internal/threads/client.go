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

import "context"

// Client defines the interface for fetching replies to a Threads post.
// This interface allows for easy mocking in tests.
type Client interface {
	// FetchReplyPage retrieves a page of replies to the post identified by
	// its numeric postID. It supports cursor-based pagination through the
	// opts.After parameter to fetch subsequent pages.
	FetchReplyPage(ctx context.Context, postID string, opts FetchOptions) (*ReplyPage, error)
}
