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

// Package threads provides a client for the internal GraphQL endpoint the
// Threads web client uses to list replies to a post. It abstracts the
// persisted-query wire format (form-encoded doc_id requests) and provides a
// simple interface for retrieving reply pages with support for pagination,
// error handling, and rate limiting.
//
// The package includes:
//   - A Client interface for fetching pages of replies
//   - A GraphQL implementation speaking the form-encoded persisted-query protocol
//   - A Resolver that turns a public post URL into the request payload
//     (numeric post id and fb_dtsg token) by scraping the post page
//   - Mock client for testing
//   - Type definitions for reply data
//
// Basic usage:
//
//	client := threads.NewGraphQLClient(threads.ClientConfig{
//	    Endpoint: "https://www.threads.net/api/graphql",
//	    Cookie:   cookie,
//	    FBDtsg:   payload.FBDtsg,
//	    DocID:    "8146902565367397",
//	})
//	page, err := client.FetchReplyPage(ctx, payload.PostID, threads.FetchOptions{})
//	if err != nil {
//	    // Handle error
//	}
//	for _, reply := range page.Replies {
//	    // Process reply
//	}
package threads
