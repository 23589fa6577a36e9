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

// Package main implements the threads-scraper command-line interface.
// The tool collects every reply to a single Threads post through the same
// listing endpoint the web client uses and saves the flattened records to
// one file in JSON, CSV, or XLSX format.
//
// The CLI supports:
//   - Addressing a post by its public URL
//   - Choosing the export format and output directory
//   - Session cookie authentication via flag, environment variable, or .env
//   - Bounding the number of pages fetched in one run
//   - Graceful error handling with appropriate exit codes
//
// Usage:
//
//	threads-scraper fetch --url <post-url> [flags]
//
// Example:
//
//	export COOKIE='sessionid=...'
//	threads-scraper fetch --url https://www.threads.net/@zuck/post/C9-tPByRVDO --format csv
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication/authorization error
//   - 3: Network error
package main
