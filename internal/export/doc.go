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

// Package export writes scraped reply records to disk. A run produces one
// file, deterministically named replies-<postID>.<ext> inside the chosen
// output directory, in one of three formats: an indented JSON array, CSV,
// or an XLSX workbook. The tabular formats share one column order, which
// follows the record field order.
//
// Example usage:
//
//	format, err := export.ParseFormat("csv")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	path, err := export.WriteFile("data", postID, format, records)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("wrote %s\n", path)
package export
