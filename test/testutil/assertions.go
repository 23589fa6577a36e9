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
	"os"
	"strings"
	"testing"
)

// AssertJSONExport validates that a file contains a JSON array of reply
// records with the expected ids, in order
func AssertJSONExport(t *testing.T, filePath string, wantIDs []string) {
	t.Helper()

	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read export file: %v", err)
	}

	var records []map[string]interface{}
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("Export is not a JSON array: %v", err)
	}

	if len(records) != len(wantIDs) {
		t.Fatalf("Expected %d records, got %d", len(wantIDs), len(records))
	}

	requiredFields := []string{"id", "code", "timestamp", "username", "text"}
	for i, record := range records {
		for _, field := range requiredFields {
			if _, ok := record[field]; !ok {
				t.Errorf("Record %d: missing required field %q", i, field)
			}
		}

		if got, _ := record["id"].(string); got != wantIDs[i] {
			t.Errorf("Record %d: expected id %q, got %q", i, wantIDs[i], got)
		}
	}
}

// AssertContainsString checks if a string contains a substring
func AssertContainsString(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Errorf("Expected string to contain %q, got: %s", needle, haystack)
	}
}

// AssertNoError fails the test if err is not nil
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// AssertEqual compares two values and fails if they're not equal
func AssertEqual(t *testing.T, got, want interface{}) {
	t.Helper()
	if got != want {
		t.Errorf("Got %v, want %v", got, want)
	}
}
