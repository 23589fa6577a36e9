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

package integration

import (
	"encoding/csv"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/dimadisaputra/threads-scraper/test/testutil"
)

// writeFastConfig writes a config file with near-zero pacing and backoff so
// multi-page and retry tests finish quickly.
func writeFastConfig(t *testing.T) string {
	t.Helper()

	content := `defaults:
  request_delay: 1ms
retry:
  max_attempts: 3
  initial_backoff: 5ms
  max_backoff: 20ms
`
	return testutil.CreateTempFile(t, "", "threads-scraper-config-*.yaml", content)
}

// TestFetchExportsAllReplies walks a two-page thread end to end: the post
// page resolve, cursor pagination with one malformed node dropped, and the
// JSON export in reply order.
func TestFetchExportsAllReplies(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewThreadsServer(t, "3141592653589793238", "e2e-dtsg-token")
	defer server.Close()

	server.AddPage("", testutil.NewReplyPageBuilder().
		WithReplies(
			testutil.NewReplyBuilder("1").WithUsername("alice").Build(),
			testutil.NewReplyBuilder("2").WithUsername("bob").Build(),
			testutil.NewReplyBuilder("999").WithoutText().Build(),
		).
		WithPagination(true, "abc").
		Build())
	server.AddPage("abc", testutil.NewReplyPageBuilder().
		WithReplies(testutil.NewReplyBuilder("3").WithUsername("carol").Build()).
		Build())

	outDir := testutil.CreateTempDir(t, "fetch-e2e")
	result := testutil.RunWithServer(t, server, server.PostURL("zuck", "C9tPByRVDO"),
		"--output_dir", outDir,
		"--config", writeFastConfig(t))

	testutil.AssertCLISuccess(t, result)
	testutil.AssertExitCode(t, result, 0)
	testutil.AssertContainsString(t, result.Stdout, "Saved 3 replies")

	// The malformed node is dropped; the two pages arrive in reply order.
	exportPath := filepath.Join(outDir, "replies-3141592653589793238.json")
	testutil.AssertJSONExport(t, exportPath, []string{"1", "2", "3"})

	// One request per page, chained by the cursor the first page returned.
	testutil.AssertEqual(t, server.GraphQLCalls(), 2)
	cursors := server.Cursors()
	if len(cursors) != 2 || cursors[0] != "" || cursors[1] != "abc" {
		t.Errorf("Expected cursors [\"\" abc], got %v", cursors)
	}

	// Listing requests authenticate with the values the resolve step found.
	form := server.LastForm()
	testutil.AssertEqual(t, form.Get("fb_dtsg"), "e2e-dtsg-token")
	testutil.AssertEqual(t, form.Get("doc_id"), "8146902565367397")
	testutil.AssertEqual(t, server.PageCookie(), "test-cookie")
}

func TestFetchOutputFormats(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewThreadsServer(t, "271828182845", "formats-dtsg")
	defer server.Close()
	server.AddPage("", testutil.GenerateReplyPage(1, 3, false))

	cfgPath := writeFastConfig(t)

	tests := []struct {
		format   string
		wantFile string
	}{
		{format: "json", wantFile: "replies-271828182845.json"},
		{format: "csv", wantFile: "replies-271828182845.csv"},
		{format: "xlsx", wantFile: "replies-271828182845.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			outDir := testutil.CreateTempDir(t, "fetch-format")
			result := testutil.RunWithServer(t, server, server.PostURL("zuck", "C9format"),
				"--output_dir", outDir,
				"--format", tt.format,
				"--config", cfgPath)

			testutil.AssertCLISuccess(t, result)

			exportPath := filepath.Join(outDir, tt.wantFile)
			testutil.AssertFileExists(t, exportPath)

			switch tt.format {
			case "json":
				testutil.AssertJSONExport(t, exportPath, []string{"1", "2", "3"})
			case "csv":
				file, err := os.Open(exportPath)
				testutil.AssertNoError(t, err)
				defer file.Close()

				rows, err := csv.NewReader(file).ReadAll()
				testutil.AssertNoError(t, err)
				if len(rows) != 4 {
					t.Errorf("Expected header and 3 records, got %d rows", len(rows))
				}
			case "xlsx":
				book, err := excelize.OpenFile(exportPath)
				testutil.AssertNoError(t, err)
				defer book.Close()

				rows, err := book.GetRows("Replies")
				testutil.AssertNoError(t, err)
				if len(rows) != 4 {
					t.Errorf("Expected header and 3 records, got %d rows", len(rows))
				}
			}
		})
	}
}

func TestFetchMaxPagesBound(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewThreadsServer(t, "314159", "bound-dtsg")
	defer server.Close()
	server.AddPage("", testutil.GenerateReplyPage(1, 2, true))
	server.AddPage("cursor2", testutil.GenerateReplyPage(3, 4, false))

	outDir := testutil.CreateTempDir(t, "fetch-bound")
	result := testutil.RunWithServer(t, server, server.PostURL("zuck", "C9bound"),
		"--output_dir", outDir,
		"--max-pages", "1",
		"--config", writeFastConfig(t))

	testutil.AssertCLISuccess(t, result)
	testutil.AssertEqual(t, server.GraphQLCalls(), 1)
	testutil.AssertJSONExport(t, filepath.Join(outDir, "replies-314159.json"), []string{"1", "2"})
}

// TestFetchLoadsDotenv runs the binary in a directory holding a .env file
// and nothing else in the environment, so the cookie can only come from
// dotenv loading.
func TestFetchLoadsDotenv(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}

	server := testutil.NewThreadsServer(t, "161803398874", "dotenv-dtsg")
	defer server.Close()
	server.AddPage("", testutil.GenerateReplyPage(1, 1, false))

	workDir := testutil.CreateTempDir(t, "fetch-dotenv")
	testutil.WriteEnvFile(t, workDir, "cookie-from-dotenv")
	outDir := testutil.CreateTempDir(t, "fetch-dotenv-out")

	binary := testutil.BuildBinary(t)
	cmd := exec.Command(binary, "fetch",
		"--url", server.PostURL("zuck", "C9dotenv"),
		"--output_dir", outDir)
	cmd.Dir = workDir
	cmd.Env = []string{
		"PATH=" + os.Getenv("PATH"),
		"THREADS_GRAPHQL_ENDPOINT=" + server.GraphQLEndpoint(),
	}

	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("Command failed: %v\nOutput: %s", err, output)
	}

	// The session cookie reached the post page request via the .env file.
	testutil.AssertEqual(t, server.PageCookie(), "cookie-from-dotenv")
	testutil.AssertFileExists(t, filepath.Join(outDir, "replies-161803398874.json"))
}
