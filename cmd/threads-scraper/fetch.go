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

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/dimadisaputra/threads-scraper/internal/config"
	scrapererrors "github.com/dimadisaputra/threads-scraper/internal/errors"
	"github.com/dimadisaputra/threads-scraper/internal/export"
	"github.com/dimadisaputra/threads-scraper/internal/scrape"
	"github.com/dimadisaputra/threads-scraper/internal/threads"
)

// fetchFlags carries the fetch command's flag values.
type fetchFlags struct {
	url        string
	format     string
	outputDir  string
	configPath string
	cookie     string
	maxPages   int
	verbose    bool
}

// fetchCmd represents the fetch command
func newFetchCommand() *cobra.Command {
	var flags fetchFlags

	cmd := &cobra.Command{
		Use:   "fetch --url <post-url>",
		Short: "Fetch all replies to a Threads post",
		Long: `Fetch all replies to a Threads post and save them to one file.

The post is addressed by its public URL, for example:
  https://www.threads.net/@zuck/post/C9-tPByRVDO

Authentication is required via a session cookie:
  - Use --cookie to provide the Cookie header value directly
  - Or set the COOKIE environment variable, which is also read
    from a .env file in the working directory`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.url, "url", "", "URL of the Threads post (required)")
	cmd.Flags().StringVar(&flags.format, "format", "", "Output format: json, csv, or xlsx (default json)")
	cmd.Flags().StringVar(&flags.outputDir, "output_dir", "", "Directory the export file is written to (default data)")
	cmd.Flags().StringVar(&flags.cookie, "cookie", "", "Session cookie (overrides the COOKIE env var)")
	cmd.Flags().StringVar(&flags.configPath, "config", "", "Path to config file")
	cmd.Flags().IntVar(&flags.maxPages, "max-pages", 0, "Stop after this many pages (0 fetches the whole thread)")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "Enable debug logging")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}

// runFetch executes the fetch command
func runFetch(ctx context.Context, flags fetchFlags) error {
	setupLogging(flags.verbose)

	// Load .env first so its values are visible to the config overrides.
	if err := config.LoadDotenv(); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	formatName, outputDir, maxPages := resolveOutputSettings(flags, cfg)
	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	ref, err := threads.ParsePostURL(flags.url)
	if err != nil {
		return err
	}
	log.Debug().Str("handle", ref.Handle).Str("code", ref.Code).Msg("parsed post url")

	cookie := getCookie(flags.cookie, cfg.Threads.CookieEnv)
	if cookie == "" {
		return fmt.Errorf("session cookie not found. Set %s (for example in a .env file) or use --cookie: %w",
			cfg.Threads.CookieEnv, scrapererrors.ErrInvalidCookie)
	}

	resolver := threads.NewResolver(cookie, cfg.Threads.UserAgent, cfg.RequestTimeout())
	payload, err := resolver.Resolve(ctx, flags.url)
	if err != nil {
		return err
	}

	client := threads.NewGraphQLClient(threads.ClientConfig{
		Endpoint:  cfg.Threads.GraphQLEndpoint,
		Cookie:    cookie,
		FBDtsg:    payload.FBDtsg,
		DocID:     cfg.Threads.DocID,
		AppID:     cfg.Threads.AppID,
		UserAgent: cfg.Threads.UserAgent,
		Timeout:   cfg.RequestTimeout(),
	})

	initialBackoff, maxBackoff := cfg.RetryBackoff()
	retryClient := threads.NewRetryClient(client, &threads.RetryConfig{
		MaxRetries:        cfg.Retry.MaxAttempts,
		InitialBackoff:    initialBackoff,
		MaxBackoff:        maxBackoff,
		BackoffMultiplier: 2.0,
	})

	scraper := scrape.NewScraper(retryClient, scrape.Options{
		MaxPages:     maxPages,
		RequestDelay: cfg.RequestDelay(),
		Logger:       log.Logger,
	})

	replies, stats, err := scraper.Run(ctx, payload.PostID)
	if err != nil {
		return err
	}

	path, err := export.WriteFile(outputDir, payload.PostID, format, replies)
	if err != nil {
		return err
	}

	log.Debug().
		Str("file", path).
		Int("pages", stats.PagesFetched).
		Dur("duration", stats.Duration).
		Msg("export written")
	fmt.Fprintf(os.Stdout, "Saved %d replies to %s\n", len(replies), path)

	return nil
}

// resolveOutputSettings applies config defaults to flags the user left unset.
func resolveOutputSettings(flags fetchFlags, cfg *config.Config) (format, outputDir string, maxPages int) {
	format = flags.format
	if format == "" {
		format = cfg.Defaults.Format
	}
	outputDir = flags.outputDir
	if outputDir == "" {
		outputDir = cfg.Defaults.OutputDir
	}
	maxPages = flags.maxPages
	if maxPages == 0 {
		maxPages = cfg.Defaults.MaxPages
	}
	return format, outputDir, maxPages
}

// getCookie returns the session cookie from flag or environment variable
func getCookie(flagCookie, envVar string) string {
	if flagCookie != "" {
		return flagCookie
	}
	return os.Getenv(envVar)
}

// setupLogging configures the global logger. Log lines go to stderr so
// stdout stays clean for the result line.
func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// mapErrorToExitCode maps internal errors to appropriate exit codes
func mapErrorToExitCode(err error) int {
	if err == nil {
		return 0
	}

	// Check for specific error types
	if errors.Is(err, scrapererrors.ErrInvalidCookie) ||
		errors.Is(err, scrapererrors.ErrRateLimit) {
		return 2 // Authentication/authorization errors
	}

	if errors.Is(err, scrapererrors.ErrNetworkFailure) {
		return 3 // Network errors
	}

	return 1 // General error
}
