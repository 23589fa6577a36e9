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

// Package scrape walks a post's reply listing page by page and collects the
// flattened records. It owns pagination: following end cursors, bounding the
// page count, and pacing requests so a long thread does not hammer the
// endpoint.
package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	scrapererrors "github.com/dimadisaputra/threads-scraper/internal/errors"
	"github.com/dimadisaputra/threads-scraper/internal/threads"
)

// Options configures a Scraper.
type Options struct {
	// MaxPages bounds how many pages a single run may fetch. Zero means no
	// bound; pagination runs until the endpoint reports no next page.
	MaxPages int

	// RequestDelay is the minimum spacing between page requests. Zero
	// disables pacing.
	RequestDelay time.Duration

	// Logger receives per-page progress at debug level and the run summary
	// at info level. The zero Logger discards everything.
	Logger zerolog.Logger
}

// Scraper fetches every page of replies for a post through a Client and
// returns the records in the order the platform listed them.
type Scraper struct {
	client  threads.Client
	opts    Options
	limiter *rate.Limiter
}

// NewScraper creates a Scraper that reads pages through the given client.
func NewScraper(client threads.Client, opts Options) *Scraper {
	var limiter *rate.Limiter
	if opts.RequestDelay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.RequestDelay), 1)
	}

	return &Scraper{
		client:  client,
		opts:    opts,
		limiter: limiter,
	}
}

// Run fetches all reply pages for the post and returns the collected records
// together with run statistics. Page order and in-page order are preserved.
// A page fetch failure aborts the run; partial results are not returned.
func (s *Scraper) Run(ctx context.Context, postID string) ([]threads.ReplyRecord, *Stats, error) {
	if postID == "" {
		return nil, nil, fmt.Errorf("post id is empty: %w", scrapererrors.ErrInvalidInput)
	}

	tracker := newTracker()

	var (
		replies []threads.ReplyRecord
		cursor  = ""
		hasMore = true
		pageNum = 0
	)

	for hasMore {
		if s.opts.MaxPages > 0 && pageNum >= s.opts.MaxPages {
			s.opts.Logger.Warn().
				Int("max_pages", s.opts.MaxPages).
				Msg("stopping before the thread ended: page bound reached")
			break
		}

		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil, nil, fmt.Errorf("waiting between page requests: %w", err)
			}
		}

		pageNum++
		page, err := s.client.FetchReplyPage(ctx, postID, threads.FetchOptions{After: cursor})
		if err != nil {
			return nil, nil, fmt.Errorf("fetching reply page %d: %w", pageNum, err)
		}

		tracker.recordPage(page)
		replies = append(replies, page.Replies...)

		s.opts.Logger.Debug().
			Int("page", pageNum).
			Int("replies", len(page.Replies)).
			Int("dropped", page.Dropped).
			Bool("has_next", page.HasNextPage).
			Msg("fetched reply page")

		// An empty cursor with has_next_page set would refetch the first
		// page forever, so treat it as the end of the thread.
		cursor = page.EndCursor
		hasMore = page.HasNextPage && cursor != ""
	}

	stats := tracker.snapshot()

	if stats.Dropped > 0 {
		s.opts.Logger.Warn().
			Int("dropped", stats.Dropped).
			Msg("skipped reply nodes with no author or text")
	}
	s.opts.Logger.Info().
		Int("pages", stats.PagesFetched).
		Int("replies", stats.Replies).
		Int("dropped", stats.Dropped).
		Dur("duration", stats.Duration).
		Msg("reply fetch complete")

	return replies, stats, nil
}
