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

package scrape

import (
	"time"

	"github.com/dimadisaputra/threads-scraper/internal/threads"
)

// Stats summarizes a completed reply fetch. The counts cover both the
// records the run kept and the malformed nodes it skipped, so nothing
// disappears without being accounted for.
type Stats struct {
	PagesFetched int
	Replies      int
	Dropped      int
	OldestReply  time.Time
	NewestReply  time.Time
	StartedAt    time.Time
	CompletedAt  time.Time
	Duration     time.Duration
}

// tracker accumulates running statistics while pages arrive. Create one at
// the start of a run and snapshot it at the end.
type tracker struct {
	startTime time.Time
	stats     Stats
}

func newTracker() *tracker {
	return &tracker{startTime: time.Now()}
}

// recordPage folds one fetched page into the running totals.
func (t *tracker) recordPage(page *threads.ReplyPage) {
	t.stats.PagesFetched++
	t.stats.Dropped += page.Dropped

	for _, reply := range page.Replies {
		t.stats.Replies++

		if t.stats.OldestReply.IsZero() || reply.Timestamp.Before(t.stats.OldestReply) {
			t.stats.OldestReply = reply.Timestamp
		}
		if reply.Timestamp.After(t.stats.NewestReply) {
			t.stats.NewestReply = reply.Timestamp
		}
	}
}

// snapshot finalizes and returns the run statistics.
func (t *tracker) snapshot() *Stats {
	stats := t.stats
	stats.StartedAt = t.startTime
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(t.startTime)
	return &stats
}
