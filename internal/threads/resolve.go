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

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"

	"github.com/dimadisaputra/threads-scraper/internal/apierror"
	scrapererrors "github.com/dimadisaputra/threads-scraper/internal/errors"
)

// Resolver turns a public post URL into the payload the reply-listing
// endpoint needs. The post page embeds both required values in script tags:
// the numeric post id deep inside a relay data blob, and the fb_dtsg token
// in the JSON body of the script tag with id __eqmc.
type Resolver struct {
	collector *colly.Collector
	cookie    string
	inspector apierror.Inspector
}

// NewResolver creates a Resolver that authenticates page requests with the
// given session cookie. A zero timeout leaves colly's default in place.
func NewResolver(cookie, userAgent string, timeout time.Duration) *Resolver {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.IgnoreRobotsTxt(),
	)
	if timeout > 0 {
		c.SetRequestTimeout(timeout)
	}

	return &Resolver{
		collector: c,
		cookie:    cookie,
		inspector: apierror.NewInspector(),
	}
}

// Resolve fetches the post page and extracts the numeric post id and the
// fb_dtsg token. Both must be present; a page without an fb_dtsg token is
// the logged-out rendering, which points to a stale or missing cookie.
func (r *Resolver) Resolve(ctx context.Context, postURL string) (*PostPayload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload := &PostPayload{}
	var visitErr error

	// Clone drops callbacks, so each Resolve gets a fresh set.
	c := r.collector.Clone()

	c.OnRequest(func(req *colly.Request) {
		req.Headers.Set("Cookie", r.cookie)
	})

	c.OnHTML("script#__eqmc", func(e *colly.HTMLElement) {
		if token := gjson.Parse(e.Text).Get("f"); token.Exists() {
			payload.FBDtsg = token.String()
		}
	})

	c.OnHTML("script", func(e *colly.HTMLElement) {
		if payload.PostID != "" || !strings.Contains(e.Text, "post_id") {
			return
		}
		if !gjson.Valid(e.Text) {
			return
		}
		if id, ok := deepLookup(gjson.Parse(e.Text), "post_id"); ok {
			payload.PostID = id.String()
		}
	})

	c.OnError(func(resp *colly.Response, err error) {
		if resp != nil && resp.StatusCode != 0 {
			visitErr = fmt.Errorf("post page returned status %d: %w", resp.StatusCode, err)
			return
		}
		visitErr = err
	})

	if err := c.Visit(postURL); err != nil && visitErr == nil {
		visitErr = err
	}
	if visitErr != nil {
		return nil, r.mapError(visitErr)
	}

	if payload.PostID == "" {
		return nil, fmt.Errorf("could not find post_id in any page script: %w", scrapererrors.ErrBadResponse)
	}
	if payload.FBDtsg == "" {
		return nil, fmt.Errorf("could not find the fb_dtsg token on the post page. The session cookie may be stale: %w", scrapererrors.ErrInvalidCookie)
	}

	log.Debug().
		Str("post_id", payload.PostID).
		Msg("resolved post payload")

	return payload, nil
}

// mapError maps page-fetch errors to our domain errors
func (r *Resolver) mapError(err error) error {
	if r.inspector.IsRateLimitError(err) {
		return fmt.Errorf("threads rate limit exceeded while loading the post page: %w", scrapererrors.ErrRateLimit)
	}
	if r.inspector.IsAuthError(err) {
		return fmt.Errorf("threads rejected the session while loading the post page: %w", scrapererrors.ErrInvalidCookie)
	}
	if r.inspector.IsNotFoundError(err) {
		return fmt.Errorf("post page not found: %w", scrapererrors.ErrPostNotFound)
	}
	if r.inspector.IsNetworkError(err) {
		return fmt.Errorf("network error loading the post page: %v: %w", err, scrapererrors.ErrNetworkFailure)
	}
	return fmt.Errorf("failed to load post page: %w", err)
}

// deepLookup runs a depth-first search for the first value under the given
// key anywhere in a JSON document, the equivalent of a $..key JSONPath
// query. The relay blobs bury post_id several levels deep and the nesting
// shifts between page versions, so a fixed path would be brittle.
func deepLookup(doc gjson.Result, key string) (gjson.Result, bool) {
	var found gjson.Result
	var ok bool
	doc.ForEach(func(k, v gjson.Result) bool {
		if doc.IsObject() && k.String() == key {
			found, ok = v, true
			return false
		}
		if v.IsObject() || v.IsArray() {
			if inner, innerOK := deepLookup(v, key); innerOK {
				found, ok = inner, innerOK
				return false
			}
		}
		return true
	})
	return found, ok
}
