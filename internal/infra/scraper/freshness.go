// Package scraper fetches feed content for the staleness fallback.
// It uses the gofeed library to parse RSS and Atom bodies.
package scraper

import (
	"context"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"feed-audit/internal/domain/entity"
)

// FreshnessChecker fetches a feed body and determines whether its newest
// item is within the configured age threshold.
type FreshnessChecker struct {
	client    *http.Client
	userAgent string
	maxAge    int

	// now is swappable for tests.
	now func() time.Time
}

// NewFreshnessChecker creates a FreshnessChecker. maxAgeDays is the
// staleness threshold: feeds whose newest item is strictly older are
// reported stale.
func NewFreshnessChecker(client *http.Client, userAgent string, maxAgeDays int) *FreshnessChecker {
	return &FreshnessChecker{
		client:    client,
		userAgent: userAgent,
		maxAge:    maxAgeDays,
		now:       time.Now,
	}
}

// Check fetches and parses feedURL and classifies its freshness.
//
// Any fetch or parse failure is unparsable: the network probe already
// ran, so what remains here is a content-level fault. A document that
// parses but yields no dated newest item has an unknown age. Ages are
// floored to whole days; a negative age (item dated in the future) is
// fresh because the staleness comparison is a strict greater-than
// against a positive threshold.
func (c *FreshnessChecker) Check(ctx context.Context, feedURL string) entity.StalenessOutcome {
	fp := gofeed.NewParser()
	fp.UserAgent = c.userAgent
	fp.Client = c.client

	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil || feed == nil {
		return entity.StalenessOutcome{Status: entity.StalenessUnparsable}
	}

	newest := newestItemDate(feed)
	if newest == nil {
		return entity.StalenessOutcome{Status: entity.StalenessAgeUnknown}
	}

	ageDays := int(c.now().Sub(*newest).Hours() / 24)
	if ageDays > c.maxAge {
		return entity.StalenessOutcome{Status: entity.StalenessStale, AgeDays: ageDays}
	}
	return entity.StalenessOutcome{Status: entity.StalenessFresh}
}

// newestItemDate returns the publication date of the feed's first item,
// which RSS and Atom order newest-first. Updated timestamps stand in
// when no publication date is present.
func newestItemDate(feed *gofeed.Feed) *time.Time {
	if len(feed.Items) == 0 {
		return nil
	}
	item := feed.Items[0]
	if item.PublishedParsed != nil {
		return item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed
	}
	return nil
}
