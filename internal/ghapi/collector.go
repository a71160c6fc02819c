package ghapi

import (
	"context"

	"github.com/google/go-github/v57/github"
	"golang.org/x/time/rate"
)

// Collector drains paginated endpoints into complete result sets. Every page
// fetch first waits on a shared limiter; the inter-page delay keeps the run
// under GitHub's secondary rate limits and is required behavior, not tuning.
// The page ceiling bounds runaway loops on anomalous responses.
type Collector struct {
	limiter  *rate.Limiter
	maxPages int
}

// NewCollector creates a collector with the given page ceiling and request
// pacing.
func NewCollector(maxPages int, requestsPerSec float64) *Collector {
	return &Collector{
		limiter:  rate.NewLimiter(rate.Limit(requestsPerSec), 1),
		maxPages: maxPages,
	}
}

// MaxPages returns the page ceiling.
func (c *Collector) MaxPages() int {
	return c.maxPages
}

// Wait blocks until the limiter allows the next request. Exposed for
// sub-fetch loops that page manually.
func (c *Collector) Wait(ctx context.Context) error {
	return c.limiter.Wait(ctx)
}

// CollectPages drains classic page/per_page REST pagination. fetch receives
// the 1-based page number and returns the number of items on that page along
// with the go-github response; the caller accumulates items in its closure.
// Collection stops on a short page, on NextPage == 0, or at the ceiling.
func (c *Collector) CollectPages(ctx context.Context, perPage int, fetch func(page int) (int, *github.Response, error)) error {
	return c.CollectPagesLimit(ctx, c.maxPages, perPage, fetch)
}

// CollectPagesLimit is CollectPages with an explicit page ceiling, for
// endpoints like the events feed that warrant paging deeper than the default.
func (c *Collector) CollectPagesLimit(ctx context.Context, maxPages, perPage int, fetch func(page int) (int, *github.Response, error)) error {
	for page := 1; page <= maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		count, resp, err := fetch(page)
		if err != nil {
			return err
		}
		if count < perPage {
			break
		}
		if resp == nil || resp.NextPage == 0 {
			break
		}
	}
	return nil
}

// CollectCursor drains GraphQL cursor pagination. fetch receives the cursor
// (nil on the first page) and returns hasNextPage and endCursor. Collection
// stops when hasNextPage is false or the ceiling is reached.
func (c *Collector) CollectCursor(ctx context.Context, fetch func(cursor *string) (bool, string, error)) error {
	var cursor *string
	for page := 1; page <= c.maxPages; page++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		hasNext, endCursor, err := fetch(cursor)
		if err != nil {
			return err
		}
		if !hasNext {
			break
		}
		cursor = &endCursor
	}
	return nil
}
