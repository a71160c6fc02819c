package ghapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hirewire/gitscore/internal/models"
	"github.com/hirewire/gitscore/pkg/logger"
)

const graphqlEndpoint = "https://api.github.com/graphql"

// GraphQLClient issues GitHub GraphQL queries with the same retry and
// classification rules as the REST fetcher. go-github does not cover the
// contribution calendar, so this path talks to the endpoint directly.
type GraphQLClient struct {
	httpClient *http.Client
	endpoint   string
	maxRetries int
	sleep      func(time.Duration)
}

// NewGraphQLClient creates a GraphQL client sharing the fetcher's
// authenticated HTTP client.
func NewGraphQLClient(fetcher *Fetcher, maxRetries int) *GraphQLClient {
	return &GraphQLClient{
		httpClient: fetcher.HTTPClient(),
		endpoint:   graphqlEndpoint,
		maxRetries: maxRetries,
		sleep:      time.Sleep,
	}
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphqlResponse struct {
	Data   json.RawMessage  `json:"data"`
	Errors []map[string]any `json:"errors"`
}

// Query posts a GraphQL query and unmarshals the data payload into out.
// Transient failures, non-JSON bodies, and rate-limit-flavored GraphQL errors
// are retried with backoff; other GraphQL errors are fatal for the unit of
// work.
func (c *GraphQLClient) Query(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	const op = "graphql"

	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to marshal graphql request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		apiErr := c.post(ctx, op, body, out)
		if apiErr == nil {
			return nil
		}
		if !apiErr.Retryable() || attempt >= c.maxRetries {
			return apiErr
		}
		if ctx.Err() != nil {
			return apiErr
		}

		wait := Backoff(attempt + 1)
		logger.WithFields(map[string]interface{}{
			"kind":    apiErr.Kind,
			"attempt": attempt + 1,
			"wait":    wait.String(),
		}).Warnf("retrying GitHub GraphQL request")
		c.sleep(wait)
	}
}

func (c *GraphQLClient) post(ctx context.Context, op string, body []byte, out interface{}) *APIError {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return &APIError{Kind: KindMalformed, Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindTransient, Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &APIError{Kind: KindUnauthorized, Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode == http.StatusForbidden:
		return classifyGraphQLForbidden(op, resp)
	case resp.StatusCode >= 500:
		return &APIError{Kind: KindTransient, Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	case resp.StatusCode != http.StatusOK:
		return &APIError{Kind: KindAccessDenied, Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindTransient, Op: op, Err: err}
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(payload, &gqlResp); err != nil {
		return &APIError{Kind: KindMalformed, Op: op, Err: err}
	}

	if len(gqlResp.Errors) > 0 {
		message := strings.ToLower(fmt.Sprintf("%v", gqlResp.Errors))
		if strings.Contains(message, "rate limit") {
			return &APIError{Kind: KindSecondaryRateLimit, Op: op, Err: fmt.Errorf("graphql errors: %v", gqlResp.Errors)}
		}
		return &APIError{Kind: KindAccessDenied, Op: op, Err: fmt.Errorf("graphql errors: %v", gqlResp.Errors)}
	}

	if out != nil {
		if err := json.Unmarshal(gqlResp.Data, out); err != nil {
			return &APIError{Kind: KindMalformed, Op: op, Err: err}
		}
	}
	return nil
}

func classifyGraphQLForbidden(op string, resp *http.Response) *APIError {
	remaining := rateLimitRemaining(resp)
	if remaining == 0 {
		return &APIError{Kind: KindRateLimited, Op: op, Err: fmt.Errorf("status 403, remaining 0")}
	}
	// GraphQL 403s without an exhausted quota are almost always the abuse
	// detector; the original behavior retries them.
	return &APIError{Kind: KindSecondaryRateLimit, Op: op, Err: fmt.Errorf("status 403")}
}

const contributionCalendarQuery = `
query($userName: String!, $from: DateTime!, $to: DateTime!) {
  user(login: $userName) {
    contributionsCollection(from: $from, to: $to) {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

type contributionCalendarData struct {
	User struct {
		ContributionsCollection struct {
			ContributionCalendar struct {
				TotalContributions int `json:"totalContributions"`
				Weeks              []struct {
					ContributionDays []struct {
						Date              string `json:"date"`
						ContributionCount int    `json:"contributionCount"`
					} `json:"contributionDays"`
				} `json:"weeks"`
			} `json:"contributionCalendar"`
		} `json:"contributionsCollection"`
	} `json:"user"`
}

// ContributionCalendar fetches the per-day contribution counts for one
// calendar year. Days with zero contributions are omitted.
func (c *GraphQLClient) ContributionCalendar(ctx context.Context, username string, year int) ([]models.ContributionEvent, error) {
	variables := map[string]interface{}{
		"userName": username,
		"from":     fmt.Sprintf("%d-01-01T00:00:00Z", year),
		"to":       fmt.Sprintf("%d-12-31T23:59:59Z", year),
	}

	var data contributionCalendarData
	if err := c.Query(ctx, contributionCalendarQuery, variables, &data); err != nil {
		return nil, err
	}

	var events []models.ContributionEvent
	for _, week := range data.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			if day.ContributionCount <= 0 {
				continue
			}
			date, err := time.Parse("2006-01-02", day.Date)
			if err != nil {
				logger.Warnf("skipping contribution day with bad date %q: %v", day.Date, err)
				continue
			}
			events = append(events, models.ContributionEvent{Date: date, Count: day.ContributionCount})
		}
	}

	logger.WithFields(map[string]interface{}{
		"username": username,
		"year":     year,
		"days":     len(events),
	}).Debugf("fetched contribution calendar")

	return events, nil
}
