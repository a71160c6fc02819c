package ghapi

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"golang.org/x/oauth2"

	"github.com/hirewire/gitscore/pkg/logger"
)

// secondaryLimitThreshold: a 403 with a small but non-zero remaining quota is
// treated as a secondary limit and retried, matching GitHub's observed
// behavior near quota exhaustion.
const secondaryLimitThreshold = 10

// Fetcher wraps go-github calls with retry, exponential backoff, and
// rate-limit classification. A single Fetcher shares one authenticated HTTP
// client across the whole run; it holds no per-candidate state.
type Fetcher struct {
	client     *github.Client
	httpClient *http.Client
	maxRetries int
	sleep      func(time.Duration)
}

// NewFetcher creates a Fetcher authenticated with the given token. An empty
// token falls back to unauthenticated requests (60/hour limit).
func NewFetcher(token string, maxRetries int) *Fetcher {
	httpClient := &http.Client{Timeout: 30 * time.Second}
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(context.Background(), ts)
		httpClient.Timeout = 30 * time.Second
	} else {
		logger.Warnf("GITHUB_TOKEN not set, using unauthenticated requests (60 requests/hour limit)")
	}

	return &Fetcher{
		client:     github.NewClient(httpClient),
		httpClient: httpClient,
		maxRetries: maxRetries,
		sleep:      time.Sleep,
	}
}

// Client returns the underlying go-github client. Calls made through it
// should be wrapped in Do for retry and classification.
func (f *Fetcher) Client() *github.Client {
	return f.client
}

// HTTPClient returns the authenticated HTTP client, shared with the GraphQL
// endpoint which go-github does not cover.
func (f *Fetcher) HTTPClient() *http.Client {
	return f.httpClient
}

// Do runs call, classifies any failure, and retries retryable failures with
// exponential backoff up to the attempt cap. The returned error is always an
// *APIError when non-nil.
func (f *Fetcher) Do(ctx context.Context, op string, call func() (*github.Response, error)) error {
	for attempt := 0; ; attempt++ {
		resp, err := call()
		if err == nil {
			return nil
		}

		apiErr := Classify(op, resp, err)
		if !apiErr.Retryable() || attempt >= f.maxRetries {
			return apiErr
		}
		if ctx.Err() != nil {
			return apiErr
		}

		wait := Backoff(attempt + 1)
		logger.WithFields(map[string]interface{}{
			"op":      op,
			"kind":    apiErr.Kind,
			"attempt": attempt + 1,
			"wait":    wait.String(),
		}).Warnf("retrying GitHub request")
		f.sleep(wait)
	}
}

// Backoff returns the wait before the given retry attempt: min(60, 2^attempt)
// seconds.
func Backoff(attempt int) time.Duration {
	secs := math.Min(60, math.Pow(2, float64(attempt)))
	return time.Duration(secs) * time.Second
}

// Classify maps a go-github error to the taxonomy. The 403 sub-cases are
// decided in order: primary rate limit (remaining == 0), secondary limit
// (abuse-detection body or small non-zero remaining), then access denied.
func Classify(op string, resp *github.Response, err error) *APIError {
	var rateLimitErr *github.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &APIError{Kind: KindRateLimited, Op: op, Err: err}
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &APIError{Kind: KindSecondaryRateLimit, Op: op, Err: err}
	}
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) {
		return classifyStatus(op, errResp, err)
	}
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &APIError{Kind: KindMalformed, Op: op, Err: err}
	}

	// Network-level failures (connection reset, timeout) have no response.
	if resp == nil {
		return &APIError{Kind: KindTransient, Op: op, Err: err}
	}
	if resp.StatusCode >= 500 {
		return &APIError{Kind: KindTransient, Op: op, Err: err}
	}
	return &APIError{Kind: KindMalformed, Op: op, Err: err}
}

func classifyStatus(op string, e *github.ErrorResponse, err error) *APIError {
	status := 0
	if e.Response != nil {
		status = e.Response.StatusCode
	}

	switch {
	case status == http.StatusUnauthorized:
		return &APIError{Kind: KindUnauthorized, Op: op, Err: err}
	case status == http.StatusNotFound:
		return &APIError{Kind: KindNotFound, Op: op, Err: err}
	case status == http.StatusForbidden:
		return classifyForbidden(op, e, err)
	case status >= 500:
		return &APIError{Kind: KindTransient, Op: op, Err: err}
	default:
		return &APIError{Kind: KindAccessDenied, Op: op, Err: err}
	}
}

func classifyForbidden(op string, e *github.ErrorResponse, err error) *APIError {
	remaining := rateLimitRemaining(e.Response)
	message := strings.ToLower(e.Message)

	if remaining == 0 {
		return &APIError{Kind: KindRateLimited, Op: op, Err: err}
	}
	if strings.Contains(message, "secondary rate limit") || strings.Contains(message, "abuse detection") {
		return &APIError{Kind: KindSecondaryRateLimit, Op: op, Err: err}
	}
	if remaining > 0 && remaining < secondaryLimitThreshold {
		return &APIError{Kind: KindSecondaryRateLimit, Op: op, Err: err}
	}
	// 403 without a rate-limit signature: private repo or revoked scope.
	return &APIError{Kind: KindAccessDenied, Op: op, Err: err}
}

// rateLimitRemaining reads X-RateLimit-Remaining, returning -1 when absent so
// a missing header is never mistaken for an exhausted quota.
func rateLimitRemaining(resp *http.Response) int {
	if resp == nil {
		return -1
	}
	value := resp.Header.Get("X-RateLimit-Remaining")
	if value == "" {
		return -1
	}
	remaining, err := strconv.Atoi(value)
	if err != nil {
		return -1
	}
	return remaining
}
