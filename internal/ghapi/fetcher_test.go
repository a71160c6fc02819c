package ghapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func errorResponse(status int, message string, remaining string) *github.ErrorResponse {
	header := http.Header{}
	if remaining != "" {
		header.Set("X-RateLimit-Remaining", remaining)
	}
	return &github.ErrorResponse{
		Response: &http.Response{StatusCode: status, Header: header},
		Message:  message,
	}
}

func TestClassify(t *testing.T) {
	testCases := []struct {
		name     string
		resp     *github.Response
		err      error
		expected ErrorKind
	}{
		{
			name:     "primary rate limit error type",
			err:      &github.RateLimitError{},
			expected: KindRateLimited,
		},
		{
			name:     "abuse rate limit error type",
			err:      &github.AbuseRateLimitError{},
			expected: KindSecondaryRateLimit,
		},
		{
			name:     "403 with exhausted quota",
			err:      errorResponse(http.StatusForbidden, "API rate limit exceeded", "0"),
			expected: KindRateLimited,
		},
		{
			name:     "403 with secondary limit message",
			err:      errorResponse(http.StatusForbidden, "You have exceeded a secondary rate limit", "4000"),
			expected: KindSecondaryRateLimit,
		},
		{
			name:     "403 with nearly exhausted quota",
			err:      errorResponse(http.StatusForbidden, "Forbidden", "5"),
			expected: KindSecondaryRateLimit,
		},
		{
			name:     "403 with plenty of quota is access denied",
			err:      errorResponse(http.StatusForbidden, "Resource not accessible", "4000"),
			expected: KindAccessDenied,
		},
		{
			name:     "403 without rate limit header is access denied",
			err:      errorResponse(http.StatusForbidden, "Forbidden", ""),
			expected: KindAccessDenied,
		},
		{
			name:     "401 bad credentials",
			err:      errorResponse(http.StatusUnauthorized, "Bad credentials", ""),
			expected: KindUnauthorized,
		},
		{
			name:     "404 missing resource",
			err:      errorResponse(http.StatusNotFound, "Not Found", ""),
			expected: KindNotFound,
		},
		{
			name:     "502 from error response",
			err:      errorResponse(http.StatusBadGateway, "Bad Gateway", ""),
			expected: KindTransient,
		},
		{
			name:     "json syntax error",
			err:      &json.SyntaxError{},
			expected: KindMalformed,
		},
		{
			name:     "network failure without response",
			err:      errors.New("connection reset by peer"),
			expected: KindTransient,
		},
		{
			name:     "5xx with generic error",
			resp:     &github.Response{Response: &http.Response{StatusCode: http.StatusServiceUnavailable}},
			err:      errors.New("unexpected response"),
			expected: KindTransient,
		},
		{
			name:     "4xx with generic error",
			resp:     &github.Response{Response: &http.Response{StatusCode: http.StatusUnprocessableEntity}},
			err:      errors.New("unexpected response"),
			expected: KindMalformed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			apiErr := Classify("test op", tc.resp, tc.err)
			assert.Equal(t, tc.expected, apiErr.Kind)
			assert.Equal(t, "test op", apiErr.Op)
		})
	}
}

func TestAPIErrorRetryable(t *testing.T) {
	retryable := []ErrorKind{KindSecondaryRateLimit, KindTransient, KindMalformed}
	for _, kind := range retryable {
		assert.True(t, (&APIError{Kind: kind}).Retryable(), "kind %s", kind)
	}

	terminal := []ErrorKind{KindRateLimited, KindUnauthorized, KindAccessDenied, KindNotFound}
	for _, kind := range terminal {
		assert.False(t, (&APIError{Kind: kind}).Retryable(), "kind %s", kind)
	}
}

func TestAPIErrorHelpers(t *testing.T) {
	rateErr := &APIError{Kind: KindRateLimited, Op: "fetch"}

	assert.True(t, IsRateLimited(rateErr))
	assert.False(t, IsRateLimited(errors.New("plain error")))
	assert.True(t, IsUnauthorized(&APIError{Kind: KindUnauthorized}))
	assert.True(t, IsNotFound(&APIError{Kind: KindNotFound}))

	// Wrapped APIErrors still classify.
	wrapped := &APIError{Kind: KindTransient, Op: "outer", Err: rateErr}
	assert.True(t, IsKind(wrapped, KindTransient))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, Backoff(1))
	assert.Equal(t, 4*time.Second, Backoff(2))
	assert.Equal(t, 8*time.Second, Backoff(3))
	assert.Equal(t, 32*time.Second, Backoff(5))
	assert.Equal(t, 60*time.Second, Backoff(6))  // 2^6 = 64 caps at 60
	assert.Equal(t, 60*time.Second, Backoff(10))
}

func TestDoRetriesTransientFailures(t *testing.T) {
	sleeps := 0
	fetcher := &Fetcher{maxRetries: 2, sleep: func(time.Duration) { sleeps++ }}

	calls := 0
	err := fetcher.Do(context.Background(), "flaky", func() (*github.Response, error) {
		calls++
		return nil, errors.New("connection reset")
	})

	require.Error(t, err)
	assert.True(t, IsKind(err, KindTransient))
	assert.Equal(t, 3, calls) // initial attempt plus two retries
	assert.Equal(t, 2, sleeps)
}

func TestDoSucceedsAfterRetry(t *testing.T) {
	sleeps := 0
	fetcher := &Fetcher{maxRetries: 3, sleep: func(time.Duration) { sleeps++ }}

	calls := 0
	err := fetcher.Do(context.Background(), "flaky", func() (*github.Response, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("connection reset")
		}
		return &github.Response{}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, sleeps)
}

func TestDoDoesNotRetryTerminalErrors(t *testing.T) {
	sleeps := 0
	fetcher := &Fetcher{maxRetries: 5, sleep: func(time.Duration) { sleeps++ }}

	calls := 0
	err := fetcher.Do(context.Background(), "denied", func() (*github.Response, error) {
		calls++
		return nil, errorResponse(http.StatusUnauthorized, "Bad credentials", "")
	})

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, sleeps)
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sleeps := 0
	fetcher := &Fetcher{maxRetries: 5, sleep: func(time.Duration) { sleeps++ }}

	calls := 0
	err := fetcher.Do(ctx, "cancelled", func() (*github.Response, error) {
		calls++
		return nil, errors.New("connection reset")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, sleeps)
}
