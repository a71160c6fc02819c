package ghapi

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed GitHub API call. The kind decides whether the
// call is retried, whether the current unit of work is abandoned, or whether
// the whole batch must stop.
type ErrorKind string

const (
	// KindRateLimited is the primary rate limit: the remaining quota is zero
	// and no amount of retrying within this run will help.
	KindRateLimited ErrorKind = "rate_limited"

	// KindSecondaryRateLimit is GitHub's abuse-detection limit. Backing off
	// and retrying usually succeeds.
	KindSecondaryRateLimit ErrorKind = "secondary_rate_limit"

	// KindUnauthorized means bad credentials. Credentials are shared across
	// the batch, so this aborts everything.
	KindUnauthorized ErrorKind = "unauthorized"

	// KindAccessDenied is a 403 that is not a rate limit: private repository,
	// revoked scope. Never retried.
	KindAccessDenied ErrorKind = "access_denied"

	// KindNotFound is fatal for the single resource only.
	KindNotFound ErrorKind = "not_found"

	// KindTransient covers 5xx responses and network failures.
	KindTransient ErrorKind = "transient"

	// KindMalformed covers non-JSON bodies and unparseable payloads, retried
	// like transient failures.
	KindMalformed ErrorKind = "malformed"
)

// APIError wraps a failed GitHub API call with its classification.
type APIError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *APIError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Retryable reports whether retrying with backoff can help.
func (e *APIError) Retryable() bool {
	switch e.Kind {
	case KindSecondaryRateLimit, KindTransient, KindMalformed:
		return true
	}
	return false
}

// IsKind reports whether err is an APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

// IsRateLimited reports whether err is a primary rate limit error.
func IsRateLimited(err error) bool {
	return IsKind(err, KindRateLimited)
}

// IsUnauthorized reports whether err is a credentials error.
func IsUnauthorized(err error) bool {
	return IsKind(err, KindUnauthorized)
}

// IsNotFound reports whether err is a missing-resource error.
func IsNotFound(err error) bool {
	return IsKind(err, KindNotFound)
}
