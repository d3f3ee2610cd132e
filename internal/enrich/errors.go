// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"errors"
	"fmt"
)

// Kind classifies a model API failure. The kind decides the recovery path:
// rate-limited and transient failures are retried with backoff, invalid
// responses get one batch-level retry before fallback, and fatal failures
// abort the whole enrichment run. Per prd003-enrichment R5.1.
type Kind string

const (
	// KindRateLimited is an HTTP 429 or quota-exhausted rejection.
	KindRateLimited Kind = "rate_limited"

	// KindTransient is a network error, timeout, or 5xx server error.
	KindTransient Kind = "transient"

	// KindInvalidResponse is a successful round-trip whose payload violates
	// the expected schema (shape, length, id set, or classification enum).
	KindInvalidResponse Kind = "invalid_response"

	// KindFatal is an authentication or configuration error. Never retried.
	KindFatal Kind = "fatal"
)

// APIError is a classified model API failure.
type APIError struct {
	Kind Kind
	Err  error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// apiErrorf builds an APIError of the given kind.
func apiErrorf(kind Kind, format string, args ...any) *APIError {
	return &APIError{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the failure kind from err. Unclassified errors count as
// transient: they describe a call that never reached the service, not a
// rejection of the content.
func KindOf(err error) Kind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindTransient
}
