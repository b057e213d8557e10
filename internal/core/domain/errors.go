package domain

import "errors"

// ErrorKind is the closed set of semantic failure categories surfaced to
// callers. Raw tool diagnostics never cross this boundary; they are logged
// and collapsed into exactly one kind per job.
type ErrorKind string

const (
	ErrPrivateOrRestricted ErrorKind = "private_or_restricted"
	ErrGeoBlocked          ErrorKind = "geo_blocked"
	ErrTooLarge            ErrorKind = "too_large"
	ErrFetchFailed         ErrorKind = "fetch_failed"
	ErrUnsupportedURL      ErrorKind = "unsupported_url"
	ErrFileNotFound        ErrorKind = "file_not_found"
	ErrInternal            ErrorKind = "internal"
)

// Retryable reports whether a differently-parameterized attempt is expected
// to plausibly change the outcome. UnsupportedURL and Internal never are;
// TooLarge is size-bound and does not vary across attempts.
func (k ErrorKind) Retryable() bool {
	switch k {
	case ErrPrivateOrRestricted, ErrGeoBlocked, ErrFetchFailed, ErrFileNotFound:
		return true
	default:
		return false
	}
}

// Message returns the single human-readable message for a kind.
func (k ErrorKind) Message() string {
	switch k {
	case ErrPrivateOrRestricted:
		return "This content is private or requires an account to view."
	case ErrGeoBlocked:
		return "This content is not available in the regions we fetch from."
	case ErrTooLarge:
		return "This file exceeds the maximum size we can deliver."
	case ErrFetchFailed:
		return "The platform refused the request. Please try again later."
	case ErrUnsupportedURL:
		return "This link is not supported."
	case ErrFileNotFound:
		return "The platform reported success but returned no media."
	default:
		return "Something went wrong on our side. Please try again."
	}
}

// ClassifiedError carries an ErrorKind across the retry-engine boundary.
// It is the only failure shape callers see; raw diagnostics stay in logs.
type ClassifiedError struct {
	Kind ErrorKind
}

func (e *ClassifiedError) Error() string {
	return e.Kind.Message()
}

// NewClassifiedError wraps a kind as an error.
func NewClassifiedError(kind ErrorKind) error {
	return &ClassifiedError{Kind: kind}
}

// KindOf extracts the ErrorKind from an error chain. Errors outside the
// tool-invocation path collapse to Internal.
func KindOf(err error) ErrorKind {
	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ErrInternal
}
