package errs

import (
	"errors"
)

var (
	// ErrUnsupportedURL indicates that no extractor accepts the given URL.
	ErrUnsupportedURL = errors.New("unsupported url")
	// ErrMissingHost indicates that a URL carries no host where one is required.
	ErrMissingHost = errors.New("missing host")
	// ErrAgeRestricted indicates that the instance requires sign-in to confirm age.
	ErrAgeRestricted = errors.New("age restricted")
	// ErrRetriesExhausted indicates that the retry budget ran out on transient errors.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrInvalidResponse indicates an API payload that could not be decoded.
	ErrInvalidResponse = errors.New("invalid api response")
	// ErrInvalidMaxRetries indicates a max_retries value that is neither a count nor "infinite".
	ErrInvalidMaxRetries = errors.New("invalid max_retries")
	// ErrUnexpectedStatus indicates a non-200 answer where no retry applies.
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

// ExtractorError is a failure surfaced to the caller of an extractor.
// Expected errors describe conditions of the content (age gate, bad URL)
// rather than faults of the instance or of this module.
type ExtractorError struct {
	ID       string
	Msg      string
	Expected bool
	Err      error
}

func (e *ExtractorError) Error() string {
	if e.ID == "" {
		return e.Msg
	}
	return e.ID + ": " + e.Msg
}

func (e *ExtractorError) Unwrap() error {
	return e.Err
}

// IsExpected reports whether err wraps an ExtractorError marked as expected.
func IsExpected(err error) bool {
	var ee *ExtractorError
	return errors.As(err, &ee) && ee.Expected
}
