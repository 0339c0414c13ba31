package polygon

import "fmt"

// ErrorKind classifies a terminal fetch failure.
type ErrorKind int

const (
	// KindRateLimited means the retry budget was exhausted on HTTP 429.
	KindRateLimited ErrorKind = iota
	// KindTransient means the retry budget was exhausted on network failures.
	KindTransient
	// KindFatal means a non-retryable response (non-2xx other than 429).
	KindFatal
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate_limited"
	case KindTransient:
		return "transient"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// FetchError is the terminal error returned by FetchGroupedDaily.
// The caller must treat any FetchError as fatal for the run.
type FetchError struct {
	Kind ErrorKind
	Date string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch grouped daily %s (%s): %v", e.Date, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
