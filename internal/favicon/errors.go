// internal/favicon/errors.go
package favicon

import (
    "errors"
    "fmt"
)

// ErrInvalidURL is returned when the target is not an absolute URL with both
// a scheme and a host.
var ErrInvalidURL = errors.New("invalid url")

// FetchError reports a non-success final status from the page fetch.
type FetchError struct {
    URL        string
    StatusCode int
}

func (e *FetchError) Error() string {
    return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// NetworkError wraps a transport level failure (DNS, connect, TLS, timeout)
// of the page fetch.
type NetworkError struct {
    URL string
    Err error
}

func (e *NetworkError) Error() string {
    return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
    return e.Err
}

// Outcome labels an error for logging, metrics and the lookup log.
func Outcome(err error) string {
    var fetchErr *FetchError
    var netErr *NetworkError

    switch {
    case err == nil:
        return OutcomeOK
    case errors.Is(err, ErrInvalidURL):
        return OutcomeInvalidURL
    case errors.As(err, &fetchErr):
        return OutcomeFetchError
    case errors.As(err, &netErr):
        return OutcomeNetworkError
    default:
        return OutcomeError
    }
}

const (
    OutcomeOK           = "ok"
    OutcomeInvalidURL   = "invalid_url"
    OutcomeFetchError   = "fetch_error"
    OutcomeNetworkError = "network_error"
    OutcomeError        = "error"
)
