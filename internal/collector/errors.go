package collector

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited means the provider is throttling requests.
	ErrRateLimited = errors.New("provider rate limit reached")
	// ErrInvalidSymbol means the provider does not recognize the ticker.
	ErrInvalidSymbol = errors.New("invalid symbol")
	// ErrSchemaMismatch means the response lacks the expected time series.
	ErrSchemaMismatch = errors.New("unexpected provider response shape")
)

// TransportError covers non-2xx responses, network failures and undecodable bodies.
type TransportError struct {
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: status %d", e.StatusCode)
	}
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
