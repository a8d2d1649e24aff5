package gateway

import (
	"errors"
	"fmt"

	"freshmart/internal/models"
)

// ErrRefundUnsupported is returned by rails with no programmatic reversal.
var ErrRefundUnsupported = errors.New("gateway does not support refunds")

// NetworkError wraps a transport-level failure (timeout, connection reset,
// provider 5xx). Safe to retry for initiate and verify; never for refund.
type NetworkError struct {
	Gateway models.Gateway
	Op      string
	Err     error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Gateway, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RejectedError is a business rejection from the provider (declined charge,
// unknown reference, invalid request). Retrying will not change the answer.
type RejectedError struct {
	Gateway    models.Gateway
	Op         string
	Message    string
	StatusCode int
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("%s %s rejected: %s", e.Gateway, e.Op, e.Message)
}

// IsNetwork reports whether err is a transport-level gateway failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
