package payments

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidSignature = errors.New("invalid payment signature")
	ErrUnknownOrder     = errors.New("unknown payment order")
	ErrOrderInProgress  = errors.New("a payment order is already being opened for this booking")
	ErrGateway          = errors.New("payment gateway unavailable")
)

// GatewayError wraps a failed or timed out gateway call. It matches ErrGateway.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway %s failed: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (e *GatewayError) Is(target error) bool {
	return target == ErrGateway
}
