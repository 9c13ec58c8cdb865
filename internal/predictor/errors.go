package predictor

import (
	"errors"
	"fmt"
)

// ErrUnexpectedFormat means the backend answered 2xx without a usable risk.
var ErrUnexpectedFormat = errors.New("unexpected response format")

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	Code   int
	Detail string // "detail" field of the error body, if any
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Server returned %d", e.Code)
}
