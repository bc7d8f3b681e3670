package service

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest is returned when a request is missing or has malformed fields.
var ErrInvalidRequest = errors.New("invalid request")

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
