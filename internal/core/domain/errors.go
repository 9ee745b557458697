package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRunNotFound      = errors.New("run not found")
	ErrSourceMissing    = errors.New("source file missing")
	ErrInvalidInput     = errors.New("invalid input")
	ErrIndexUnavailable = errors.New("similarity index unavailable")
	ErrTemporary        = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
