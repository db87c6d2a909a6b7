package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrConstructionFailed marks an unsatisfiable random layout. Reset
	// retries construction when a Constructor returns an error wrapping it.
	ErrConstructionFailed = errors.New("construction failed")

	// ErrConstructionExhausted is returned by Reset after every attempt failed.
	ErrConstructionExhausted = errors.New("construction exhausted")

	ErrDuplicateID   = errors.New("duplicate entity id")
	ErrInvalidID     = errors.New("invalid entity id")
	ErrUnknownID     = errors.New("unknown entity id")
	ErrOutOfBounds   = errors.New("location out of bounds")
	ErrInvalidParams = errors.New("invalid engine params")

	// ErrNotReady is returned when observing before a successful Reset.
	ErrNotReady = errors.New("engine has no episode")
)

// Unsatisfiable returns a construction failure that triggers a retry
func Unsatisfiable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrConstructionFailed, fmt.Sprintf(format, args...))
}
