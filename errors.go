package finance

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned by a Store when an entity id does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput reports input rejected before any mutation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFrequency reports a recurring rule whose frequency is unknown.
	ErrInvalidFrequency = fmt.Errorf("%w: unknown frequency", ErrInvalidInput)

	// ErrIntegrity reports data that violates a ledger invariant, like a transfer without its mirror.
	ErrIntegrity = errors.New("data integrity error")
)

// invalid returns an ErrInvalidInput error with a formatted reason.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
