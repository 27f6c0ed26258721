/*
errors.go - Error types for the accrual engine

PURPOSE:
  The engine has a single failure mode: InvalidInput. Everything else -
  a loan that is far overdue, a loan that is fully paid off - is a normal
  output state, not an error. The engine performs no I/O, so there are no
  retryable or transient failures here.

USAGE:
  Callers classify with errors.Is:

    if errors.Is(err, accrual.ErrInvalidInput) {
        // 400-class problem: bad terms or payment entries
    }

SEE ALSO:
  - normalize.go: Produces these errors
*/
package accrual

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when loan terms or payment entries are
// malformed or out of range. Use errors.Is to detect it.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError carries which field was rejected and why.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Unwrap() error { return ErrInvalidInput }

// IsInvalidInput reports whether err is an input validation failure.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
