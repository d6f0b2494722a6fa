/*
errors.go - Error taxonomy for the dealer core

PURPOSE:
  All core error types in one place. Downstream packages wrap these with
  domain context (the workshop processor wraps stock failures into a
  ReconciliationError, for example).

CATEGORIES:
  1. Stock errors - a mutation would violate the non-negative invariant
  2. Lookup errors - a referenced entity does not exist
  3. Validation errors - malformed or incomplete operator input

USAGE:
  if errors.Is(err, ledger.ErrInsufficientStock) {
      // surface to the operator, do not retry
  }
*/
package ledger

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInsufficientStock is returned when an adjustment would drive a
	// part's stock negative. Terminal for the current operation attempt.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrPartNotFound is returned when an adjustment references an unknown
	// part id and the ledger is in strict mode (the default).
	ErrPartNotFound = errors.New("part not found")

	// ErrZeroDelta is returned for an adjustment with no effect.
	ErrZeroDelta = errors.New("adjustment delta must be nonzero")

	// ErrInvalidReason is returned for a reason outside the enumerated set.
	ErrInvalidReason = errors.New("unknown stock change reason")

	// ErrInvalidCategory is returned for a category outside the enumerated set.
	ErrInvalidCategory = errors.New("unknown part category")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError names the part that blocked a deduction so the
// operator message can be specific.
type InsufficientStockError struct {
	PartID    string
	PartName  string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: have %d, need %d",
		e.PartName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// ValidationError collects every violated input rule, not just the first,
// so the operator can fix the whole form in one pass. Raised by the sale
// and workshop processors; no state is mutated when it is returned.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// IsClientError reports whether the error is caused by operator input
// rather than a system fault. Handlers map these to 4xx responses.
func IsClientError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrPartNotFound) ||
		errors.Is(err, ErrZeroDelta) ||
		errors.Is(err, ErrInvalidReason) ||
		errors.Is(err, ErrInvalidCategory)
}
