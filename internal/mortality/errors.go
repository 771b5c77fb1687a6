package mortality

import (
	"errors"
	"fmt"

	"github.com/rgehrsitz/ssopt/internal/domain"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("invalid mortality input")
	// ErrDataNotFound matches every *DataNotFoundError.
	ErrDataNotFound = errors.New("life table not found")
)

// ValidationError reports a bad gender, birth year or age.
type ValidationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// DataNotFoundError reports that no life table exists for a gender and
// birth year. It is distinct from transient fetch failures.
type DataNotFoundError struct {
	Gender    domain.Gender
	BirthYear int
	Location  string
}

func (e *DataNotFoundError) Error() string {
	return fmt.Sprintf("no %s life table for birth year %d at %s", e.Gender, e.BirthYear, e.Location)
}

func (e *DataNotFoundError) Is(target error) bool {
	return target == ErrDataNotFound
}

// FetchError wraps a transient failure loading a life table.
type FetchError struct {
	Location string
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to load life table from %s: %v", e.Location, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
