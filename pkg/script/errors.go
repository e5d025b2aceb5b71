package script

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFlow wraps every error reported by Validate.
	ErrInvalidFlow = errors.New("invalid flow")
	// ErrInvalidCondition is returned for conditions that cannot be parsed.
	ErrInvalidCondition = errors.New("invalid condition")
)

// ValidationError represents a single step validation failure.
type ValidationError struct {
	Step  string // Step id, or its position when the id is missing
	Field string // Offending key
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("step %q: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("step %q: field %q: %v", e.Step, e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// ValidationErrors extracts every *ValidationError from err.
func ValidationErrors(err error) []*ValidationError {
	var out []*ValidationError
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		switch x := err.(type) {
		case *ValidationError:
			out = append(out, x)
		case interface{ Unwrap() []error }:
			for _, e := range x.Unwrap() {
				walk(e)
			}
		case interface{ Unwrap() error }:
			walk(x.Unwrap())
		}
	}
	walk(err)
	return out
}
