package sheetmetal

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter is matched by errors.Is for every *ParameterError.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrGeometry is matched by errors.Is for every *GeometryError.
	ErrGeometry = errors.New("geometry failure")
)

// ParameterError reports a raw input that cannot describe a base shape.
type ParameterError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ParameterError) Error() string {
	if e.Field == "type" {
		return fmt.Sprintf("%s: %s", ErrInvalidParameter, e.Reason)
	}
	return fmt.Sprintf("%s: %s=%g %s", ErrInvalidParameter, e.Field, e.Value, e.Reason)
}

func (e *ParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// GeometryError wraps a failure reported by the geometry kernel.
// Step names the kernel call that failed.
type GeometryError struct {
	Step string
	Err  error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s during %s: %v", ErrGeometry, e.Step, e.Err)
}

func (e *GeometryError) Unwrap() error { return e.Err }

func (e *GeometryError) Is(target error) bool { return target == ErrGeometry }
