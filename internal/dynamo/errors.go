package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	// ErrInvalidConfig indicates a non-positive mass, length, timestep,
	// cutoff time or grid dimension.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrInvalidState indicates a state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrUnknownPreset indicates a preset or mode name that is not registered.
	ErrUnknownPreset = errors.New("dynamo: unknown preset")
)

// ConfigError wraps ErrInvalidConfig with the offending field.
type ConfigError struct {
	Field string
	Value float64
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s must be positive, got %g", e.Field, e.Value)
}

func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfig
}

// RequirePositive returns a *ConfigError when v is not a finite positive
// number.
func RequirePositive(field string, v float64) error {
	if !(v > 0) || isInf(v) {
		return &ConfigError{Field: field, Value: v}
	}
	return nil
}
