package errors

import (
	"fmt"
	"math"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// NumericalDegenerateError reports that a probability normalization could not
// be computed: its denominator was exactly zero, NaN or infinite.
type NumericalDegenerateError struct {
	Operation   string    // e.g. "Multiclass.Predict"
	Strategy    string    // combination rule that failed, e.g. "softmax"
	Denominator float64   // the offending sum
	Values      []float64 // per-category terms that produced the sum
}

func (e *NumericalDegenerateError) Error() string {
	valStr := ""
	for i, v := range e.Values {
		if i > 0 {
			valStr += ", "
		}
		if i >= 5 {
			valStr += "..."
			break
		}
		valStr += fmt.Sprintf("%.6g", v)
	}
	return fmt.Sprintf("linscore: %s: %s normalization is degenerate (denominator %g). Values: [%s]",
		e.Operation, e.Strategy, e.Denominator, valStr)
}

// Is allows matching against ErrNumericalDegenerate.
func (e *NumericalDegenerateError) Is(target error) bool { return target == ErrNumericalDegenerate }

// MarshalZerologObject adds the structured error to a zerolog event.
func (e *NumericalDegenerateError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Operation).
		Str("strategy", e.Strategy).
		Float64("denominator", e.Denominator).
		Floats64("values", e.Values).
		Str("type", "NumericalDegenerateError")
}

// NewNumericalDegenerateError creates a NumericalDegenerateError with a stack trace.
func NewNumericalDegenerateError(operation, strategy string, denominator float64, values []float64) error {
	return errors.WithStack(&NumericalDegenerateError{
		Operation:   operation,
		Strategy:    strategy,
		Denominator: denominator,
		Values:      values,
	})
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckDenominator returns a NumericalDegenerateError when denominator is
// exactly zero or not finite, and nil otherwise.
func CheckDenominator(operation, strategy string, denominator float64, values []float64) error {
	if denominator == 0 || !IsFinite(denominator) {
		return NewNumericalDegenerateError(operation, strategy, denominator, values)
	}
	return nil
}

// CheckValues returns a NumericalDegenerateError carrying the first NaN or
// Inf in values as its Denominator, and nil when all values are finite.
func CheckValues(operation, strategy string, values []float64) error {
	for _, v := range values {
		if !IsFinite(v) {
			return NewNumericalDegenerateError(operation, strategy, v, values)
		}
	}
	return nil
}
