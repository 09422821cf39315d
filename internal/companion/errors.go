package companion

import (
	"errors"
	"fmt"
)

// ErrGeneration marks every failed model exchange.
var ErrGeneration = errors.New("generation failed")

var errEmptyAnswer = errors.New("model returned an empty answer")

// GenerationError records which phase of a turn failed. It matches both
// ErrGeneration and its cause under errors.Is.
type GenerationError struct {
	Phase string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s during %s: %v", ErrGeneration, e.Phase, e.Err)
}

func (e *GenerationError) Unwrap() []error {
	return []error{ErrGeneration, e.Err}
}
