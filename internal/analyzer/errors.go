package analyzer

import "fmt"

// GenerationError is a transport failure or unrecoverable parse failure on
// the solve call. It is the only fatal failure class after construction:
// compliance and quality check failures are recovered locally and never
// surface as errors.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
