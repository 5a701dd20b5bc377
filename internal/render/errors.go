package render

import "fmt"

// Stage-typed errors: a failed job wraps its cause in the error type of the
// stage that produced it, so callers can tell where a job died without
// string matching.

// BundleError marks a failure while sealing compositions into a bundle.
type BundleError struct {
	Err error
}

func (e *BundleError) Error() string { return fmt.Sprintf("bundle: %v", e.Err) }
func (e *BundleError) Unwrap() error { return e.Err }

// CompositionSelectionError marks a composition lookup failure.
type CompositionSelectionError struct {
	Err error
}

func (e *CompositionSelectionError) Error() string {
	return fmt.Sprintf("select composition: %v", e.Err)
}
func (e *CompositionSelectionError) Unwrap() error { return e.Err }

// RenderError marks a failure in the frame pipeline or the encoder.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render: %v", e.Err) }
func (e *RenderError) Unwrap() error { return e.Err }
