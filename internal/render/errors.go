package render

import (
	"fmt"

	oerrors "github.com/opmodel/combogen/internal/errors"
)

// FatalConfigError aborts the pass: the catalog references an image that is
// missing or unusable, so no later combo can be trusted to render.
type FatalConfigError struct {
	Layer   string
	Element string
	Err     error
}

// Error implements the error interface.
func (e *FatalConfigError) Error() string {
	if e.Layer == "" {
		return fmt.Sprintf("render aborted: %v", e.Err)
	}
	return fmt.Sprintf("render aborted: layer %q element %q: %v", e.Layer, e.Element, e.Err)
}

// Unwrap returns the underlying error.
func (e *FatalConfigError) Unwrap() error { return e.Err }

// Is matches the configuration sentinel.
func (e *FatalConfigError) Is(target error) bool {
	return target == oerrors.ErrConfig
}

// RenderAttemptError is a failure confined to one combo, such as an output
// write error. The pass logs it and continues.
type RenderAttemptError struct {
	Num int
	Key string
	Err error
}

// Error implements the error interface.
func (e *RenderAttemptError) Error() string {
	return fmt.Sprintf("combo %d (%s): %v", e.Num, e.Key, e.Err)
}

// Unwrap returns the underlying error.
func (e *RenderAttemptError) Unwrap() error { return e.Err }
