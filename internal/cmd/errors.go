package cmd

import (
	"errors"

	oerrors "github.com/opmodel/combogen/internal/errors"
	"github.com/opmodel/combogen/internal/output"
	"github.com/opmodel/combogen/internal/render"
)

// ExitError wraps an error with an exit code.
type ExitError struct {
	Err  error
	Code int

	// Printed is set when the command already reported the error.
	Printed bool
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the wrapped error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCodeFromError determines the appropriate exit code for an error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	switch {
	case render.IsFatal(err):
		return ExitValidationError
	case errors.Is(err, oerrors.ErrValidation), errors.Is(err, oerrors.ErrConfig):
		return ExitValidationError
	case errors.Is(err, oerrors.ErrStorage):
		return ExitStorageError
	case errors.Is(err, oerrors.ErrPermission):
		return ExitPermissionDenied
	case errors.Is(err, oerrors.ErrNotFound):
		return ExitNotFound
	default:
		return ExitGeneralError
	}
}

// fail prints err once and returns it wrapped with its exit code.
func fail(msg string, err error) error {
	printError(msg, err)
	return &ExitError{Code: ExitCodeFromError(err), Err: err, Printed: true}
}

// printError logs an error, expanding DetailError fields into key-values.
func printError(msg string, err error) {
	var detail *oerrors.DetailError
	if errors.As(err, &detail) {
		kv := []any{"type", detail.Type, "message", detail.Message}
		if detail.Location != "" {
			kv = append(kv, "location", detail.Location)
		}
		if detail.Field != "" {
			kv = append(kv, "field", detail.Field)
		}
		if detail.Hint != "" {
			kv = append(kv, "hint", detail.Hint)
		}
		output.Error(msg, kv...)
		return
	}
	output.Error(msg, "err", err)
}
