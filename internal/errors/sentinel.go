package errors

import "errors"

// Sentinel errors for known conditions.
var (
	// ErrValidation indicates a catalog or config failed schema or semantic checks.
	ErrValidation = errors.New("validation error")

	// ErrConfig indicates the render pass cannot proceed with the given setup,
	// e.g. a catalog element whose image is missing.
	ErrConfig = errors.New("configuration error")

	// ErrStorage indicates an artifact store or cache backend failure.
	ErrStorage = errors.New("storage error")

	// ErrPermission indicates insufficient permissions.
	ErrPermission = errors.New("permission denied")

	// ErrNotFound indicates a catalog, asset, or file was not found.
	ErrNotFound = errors.New("not found")
)
