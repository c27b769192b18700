// Package cmd provides command implementations for the combogen CLI.
package cmd

// Exit codes.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitGeneralError indicates an unspecified error occurred, including
	// combos that failed to render or a metadata flush that failed.
	ExitGeneralError = 1

	// ExitValidationError indicates an invalid catalog or config, or a render
	// pass aborted by a fatal setup error such as a missing image.
	ExitValidationError = 2

	// ExitStorageError indicates the artifact store or cache could not be opened.
	ExitStorageError = 3

	// ExitPermissionDenied indicates insufficient filesystem or bucket permissions.
	ExitPermissionDenied = 4

	// ExitNotFound indicates a catalog, config or metadata file was not found.
	ExitNotFound = 5
)

// ExitCodeName returns the name of the exit code.
func ExitCodeName(code int) string {
	switch code {
	case ExitSuccess:
		return "Success"
	case ExitGeneralError:
		return "General Error"
	case ExitValidationError:
		return "Validation Error"
	case ExitStorageError:
		return "Storage Error"
	case ExitPermissionDenied:
		return "Permission Denied"
	case ExitNotFound:
		return "Not Found"
	default:
		return "Unknown"
	}
}
