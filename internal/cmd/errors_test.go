package cmd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	oerrors "github.com/opmodel/combogen/internal/errors"
	"github.com/opmodel/combogen/internal/render"
)

func TestExitCodeFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"explicit exit error", &ExitError{Code: ExitStorageError, Err: errors.New("x")}, ExitStorageError},
		{"fatal render error", &render.FatalConfigError{Err: errors.New("missing image")}, ExitValidationError},
		{"validation", oerrors.NewValidationError("bad", "", "", ""), ExitValidationError},
		{"config", fmt.Errorf("wrapped: %w", oerrors.ErrConfig), ExitValidationError},
		{"storage", oerrors.NewStorageError("down", nil, ""), ExitStorageError},
		{"permission", oerrors.Wrap(oerrors.ErrPermission, "nope"), ExitPermissionDenied},
		{"not found", oerrors.NewNotFoundError("gone", "x.yaml", ""), ExitNotFound},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeFromError(tt.err))
		})
	}
}

func TestFail_MarksPrinted(t *testing.T) {
	err := fail("could not open stores", oerrors.NewStorageError("down", map[string]string{"driver": "s3"}, ""))

	var exitErr *ExitError
	assert.True(t, errors.As(err, &exitErr))
	assert.True(t, exitErr.Printed)
	assert.Equal(t, ExitStorageError, exitErr.Code)
	assert.True(t, errors.Is(err, oerrors.ErrStorage))
}

func TestExitCodeName(t *testing.T) {
	assert.Equal(t, "Success", ExitCodeName(ExitSuccess))
	assert.Equal(t, "Not Found", ExitCodeName(ExitNotFound))
}
