package errors_test

import (
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/KaramelBytes/tabloom-cli/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := apperrors.NewLoadError("read sheet", cause)

	assert.Equal(t, "[LOAD] read sheet: boom", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, apperrors.KindLoad, apperrors.KindOf(fmt.Errorf("outer: %w", err)))
}

func TestUnsupportedError_IsErrUnsupported(t *testing.T) {
	err := apperrors.NewUnsupportedError("custom variable \"cv1\"").WithContext("variable", "cv1")

	assert.ErrorIs(t, err, apperrors.ErrUnsupported)
	assert.Equal(t, "cv1", err.Context["variable"])
	assert.Equal(t, apperrors.Kind(""), apperrors.KindOf(errors.New("plain")))
}
