package errors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapErrorChain(t *testing.T) {
	cause := os.ErrNotExist
	err := fmt.Errorf("analyze: %w", WrapError(cause, ErrorTypeConfiguration, CodeConfigLoad, "failed to read config file"))

	assert.True(t, errors.Is(err, os.ErrNotExist))
	assert.True(t, HasCode(err, CodeConfigLoad))
	assert.False(t, HasCode(err, CodePolicyCompile))
	assert.True(t, errors.Is(err, NewError(ErrorTypeConfiguration, CodeConfigLoad, "other message")))
	assert.False(t, errors.Is(err, NewError(ErrorTypeParsing, CodeConfigLoad, "")))

	re, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, "failed to read config file: file does not exist", re.Error())

	_, ok = As(errors.New("plain"))
	assert.False(t, ok)
	assert.False(t, HasCode(nil, CodeConfigLoad))
}

func TestAPKPathError(t *testing.T) {
	err := NewAPKPathError("/tmp/x.apk", nil)
	assert.Equal(t, ErrorTypeValidation, err.Type)
	assert.Equal(t, CodeAPKPathInvalid, err.Code)
	assert.Nil(t, err.Cause)
	assert.Equal(t, "/tmp/x.apk", err.Context["apk_path"])

	wrapped := NewAPKPathError("/tmp/x.apk", os.ErrPermission)
	assert.True(t, errors.Is(wrapped, os.ErrPermission))
}

func TestFormatDetailed(t *testing.T) {
	err := NewDependencyError(CodeToolNotFound, "required tools not found").
		WithContext("tools", "aapt").
		WithContext("build_tools", "/opt/sdk/build-tools/34.0.0")

	out := err.FormatDetailed()
	assert.Contains(t, out, "DEPENDENCY error [TOOL_NOT_FOUND]: required tools not found")
	assert.Less(t, strings.Index(out, "build_tools:"), strings.Index(out, "tools: aapt"), "context keys are sorted")
	assert.Contains(t, out, "Run 'apkinspect tools'")
	assert.NotContains(t, out, "Underlying cause")
}

func TestErrorTypeString(t *testing.T) {
	assert.Equal(t, "NOT_FOUND", ErrorTypeNotFound.String())
	assert.Equal(t, "UNKNOWN", ErrorType(99).String())
}

