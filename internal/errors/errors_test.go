package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeGit, SeverityCritical, "git log failed"))
}

func TestWrapUnwrap(t *testing.T) {
	cause := fmt.Errorf("exit status 128")
	err := GitError(cause, "git log failed")

	require.NotNil(t, err)
	assert.Equal(t, "git log failed: exit status 128", err.Error())
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsFatal(err))
	assert.Equal(t, ErrorTypeGit, GetType(fmt.Errorf("loading: %w", err)))
}

func TestSentinelMatching(t *testing.T) {
	wrapped := fmt.Errorf("render: %w", ErrEmptyMatrix)
	assert.True(t, errors.Is(wrapped, ErrEmptyMatrix))
	assert.False(t, errors.Is(wrapped, ErrGitNotFound))

	// Another render error is not the empty-matrix sentinel.
	other := RenderError(fmt.Errorf("disk full"), "save heatmap")
	assert.False(t, errors.Is(other, ErrEmptyMatrix))

	// A bare type probe matches any error of that type.
	assert.True(t, errors.Is(other, &Error{Type: ErrorTypeRender}))
}

func TestDetailedString(t *testing.T) {
	err := ValidationErrorf("window must be >= 0, got %d", -1).
		WithContext("window", -1).
		WithContext("flag", "--window")

	s := err.DetailedString()
	assert.Contains(t, s, "[HIGH] [VALIDATION] window must be >= 0, got -1")
	assert.Contains(t, s, "flag: --window")
	assert.Contains(t, s, "window: -1")
	assert.Less(t, strings.Index(s, "flag:"), strings.Index(s, "window:"))
}
