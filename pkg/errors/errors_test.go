package errors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	err := New(ErrOutputWrite, "out/DictionaryFile.txt", "permission denied")
	assert.Equal(t, "output write failed: out/DictionaryFile.txt: permission denied", err.Error())

	noPath := Newf(ErrInvalidState, "", "posting for doc %d has no weight", 7)
	assert.Equal(t, "invalid index state: posting for doc 7 has no weight", noPath.Error())
}

func TestAppErrorMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("serializing: %w", New(ErrOutputWrite, "out", "disk full"))
	assert.True(t, errors.Is(err, ErrOutputWrite))
	assert.False(t, errors.Is(err, ErrInputNotFound))
	assert.Equal(t, "out", PathOf(err))
}

func TestWrapKeepsCause(t *testing.T) {
	err := Wrap(ErrOutputWrite, "out/PostingFile.txt", os.ErrPermission)
	assert.True(t, errors.Is(err, ErrOutputWrite))
	assert.True(t, errors.Is(err, os.ErrPermission))
	assert.Equal(t, "out/PostingFile.txt", PathOf(err))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"usage", New(ErrInvalidInput, "", "expected 2 arguments"), ExitUsage},
		{"input missing", New(ErrInputNotFound, "docs", "no such directory"), ExitInputMissing},
		{"output", Wrap(ErrOutputWrite, "out", os.ErrPermission), ExitOutputWrite},
		{"invalid state", fmt.Errorf("weighting: %w", ErrInvalidState), ExitInvalidState},
		{"cancelled", context.Canceled, ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
