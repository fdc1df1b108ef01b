package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_NilErrReturnsNil(t *testing.T) {
	assert.NoError(t, Wrap(nil, CodeInternal, "should vanish"))
}

func TestHasCode_FindsCodeThroughChain(t *testing.T) {
	base := errors.New("connection refused")
	inner := Wrap(base, CodeUnavailable, "store unreachable")
	outer := Wrap(inner, CodeInternal, "verification failed")

	assert.True(t, HasCode(outer, CodeInternal))
	assert.True(t, HasCode(outer, CodeUnavailable))
	assert.False(t, HasCode(outer, CodeNotFound))
}

func TestHasCode_PlainError(t *testing.T) {
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
}

func TestCodeOf(t *testing.T) {
	err := Wrap(New(CodeNotFound, "row missing"), CodeInternal, "lookup failed")
	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("uncoded")))
}

func TestError_UnwrapPreservesCause(t *testing.T) {
	base := errors.New("duplicate key value")
	err := Wrap(fmt.Errorf("insert: %w", base), CodeConflict, "already linked")
	require.ErrorIs(t, err, base)
}
