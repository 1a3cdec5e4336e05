package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf_WrappedChain(t *testing.T) {
	t.Parallel()

	base := FileNotIndexed("src/a.ts")
	wrapped := fmt.Errorf("exports: %w", base)

	assert.Equal(t, KindFileNotIndexed, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindFileNotIndexed))
	assert.False(t, Is(wrapped, KindStore))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, KindUnknown))
}

func TestErrorsIs_MatchesByKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("outer: %w", Store(errors.New("disk full")))
	assert.True(t, errors.Is(err, &Error{Kind: KindStore}))
	assert.False(t, errors.Is(err, &Error{Kind: KindConfig}))
}

func TestStore_DoesNotDoubleWrap(t *testing.T) {
	t.Parallel()

	inner := Store(errors.New("boom"))
	outer := Store(inner)
	assert.Same(t, inner, outer)
	assert.Nil(t, Store(nil))
}

func TestSymbolNotFound_CarriesSuggestions(t *testing.T) {
	t.Parallel()

	err := SymbolNotFound("Usr", []string{"User", "UserService"})

	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, "Usr", e.Query)
	assert.Equal(t, []string{"User", "UserService"}, e.Suggestions)
	assert.Contains(t, err.Error(), "did you mean: User, UserService?")
}

func TestUnwrap_ExposesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("syntax")
	err := Parse("a.ts", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "failed to parse a.ts")
}
