package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct code", func(t *testing.T) {
		err := New(CodeConflict, "bed occupied")
		assert.True(t, HasCode(err, CodeConflict))
		assert.False(t, HasCode(err, CodeNotFound))
	})

	t.Run("matches code deeper in the chain", func(t *testing.T) {
		inner := New(CodeNotFound, "budget not found")
		outer := Wrap(inner, CodeInternal, "lookup failed")
		assert.True(t, HasCode(outer, CodeNotFound))
		assert.True(t, HasCode(outer, CodeInternal))
	})

	t.Run("false for plain errors", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})

	t.Run("survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeForbidden, "not owner"))
		assert.True(t, HasCode(err, CodeForbidden))
	})
}

func TestWrap(t *testing.T) {
	t.Run("nil in, nil out", func(t *testing.T) {
		require.NoError(t, Wrap(nil, CodeInternal, "ignored"))
	})

	t.Run("preserves cause for errors.Is", func(t *testing.T) {
		cause := errors.New("pq: deadlock")
		err := Wrap(cause, CodeInternal, "store failure")
		assert.ErrorIs(t, err, cause)
	})
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeValidation, CodeOf(New(CodeValidation, "amount must be positive")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("opaque")))
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "amount must be positive", MessageOf(New(CodeValidation, "amount must be positive")))
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: relation missing")))
}
