package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid", InvalidInput("bad"), KindInvalidInput},
		{"conflict", Conflict("dup"), KindConflict},
		{"not found", NotFound("missing"), KindNotFound},
		{"wrapped", fmt.Errorf("outer: %w", NotFound("missing")), KindNotFound},
		{"plain", errors.New("boom"), KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.err))
		})
	}
}

func TestMessageOfHidesInternal(t *testing.T) {
	err := Internal("select failed", errors.New("connection reset"))
	assert.Equal(t, "Failed to fetch event", MessageOf(err, "Failed to fetch event"))
	assert.Equal(t, "Event not found", MessageOf(NotFound("Event not found"), "x"))
	assert.ErrorContains(t, err, "connection reset")
}

func TestInternalUnwraps(t *testing.T) {
	err := Internal("insert", ErrConflict)
	assert.ErrorIs(t, err, ErrConflict)
	assert.False(t, Is(nil, KindInternal))
}
