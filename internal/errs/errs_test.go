package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKinds(t *testing.T) {
	err := New(ErrInconsistency, "node.AddChild", "%q is an ancestor of %q", "a", "b")
	assert.True(t, errors.Is(err, ErrInconsistency))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, `node.AddChild: inconsistent operation: "a" is an ancestor of "b"`, err.Error())

	wrapped := fmt.Errorf("loading scene: %w", err)
	assert.Equal(t, ErrInconsistency, KindOf(wrapped))
	assert.Nil(t, KindOf(errors.New("plain")))
}

func TestPreconditionPanics(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, ErrPrecondition)
	}()
	Precondition("vertex.Vec3", "index %d out of range", 7)
}
