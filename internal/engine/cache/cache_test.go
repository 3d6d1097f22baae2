package cache

import (
	"errors"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/retain3d/internal/errs"
)

type resource struct {
	name    string
	payload [256]byte
}

func collect() {
	runtime.GC()
	runtime.GC()
}

func TestAddGet(t *testing.T) {
	c := New[resource]("texture")
	r := &resource{name: "grass"}

	name, err := c.Add("grass", r)
	require.NoError(t, err)
	assert.Equal(t, "grass", name)

	got, err := c.Get("grass")
	require.NoError(t, err)
	assert.Same(t, r, got)

	_, err = c.Get("stone")
	assert.True(t, errors.Is(err, errs.ErrNotFound))

	c.Remove("grass")
	_, err = c.Get("grass")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	runtime.KeepAlive(r)
}

func TestGeneratedName(t *testing.T) {
	c := New[resource]("material")
	r := &resource{}
	name, err := c.Add("", r)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(name, "material-"))

	_, err = c.Add("x", nil)
	assert.True(t, errors.Is(err, errs.ErrPrecondition))
	runtime.KeepAlive(r)
}

func TestPreloadRejectsDuplicates(t *testing.T) {
	c := New[resource]("program")
	c.SetPreload(true)
	assert.True(t, c.IsPreloading())

	a, b := &resource{name: "a"}, &resource{name: "b"}
	_, err := c.Add("lit", a)
	require.NoError(t, err)

	// Re-adding the same resource is harmless.
	_, err = c.Add("lit", a)
	require.NoError(t, err)

	_, err = c.Add("lit", b)
	assert.True(t, errors.Is(err, errs.ErrInconsistency))

	got, err := c.Get("lit")
	require.NoError(t, err)
	assert.Same(t, a, got)
}

func TestNormalModeReplaces(t *testing.T) {
	c := New[resource]("program")
	a, b := &resource{name: "a"}, &resource{name: "b"}
	_, err := c.Add("lit", a)
	require.NoError(t, err)
	_, err = c.Add("lit", b)
	require.NoError(t, err)

	got, err := c.Get("lit")
	require.NoError(t, err)
	assert.Same(t, b, got)
	runtime.KeepAlive(a)
}

func TestPreloadKeepsStrongReferences(t *testing.T) {
	c := New[resource]("texture")
	c.SetPreload(true)
	_, err := c.Add("kept", &resource{name: "kept"})
	require.NoError(t, err)
	c.SetPreload(false)

	collect()

	got, err := c.Get("kept")
	require.NoError(t, err)
	assert.Equal(t, "kept", got.name)
	assert.Equal(t, 1, c.Len())
}

func TestNormalModeEntriesAreCollected(t *testing.T) {
	c := New[resource]("texture")
	held := &resource{name: "held"}
	_, err := c.Add("held", held)
	require.NoError(t, err)
	_, err = c.Add("dropped", &resource{name: "dropped"})
	require.NoError(t, err)

	collect()

	_, err = c.Get("dropped")
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	assert.Equal(t, []string{"held"}, c.Names())
	runtime.KeepAlive(held)
}

func TestGetOrLoad(t *testing.T) {
	c := New[resource]("mesh")
	c.SetPreload(true)
	loads := 0
	load := func() (*resource, error) {
		loads++
		return &resource{name: "box"}, nil
	}

	a, err := c.GetOrLoad("box", load)
	require.NoError(t, err)
	b, err := c.GetOrLoad("box", load)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, loads)

	_, err = c.GetOrLoad("broken", func() (*resource, error) { return nil, errors.New("boom") })
	assert.EqualError(t, err, "boom")

	c.Clear()
	assert.Zero(t, c.Len())
}
