// Package cache keeps named resources such as textures, materials and
// programs so they can be shared by name.
//
// A cache in preload mode holds strong references to what is added, so
// resources loaded ahead of time survive until removed. In normal mode it
// holds weak references and an entry disappears once nothing else uses
// the resource.
package cache

import (
	"slices"
	"sync"
	"weak"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Faultbox/retain3d/internal/errs"
	"github.com/Faultbox/retain3d/internal/logger"
)

type entry[T any] struct {
	strong *T
	weak   weak.Pointer[T]
}

func (e entry[T]) value() *T {
	if e.strong != nil {
		return e.strong
	}
	return e.weak.Value()
}

// Cache maps names to resources of type T. It is safe for concurrent use.
type Cache[T any] struct {
	kind string

	mu      sync.Mutex
	preload bool
	entries map[string]entry[T]
}

// New returns an empty cache in normal mode. kind names the resource type
// in errors and logs.
func New[T any](kind string) *Cache[T] {
	return &Cache[T]{kind: kind, entries: make(map[string]entry[T])}
}

// SetPreload switches between preload (strong) and normal (weak) mode.
// The mode applies to resources added afterwards.
func (c *Cache[T]) SetPreload(preload bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preload = preload
}

// IsPreloading reports whether the cache is in preload mode.
func (c *Cache[T]) IsPreloading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.preload
}

// Add stores v under name and returns the name. An empty name is replaced
// by a generated one. Adding a different resource under a name already in
// use fails with errs.ErrInconsistency in preload mode and replaces the
// entry otherwise.
func (c *Cache[T]) Add(name string, v *T) (string, error) {
	if v == nil {
		return "", errs.New(errs.ErrPrecondition, "cache.Add", "nil %s", c.kind)
	}
	if name == "" {
		name = c.kind + "-" + uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if old, ok := c.entries[name]; ok {
		if cur := old.value(); cur != nil && cur != v {
			if c.preload {
				return "", errs.New(errs.ErrInconsistency, "cache.Add",
					"%s %q is already cached", c.kind, name)
			}
			logger.Warn("replacing cached resource", zap.String("kind", c.kind), zap.String("name", name))
		}
	}

	e := entry[T]{weak: weak.Make(v)}
	if c.preload {
		e.strong = v
	}
	c.entries[name] = e
	logger.Debug("resource cached", zap.String("kind", c.kind), zap.String("name", name),
		zap.Bool("preload", c.preload))
	return name, nil
}

// Get returns the resource stored under name. A missing or collected
// resource yields errs.ErrNotFound.
func (c *Cache[T]) Get(name string) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.get(name)
}

func (c *Cache[T]) get(name string) (*T, error) {
	e, ok := c.entries[name]
	if ok {
		if v := e.value(); v != nil {
			return v, nil
		}
		delete(c.entries, name)
	}
	return nil, errs.New(errs.ErrNotFound, "cache.Get", "no %s named %q", c.kind, name)
}

// GetOrLoad returns the resource stored under name, calling load and
// caching its result when there is none.
func (c *Cache[T]) GetOrLoad(name string, load func() (*T, error)) (*T, error) {
	c.mu.Lock()
	v, err := c.get(name)
	c.mu.Unlock()
	if err == nil {
		return v, nil
	}

	v, err = load()
	if err != nil {
		return nil, err
	}
	if _, err := c.Add(name, v); err != nil {
		// Lost a race with another loader; keep theirs.
		if cur, gerr := c.Get(name); gerr == nil {
			return cur, nil
		}
		return nil, err
	}
	return v, nil
}

// Remove drops the entry for name.
func (c *Cache[T]) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}

// Clear drops every entry.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// prune drops collected entries. c.mu must be held.
func (c *Cache[T]) prune() {
	for name, e := range c.entries {
		if e.value() == nil {
			delete(c.entries, name)
		}
	}
}

// Len returns the number of live entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()
	return len(c.entries)
}

// Names returns the names of the live entries in sorted order.
func (c *Cache[T]) Names() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prune()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
