package object

import (
	"log/slog"
	"sort"
	"sync/atomic"
)

var nextID atomic.Uint64

// Environment is one scope frame. Frames link outward through Outer; the
// innermost binding of a name shadows the rest.
type Environment struct {
	ID       uint64
	Bindings map[string]*Cell
	Outer    *Environment
	// Log receives frame and binding events. Enclosed frames inherit it;
	// nil falls back to slog.Default.
	Log *slog.Logger
}

func NewEnvironment() *Environment {
	return &Environment{
		ID:       nextID.Add(1),
		Bindings: make(map[string]*Cell),
	}
}

// NewEnclosedEnvironment creates a child frame of outer.
func NewEnclosedEnvironment(outer *Environment) *Environment {
	env := NewEnvironment()
	env.Outer = outer
	env.Log = outer.Log
	env.logger().Debug("push scope frame",
		slog.Uint64("frame", env.ID),
		slog.Uint64("outer", outer.ID))
	return env
}

// Has reports whether name is bound in this frame or any outer one.
func (e *Environment) Has(name string) bool {
	_, ok := e.Get(name)
	return ok
}

func (e *Environment) HasLocal(name string) bool {
	_, ok := e.Bindings[name]
	return ok
}

func (e *Environment) Get(name string) (*Cell, bool) {
	for env := e; env != nil; env = env.Outer {
		if c, ok := env.Bindings[name]; ok {
			return c, true
		}
	}
	return nil, false
}

// Add binds name in this frame. Rebinding a name already in this frame is an error.
func (e *Environment) Add(name string, c *Cell) error {
	if _, exists := e.Bindings[name]; exists {
		return Errorf("symbol \"%s\" already declared", name)
	}
	e.Bindings[name] = c
	e.logger().Debug("binding value",
		slog.String("name", name),
		slog.Any("type", c.Type()),
		slog.Uint64("frame", e.ID))
	return nil
}

// Set replaces the binding of name in this frame, adding it if absent.
func (e *Environment) Set(name string, c *Cell) {
	e.Bindings[name] = c
	e.logger().Debug("rebinding value",
		slog.String("name", name),
		slog.Any("type", c.Type()),
		slog.Uint64("frame", e.ID))
}

// Remove drops name from this frame only.
func (e *Environment) Remove(name string) {
	delete(e.Bindings, name)
}

// Keys returns the names bound in this frame in sorted order.
func (e *Environment) Keys() []string {
	keys := make([]string, 0, len(e.Bindings))
	for k := range e.Bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (e *Environment) logger() *slog.Logger {
	if e.Log != nil {
		return e.Log
	}
	return slog.Default()
}
