// File: exec/context.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Execution context: lifecycle, lazy store creation, and child spawning.

package exec

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/momentics/hioload-local/api"
	"github.com/momentics/hioload-local/local"
)

var contextsSpawned atomic.Int64

// ContextsSpawned returns the number of contexts created since process start.
func ContextsSpawned() int64 {
	return contextsSpawned.Load()
}

// Context is one execution context. It owns up to two lazily created stores:
// the primary store for ordinary per-context values and the inheritable
// store for values that spawn into children.
type Context struct {
	id          string
	primary     *local.Store
	inheritable *local.Store

	done chan struct{}
	once sync.Once
}

// Ensure compliance with the api.Context contract.
var _ api.Context = (*Context)(nil)

// NewContext creates a fresh context with no parent and no stores.
func NewContext() *Context {
	contextsSpawned.Add(1)
	return &Context{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// ID returns the unique context identifier.
func (c *Context) ID() string {
	return c.id
}

// store returns the store addressed by tok, creating it when create is set.
// Inheritable tokens address the inheritable store, all others the primary.
func (c *Context) store(tok *local.Token, create bool) *local.Store {
	if tok.Inheritable() {
		if c.inheritable == nil && create {
			c.inheritable = local.NewStore()
		}
		return c.inheritable
	}
	if c.primary == nil && create {
		c.primary = local.NewStore()
	}
	return c.primary
}

// Get returns the context's value for tok. On a miss the token's initializer
// supplies the value, which is cached so later reads, Lookup, and Remove see
// it as a regular entry. Without an initializer Get returns nil and caches
// nothing.
func (c *Context) Get(tok *local.Token) any {
	if tok == nil {
		panic(api.ErrInvalidArgument)
	}
	if st := c.store(tok, false); st != nil {
		if v, ok := st.Get(tok); ok {
			return v
		}
	}
	if !tok.HasInitializer() {
		return nil
	}
	v := tok.InitialValue()
	c.store(tok, true).Set(tok, v)
	return v
}

// Lookup returns the context's value for tok and whether one is set. A miss
// never invokes the token's initializer.
func (c *Context) Lookup(tok *local.Token) (any, bool) {
	if tok == nil {
		panic(api.ErrInvalidArgument)
	}
	st := c.store(tok, false)
	if st == nil {
		return nil, false
	}
	return st.Get(tok)
}

// Set assigns the context's value for tok.
func (c *Context) Set(tok *local.Token, value any) {
	if tok == nil {
		panic(api.ErrInvalidArgument)
	}
	c.store(tok, true).Set(tok, value)
}

// Remove drops the context's value for tok; no-op if absent.
func (c *Context) Remove(tok *local.Token) {
	if tok == nil {
		panic(api.ErrInvalidArgument)
	}
	if st := c.store(tok, false); st != nil {
		st.Remove(tok)
	}
}

// Spawn creates a child context. If this context has an inheritable store,
// the child receives a point-in-time propagated copy with each token's
// carry-over transform applied. The parent must not be mutating concurrently
// with the spawn.
func (c *Context) Spawn() *Context {
	child := NewContext()
	child.inheritable = local.Propagate(c.inheritable)
	return child
}

// Cancel signals context teardown; idempotent. The stores are reclaimed
// together with the context by normal ownership release, no explicit
// teardown of entries is needed.
func (c *Context) Cancel() {
	c.once.Do(func() {
		close(c.done)
	})
}

// Done returns a channel closed upon cancellation.
func (c *Context) Done() <-chan struct{} {
	return c.done
}

// Stats reports the shapes of the context's stores. A nil-capacity entry
// means the store has not been created yet.
func (c *Context) Stats() (primary, inheritable local.StoreStats) {
	if c.primary != nil {
		primary = c.primary.Stats()
	}
	if c.inheritable != nil {
		inheritable = c.inheritable.Stats()
	}
	return primary, inheritable
}
