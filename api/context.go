// File: api/context.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Execution-context contract: per-context variable access with explicit
// context threading. Not compatible with standard context.Context.

package api

import "github.com/momentics/hioload-local/local"

// Context is the execution-context collaborator: one instance per worker,
// request lifeline, or pipeline stage. It owns that context's local stores
// and resolves token reads and writes against them.
//
// A Context is single-owner: all methods must be called from code running
// as that context. There is no internal locking.
type Context interface {
	// ID returns the unique context identifier.
	ID() string

	// Get returns the context's value for tok. On a miss the token's
	// initializer supplies (and caches) the value; without an initializer
	// Get returns nil.
	Get(tok *local.Token) any

	// Lookup returns the context's value for tok and whether one is set.
	// Unlike Get, a miss never invokes the token's initializer.
	Lookup(tok *local.Token) (any, bool)

	// Set assigns the context's value for tok.
	Set(tok *local.Token, value any)

	// Remove drops the context's value for tok; no-op if absent.
	Remove(tok *local.Token)
}

// TaskFunc is a unit of work bound to the executing worker's context.
type TaskFunc func(ctx Context)
