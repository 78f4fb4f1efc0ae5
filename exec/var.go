// File: exec/var.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Typed convenience wrapper over raw tokens.

package exec

import (
	"github.com/momentics/hioload-local/api"
	"github.com/momentics/hioload-local/local"
)

// Var is a typed context-local variable: a thin wrapper over a Token that
// removes the any-casts at call sites.
type Var[T any] struct {
	tok *local.Token
}

// NewVar declares a typed variable addressing the primary store. init may be
// nil, in which case first reads observe the zero value of T.
func NewVar[T any](init func() T) Var[T] {
	if init == nil {
		return Var[T]{tok: local.NewToken(nil)}
	}
	return Var[T]{tok: local.NewToken(func() any { return init() })}
}

// NewInheritableVar declares a typed variable whose values are copied into
// spawned child contexts. carry maps the parent's value during propagation;
// nil means identity copy.
func NewInheritableVar[T any](init func() T, carry func(T) T) Var[T] {
	var ci local.Initializer
	if init != nil {
		ci = func() any { return init() }
	}
	var cc local.CarryOver
	if carry != nil {
		cc = func(parent any) any { return carry(parent.(T)) }
	}
	return Var[T]{tok: local.NewInheritableToken(ci, cc)}
}

// Token returns the variable's underlying identity token.
func (v Var[T]) Token() *local.Token {
	return v.tok
}

// Get returns ctx's value for the variable, or the zero value of T when
// unset and no initializer was declared.
func (v Var[T]) Get(ctx api.Context) T {
	val := ctx.Get(v.tok)
	if val == nil {
		var zero T
		return zero
	}
	return val.(T)
}

// Set assigns ctx's value for the variable.
func (v Var[T]) Set(ctx api.Context, value T) {
	ctx.Set(v.tok, value)
}

// Remove drops ctx's value for the variable.
func (v Var[T]) Remove(ctx api.Context) {
	ctx.Remove(v.tok)
}

// Release drops the declaring reference. Entries keyed by the variable
// become reclaimable in every store once all Retain holders release too.
func (v Var[T]) Release() {
	v.tok.Release()
}
