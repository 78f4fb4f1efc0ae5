// File: local/token.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Token identity handles. A token is an opaque key with a fixed,
// well-distributed hash code and weak-counted liveness.

package local

import "sync/atomic"

// hashIncrement is the multiplicative-hashing constant derived from the
// golden ratio. Successive hash codes spaced by it spread uniformly over any
// power-of-two table size.
const hashIncrement = 0x61c88647

// hashCounter is the shared hash-code source. Token creation is the only
// cross-context synchronization point in the library.
var hashCounter atomic.Uint32

var tokensCreated atomic.Int64

func nextHash() uint32 {
	return hashCounter.Add(hashIncrement)
}

// TokensCreated returns the number of tokens created since process start.
func TokensCreated() int64 {
	return tokensCreated.Load()
}

// Initializer supplies the value a context observes on its first read of a
// token it has no entry for. It is never invoked by Set.
type Initializer func() any

// CarryOver maps a parent context's value to the child's copy during
// propagation. It is used only when a child context is spawned.
type CarryOver func(parent any) any

// Token is an opaque per-variable identity handle. Two distinct tokens never
// compare equal, and a token's hash code never changes after creation.
//
// Liveness is weak-counted: external owners hold references via Retain and
// Release; stores never do. Once the count drops to zero the token is dead
// and every store entry keyed by it becomes reclaimable.
type Token struct {
	hash        uint32
	refs        atomic.Int32
	inheritable bool
	init        Initializer
	carry       CarryOver
}

// NewToken creates a token addressing the primary store of each context.
// init may be nil, in which case first reads observe nil.
func NewToken(init Initializer) *Token {
	return newToken(init, nil, false)
}

// NewInheritableToken creates a token addressing the inheritable store of
// each context, so its values are copied into spawned children. carry maps
// the parent's value during propagation; nil means identity copy.
func NewInheritableToken(init Initializer, carry CarryOver) *Token {
	return newToken(init, carry, true)
}

func newToken(init Initializer, carry CarryOver, inheritable bool) *Token {
	t := &Token{
		hash:        nextHash(),
		inheritable: inheritable,
		init:        init,
		carry:       carry,
	}
	t.refs.Store(1)
	tokensCreated.Add(1)
	return t
}

// Hash returns the token's fixed hash code.
func (t *Token) Hash() uint32 {
	return t.hash
}

// Inheritable reports whether the token propagates into child contexts.
func (t *Token) Inheritable() bool {
	return t.inheritable
}

// Retain adds an owning reference. Must not be called on a dead token.
func (t *Token) Retain() {
	t.refs.Add(1)
}

// Release drops an owning reference. When the last owner releases, the token
// dies and stores reclaim its entries lazily on their next touch.
func (t *Token) Release() {
	t.refs.Add(-1)
}

// Alive reports whether any external owner still holds the token.
func (t *Token) Alive() bool {
	return t.refs.Load() > 0
}

// InitialValue runs the token's initializer, or returns nil without one.
func (t *Token) InitialValue() any {
	if t.init == nil {
		return nil
	}
	return t.init()
}

// HasInitializer reports whether the token carries an initializer.
func (t *Token) HasInitializer() bool {
	return t.init != nil
}

// carryOver applies the carry-over transform; nil transform is identity.
func (t *Token) carryOver(v any) any {
	if t.carry == nil {
		return v
	}
	return t.carry(v)
}
