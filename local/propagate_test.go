// File: local/propagate_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package local

import (
	"testing"

	"github.com/rsms/go-testutil"
)

func TestPropagateSnapshot(t *testing.T) {
	assert := testutil.NewAssert(t)

	ident := NewInheritableToken(nil, nil)
	double := NewInheritableToken(nil, func(parent any) any { return parent.(int) * 2 })
	dead := NewInheritableToken(nil, nil)

	parent := NewStore()
	parent.Set(ident, "v")
	parent.Set(double, 21)
	parent.Set(dead, "gone")
	dead.Release()

	child := Propagate(parent)
	assert.Eq("child capacity matches parent", child.Cap(), parent.Cap())

	v, ok := child.Get(ident)
	assert.Ok("identity entry propagated", ok)
	assert.Eq("identity value", v, "v")

	v, ok = child.Get(double)
	assert.Ok("transformed entry propagated", ok)
	assert.Eq("carry-over applied", v, 42)

	_, ok = child.Get(dead)
	assert.Ok("dead parent entry skipped", !ok)
}

func TestPropagateIsolation(t *testing.T) {
	assert := testutil.NewAssert(t)

	tok := NewInheritableToken(nil, nil)
	other := NewInheritableToken(nil, nil)

	parent := NewStore()
	parent.Set(tok, "parent")

	child := Propagate(parent)

	// Later parent mutations never reach the snapshot.
	parent.Set(tok, "parent2")
	parent.Set(other, "new")
	v, _ := child.Get(tok)
	assert.Eq("child keeps snapshot value", v, "parent")
	_, ok := child.Get(other)
	assert.Ok("post-snapshot entry absent in child", !ok)

	// And child mutations never reach the parent.
	child.Set(tok, "child")
	v, _ = parent.Get(tok)
	assert.Eq("parent unaffected by child", v, "parent2")
}

func TestPropagateNil(t *testing.T) {
	if Propagate(nil) != nil {
		t.Fatal("propagating a nil parent must yield nil")
	}
}

func TestPropagateGrownParent(t *testing.T) {
	assert := testutil.NewAssert(t)

	parent := NewStore()
	toks := make([]*Token, 24)
	for i := range toks {
		toks[i] = NewInheritableToken(nil, nil)
		parent.Set(toks[i], i)
	}
	child := Propagate(parent)
	assert.Eq("child sized to grown parent", child.Cap(), parent.Cap())
	for i, tok := range toks {
		v, ok := child.Get(tok)
		assert.Ok("entry propagated", ok)
		assert.Eq("entry value", v, i)
	}
}
