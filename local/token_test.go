// File: local/token_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package local

import "testing"

func TestTokenIdentity(t *testing.T) {
	a := NewToken(nil)
	b := NewToken(nil)
	if a == b {
		t.Fatal("distinct tokens compare equal")
	}
	if a.Hash() == b.Hash() {
		t.Errorf("consecutive tokens share hash %#x", a.Hash())
	}
	if h := a.Hash(); h != a.Hash() {
		t.Error("token hash changed after creation")
	}
}

func TestTokenHashSpacing(t *testing.T) {
	const k = 512
	toks := make([]*Token, k)
	for i := range toks {
		toks[i] = NewToken(nil)
	}
	// The odd increment constant walks every residue class of a power-of-two
	// modulus, so any `capacity` consecutive tokens land on distinct slots.
	for capacity := 16; capacity <= k; capacity <<= 1 {
		seen := make(map[uint32]int, capacity)
		for i := 0; i < capacity; i++ {
			r := toks[i].Hash() & uint32(capacity-1)
			if j, dup := seen[r]; dup {
				t.Fatalf("capacity %d: tokens %d and %d collide on slot %d", capacity, j, i, r)
			}
			seen[r] = i
		}
	}
}

func TestTokenLiveness(t *testing.T) {
	tok := NewToken(nil)
	if !tok.Alive() {
		t.Fatal("fresh token not alive")
	}
	tok.Retain()
	tok.Release()
	if !tok.Alive() {
		t.Error("token died while an owner remained")
	}
	tok.Release()
	if tok.Alive() {
		t.Error("token alive after last release")
	}
}

func TestTokenInitializer(t *testing.T) {
	calls := 0
	tok := NewToken(func() any {
		calls++
		return "seed"
	})
	if !tok.HasInitializer() {
		t.Fatal("initializer not attached")
	}
	if v := tok.InitialValue(); v != "seed" {
		t.Errorf("InitialValue = %v, want seed", v)
	}
	if calls != 1 {
		t.Errorf("initializer ran %d times", calls)
	}

	bare := NewToken(nil)
	if bare.HasInitializer() {
		t.Error("bare token reports initializer")
	}
	if v := bare.InitialValue(); v != nil {
		t.Errorf("bare InitialValue = %v, want nil", v)
	}
}

func TestTokenCarryOverDefault(t *testing.T) {
	ident := NewInheritableToken(nil, nil)
	if v := ident.carryOver(42); v != 42 {
		t.Errorf("identity carry-over = %v, want 42", v)
	}
	double := NewInheritableToken(nil, func(parent any) any { return parent.(int) * 2 })
	if v := double.carryOver(21); v != 42 {
		t.Errorf("carry-over = %v, want 42", v)
	}
}
