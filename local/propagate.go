// File: local/propagate.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Parent→child store propagation.

package local

// Propagate builds a child store as a point-in-time snapshot of parent.
// The child is sized to the parent's capacity; live entries are re-placed at
// their ideal index with linear probing, values mapped through each token's
// carry-over transform. Dead parent entries are skipped. Later parent
// mutations never affect the child, and vice versa. Returns nil for a nil
// parent.
//
// Precondition: the parent must be quiescent for the duration of the call.
// Propagation is meant to run at child-context creation, before the parent
// resumes mutating; the store stays single-owner, so this is documented
// rather than enforced with locks.
func Propagate(parent *Store) *Store {
	if parent == nil {
		return nil
	}
	n := len(parent.table)
	child := newStore(n)
	for _, e := range parent.table {
		if e == nil || e.stale() {
			continue
		}
		h := int(e.tok.hash) & (n - 1)
		for child.table[h] != nil {
			h = nextIndex(h, n)
		}
		child.table[h] = &slot{tok: e.tok, value: e.tok.carryOver(e.value)}
		child.size++
	}
	return child
}
