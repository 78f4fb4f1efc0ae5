// File: local/store.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Single-owner open-addressed token→value table with weak keys and lazy
// amortized reclamation. One instance exists per execution context; it is
// accessed only by code running as that context, so there is no locking.

package local

// initialCapacity is the table size at creation. Capacity is always a power
// of two so ideal indexes reduce to hash & (capacity-1).
const initialCapacity = 16

// slot is one table entry: a non-owning token reference plus the owned
// value. A nil table cell is empty; a slot whose token field is nil is a
// tombstone awaiting expunge. Recognizing a dead token clears both fields at
// once so the value never outlives its key.
type slot struct {
	tok   *Token
	value any
}

// stale reports whether the slot's token has died, clearing the slot's
// references on first recognition.
func (e *slot) stale() bool {
	if e.tok == nil {
		return true
	}
	if e.tok.Alive() {
		return false
	}
	e.tok = nil
	e.value = nil
	return true
}

// Store maps tokens to values for a single execution context.
type Store struct {
	table     []*slot
	size      int // occupied slots, dead-but-unexpunged included
	threshold int // resize trigger: 2/3 of capacity

	expunged int64
	resizes  int64
}

// StoreStats is a point-in-time view of a store's shape.
type StoreStats struct {
	Size     int
	Capacity int
	Expunged int64
	Resizes  int64
}

// NewStore creates an empty store at the initial capacity.
func NewStore() *Store {
	return newStore(initialCapacity)
}

func newStore(capacity int) *Store {
	s := &Store{table: make([]*slot, capacity)}
	s.threshold = capacity * 2 / 3
	return s
}

// Len returns the number of occupied slots. Entries whose token has died but
// has not yet been expunged still count.
func (s *Store) Len() int {
	return s.size
}

// Cap returns the current table capacity.
func (s *Store) Cap() int {
	return len(s.table)
}

// Stats returns the store's current shape and reclamation counters.
func (s *Store) Stats() StoreStats {
	return StoreStats{
		Size:     s.size,
		Capacity: len(s.table),
		Expunged: s.expunged,
		Resizes:  s.resizes,
	}
}

// Get returns the value for tok and whether an entry exists.
func (s *Store) Get(tok *Token) (any, bool) {
	if tok == nil {
		panic("local: nil token")
	}
	i := int(tok.hash) & (len(s.table) - 1)
	e := s.table[i]
	if e != nil && e.tok == tok {
		return e.value, true
	}
	return s.getAfterMiss(tok, i, e)
}

// getAfterMiss continues the probe past the ideal slot. Stale slots met
// along the way are expunged before the probe resumes at the same index,
// since expunge may move the sought entry into it.
func (s *Store) getAfterMiss(tok *Token, i int, e *slot) (any, bool) {
	n := len(s.table)
	for e != nil {
		if e.tok == tok {
			return e.value, true
		}
		if e.stale() {
			s.expungeAt(i)
		} else {
			i = nextIndex(i, n)
		}
		e = s.table[i]
	}
	return nil, false
}

// Set assigns the value for tok, installing a fresh entry if absent.
func (s *Store) Set(tok *Token, value any) {
	if tok == nil {
		panic("local: nil token")
	}
	n := len(s.table)
	i := int(tok.hash) & (n - 1)

	for e := s.table[i]; e != nil; e = s.table[i] {
		if e.tok == tok {
			e.value = value
			return
		}
		if e.stale() {
			s.replaceStale(tok, value, i)
			return
		}
		i = nextIndex(i, n)
	}

	s.table[i] = &slot{tok: tok, value: value}
	s.size++
	if !s.scanSome(i, s.size) && s.size >= s.threshold {
		s.rehash()
	}
}

// Remove drops the entry for tok and expunges its slot. No-op if absent.
func (s *Store) Remove(tok *Token) {
	if tok == nil {
		panic("local: nil token")
	}
	n := len(s.table)
	i := int(tok.hash) & (n - 1)
	for e := s.table[i]; e != nil; e = s.table[i] {
		if e.tok == tok {
			e.tok = nil
			e.value = nil
			s.expungeAt(i)
			return
		}
		i = nextIndex(i, n)
	}
}

// Range calls fn for each live entry in table order until fn returns false.
// Dead entries encountered are recognized (their references cleared) but not
// expunged; reclamation stays amortized into mutating operations.
func (s *Store) Range(fn func(tok *Token, value any) bool) {
	for _, e := range s.table {
		if e == nil || e.stale() {
			continue
		}
		if !fn(e.tok, e.value) {
			return
		}
	}
}

// replaceStale installs tok's entry when Set met a stale slot before finding
// the key. Dead entries cluster, so the whole run is batch-cleaned: scan
// backward for the earliest stale slot in the run, forward for the key. A
// key found forward is swapped into the stale slot to preserve probe order.
func (s *Store) replaceStale(tok *Token, value any, staleAt int) {
	n := len(s.table)

	runStart := staleAt
	for i := prevIndex(staleAt, n); s.table[i] != nil; i = prevIndex(i, n) {
		if s.table[i].stale() {
			runStart = i
		}
	}

	for i := nextIndex(staleAt, n); s.table[i] != nil; i = nextIndex(i, n) {
		e := s.table[i]
		if e.tok == tok {
			e.value = value
			s.table[i] = s.table[staleAt]
			s.table[staleAt] = e
			if runStart == staleAt {
				runStart = i
			}
			s.scanSome(s.expungeAt(runStart), n)
			return
		}
		if e.stale() && runStart == staleAt {
			runStart = i
		}
	}

	s.table[staleAt] = &slot{tok: tok, value: value}
	if runStart != staleAt {
		s.scanSome(s.expungeAt(runStart), n)
	}
}

// expungeAt clears the slot at staleAt, then re-threads the rest of its run:
// further stale slots are cleared and live slots are moved back toward their
// ideal position, keeping probe chains contiguous. Returns the index of the
// next empty slot after the run.
func (s *Store) expungeAt(staleAt int) int {
	n := len(s.table)
	if e := s.table[staleAt]; e != nil {
		e.tok = nil
		e.value = nil
	}
	s.table[staleAt] = nil
	s.size--
	s.expunged++

	i := nextIndex(staleAt, n)
	for e := s.table[i]; e != nil; e = s.table[i] {
		if e.stale() {
			s.table[i] = nil
			s.size--
			s.expunged++
		} else {
			h := int(e.tok.hash) & (n - 1)
			if h != i {
				s.table[i] = nil
				for s.table[h] != nil {
					h = nextIndex(h, n)
				}
				s.table[h] = e
			}
		}
		i = nextIndex(i, n)
	}
	return i
}

// scanSome probes a logarithmic number of slots past i for unrelated stale
// entries, restarting the budget whenever one is found. Reports whether any
// slot was expunged.
func (s *Store) scanSome(i, budget int) bool {
	removed := false
	n := len(s.table)
	for b := budget; ; {
		i = nextIndex(i, n)
		if e := s.table[i]; e != nil && e.stale() {
			b = n
			removed = true
			i = s.expungeAt(i)
		}
		b >>= 1
		if b == 0 {
			break
		}
	}
	return removed
}

// rehash sweeps the whole table of stale entries, then grows only if the
// survivors still crowd it. Cleaning first avoids doubling a table that was
// mostly garbage.
func (s *Store) rehash() {
	s.expungeAll()
	if s.size >= s.threshold-s.threshold/4 {
		s.grow()
	}
}

func (s *Store) expungeAll() {
	for i, e := range s.table {
		if e != nil && e.stale() {
			s.expungeAt(i)
		}
	}
}

// grow doubles capacity and re-places every surviving entry at its ideal
// index with linear probing. Values are untouched; only positions change.
func (s *Store) grow() {
	old := s.table
	n := len(old) * 2
	s.table = make([]*slot, n)
	s.resizes++

	count := 0
	for _, e := range old {
		if e == nil || e.stale() {
			continue
		}
		h := int(e.tok.hash) & (n - 1)
		for s.table[h] != nil {
			h = nextIndex(h, n)
		}
		s.table[h] = e
		count++
	}
	s.size = count
	s.threshold = n * 2 / 3
}

func nextIndex(i, n int) int {
	if i+1 < n {
		return i + 1
	}
	return 0
}

func prevIndex(i, n int) int {
	if i > 0 {
		return i - 1
	}
	return n - 1
}
