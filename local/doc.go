// File: local/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Core context-local storage: identity tokens and the single-owner
// open-addressed store that maps them to per-context values.
//
// The store holds its keys weakly. A token whose external owners have all
// released it is reclaimed lazily: dead entries are recognized and expunged
// as a side effect of ordinary probe walks and of resize, never by a
// background sweeper. This keeps the per-context hot path free of locks,
// atomics, and scheduling dependencies.
package local
