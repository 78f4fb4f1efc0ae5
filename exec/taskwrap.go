// File: exec/taskwrap.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Task wrapping: carries the submitter's inheritable values into the
// executing worker's context, backup-and-set on entry, restore on every
// exit path.

package exec

import (
	"github.com/momentics/hioload-local/api"
	"github.com/momentics/hioload-local/local"
)

// captured is one inheritable entry taken at wrap time.
type captured struct {
	tok   *local.Token
	value any
}

// prior is one executing-context entry saved before the swap.
type prior struct {
	tok     *local.Token
	value   any
	present bool
}

// Wrap returns a task that runs fn with from's inheritable values installed
// in the executing context, restoring that context's previous values
// afterward whether fn returns or panics. The snapshot of from is taken
// once, when Wrap is called; values are copied as-is, carry-over transforms
// apply only to Spawn.
//
// Wrapping a nil task returns nil; a task with nothing to carry is returned
// unwrapped.
func Wrap(from *Context, fn api.TaskFunc) api.TaskFunc {
	if fn == nil {
		return nil
	}
	var snap []captured
	if from != nil && from.inheritable != nil {
		from.inheritable.Range(func(tok *local.Token, value any) bool {
			snap = append(snap, captured{tok: tok, value: value})
			return true
		})
	}
	if len(snap) == 0 {
		return fn
	}
	return func(ctx api.Context) {
		saved := install(ctx, snap)
		defer restore(ctx, saved)
		fn(ctx)
	}
}

// install swaps the captured values into ctx, returning what they displaced.
func install(ctx api.Context, snap []captured) []prior {
	saved := make([]prior, 0, len(snap))
	for _, c := range snap {
		v, ok := ctx.Lookup(c.tok)
		saved = append(saved, prior{tok: c.tok, value: v, present: ok})
		ctx.Set(c.tok, c.value)
	}
	return saved
}

// restore puts the displaced values back, removing entries that were absent.
func restore(ctx api.Context, saved []prior) {
	for _, p := range saved {
		if p.present {
			ctx.Set(p.tok, p.value)
		} else {
			ctx.Remove(p.tok)
		}
	}
}
