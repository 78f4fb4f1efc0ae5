// File: exec/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Execution-context binding layer. Associates local stores with execution
// contexts, spawns child contexts with propagated inheritable values, and
// wraps tasks so submitted work carries the submitter's inheritable values
// across the pool boundary.
//
// A Context is single-owner: it belongs to exactly one worker goroutine,
// request lifeline, or equivalent unit of scheduling, and all access happens
// from code running as that context. The context handle is threaded
// explicitly through call sites; there is no ambient global lookup.
package exec
