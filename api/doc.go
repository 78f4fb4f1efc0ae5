// File: api/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Public contracts for the hioload-local library.
//
// hioload-local provides context-local variables for high-load pipelines:
// each execution context (a worker goroutine, a request lifeline, a pipeline
// stage) keeps its own value per variable handle, with weak keying and lazy
// amortized reclamation so that dropped handles never pin memory in contexts
// that still exist.
//
// The api package declares the interfaces implemented elsewhere in the
// library: the execution-context contract, the executor contract, and the
// shared error vocabulary. Implementations live in the exec, local, and
// internal/concurrency packages and are assembled by the facade.
package api
