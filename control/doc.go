// File: control/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Runtime configuration and metrics layer for hioload-local.
//
// Provides concurrent-safe state handling primitives:
//   - Immutable snapshot config reads and atomic merges
//   - Reload listeners invoked on config changes
//   - YAML persistence for config snapshots
//   - Metrics registry fed by the facade and executor
package control
