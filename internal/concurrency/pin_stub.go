//go:build !linux
// +build !linux

// File: internal/concurrency/pin_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub pinning for unsupported platforms.

package concurrency

// PinCurrentThread is a no-op on platforms without affinity support.
func PinCurrentThread(cpuID int) error {
	return nil
}
