//go:build !linux

package toolstest

import "runtime"

const maxThreadNameLength = 15

// SetThreadName only locks the goroutine to its thread where threads cannot be named
func SetThreadName(name string) error {
	runtime.LockOSThread()
	return nil
}

func threadName(name string) string {
	if len(name) > maxThreadNameLength {
		return name[:maxThreadNameLength]
	}
	return name
}
