package toolstest

import (
	"runtime"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/unix"
)

const maxThreadNameLength = 15

// SetThreadName locks the calling goroutine to its OS thread and names that thread, so that
// tracing tools can tell program threads apart. Names are cut to 15 characters.
func SetThreadName(name string) error {
	runtime.LockOSThread()

	name = threadName(name)
	cName, err := unix.BytePtrFromString(name)
	if err != nil {
		return errors.Wrapf(err, "thread name %q", name)
	}

	err = unix.Prctl(unix.PR_SET_NAME, uintptr(unsafe.Pointer(cName)), 0, 0, 0)
	if err != nil {
		return errors.Wrapf(err, "naming thread %q", name)
	}
	return nil
}

func threadName(name string) string {
	if len(name) > maxThreadNameLength {
		return name[:maxThreadNameLength]
	}
	return name
}
