package toolstest

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/driver"
	"golang.org/x/sys/unix"
)

func loadProc(d driver.Driver, name string) (unsafe.Pointer, error) {
	cName, err := unix.BytePtrFromString(name)
	if err != nil {
		return nil, errors.Wrapf(err, "function name %q", name)
	}
	return d.LoadProcAddr((*driver.Char)(unsafe.Pointer(cName))), nil
}

// HasGlobalProc reports whether the loader resolves a function pointer for name without an instance
func (c *Context) HasGlobalProc(name string) (bool, error) {
	loader, err := c.systemLoader()
	if err != nil {
		return false, err
	}
	proc, err := loadProc(loader.Driver(), name)
	return proc != nil, err
}

// HasInstanceProc reports whether the instance resolves a function pointer for name
func (c *Context) HasInstanceProc(name string) (bool, error) {
	proc, err := loadProc(c.Instance.Driver(), name)
	return proc != nil, err
}

// HasDeviceProc reports whether the device resolves a function pointer for name
func (c *Context) HasDeviceProc(name string) (bool, error) {
	proc, err := loadProc(c.Device.Driver(), name)
	return proc != nil, err
}
