package vkext

import (
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"golang.org/x/sys/unix"
)

// Results the deferred host operations extension adds to VkResult
const (
	VKThreadIdle           common.VkResult = 1000268000
	VKThreadDone           common.VkResult = 1000268001
	VKOperationDeferred    common.VkResult = 1000268002
	VKOperationNotDeferred common.VkResult = 1000268003
)

// ErrMissingProcs is returned when the driver does not resolve an entry point a wrapper needs
var ErrMissingProcs = errors.New("missing entry points")

// loadProcs resolves every name through d, in order
func loadProcs(d driver.Driver, names ...string) ([]unsafe.Pointer, error) {
	procs := make([]unsafe.Pointer, len(names))
	var missing []string
	for i, name := range names {
		cName, err := unix.BytePtrFromString(name)
		if err != nil {
			return nil, errors.Wrapf(err, "function name %q", name)
		}
		procs[i] = d.LoadProcAddr((*driver.Char)(unsafe.Pointer(cName)))
		if procs[i] == nil {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Wrap(ErrMissingProcs, strings.Join(missing, ", "))
	}
	return procs, nil
}

func deviceHandle(device core1_0.Device) unsafe.Pointer {
	return unsafe.Pointer(device.Handle())
}

func commandBufferHandle(commandBuffer core1_0.CommandBuffer) unsafe.Pointer {
	return unsafe.Pointer(commandBuffer.Handle())
}
