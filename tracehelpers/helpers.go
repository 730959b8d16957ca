package tracehelpers

import (
	"unsafe"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/core1_0"
)

//go:generate mockgen -source helpers.go -destination ./mocks/helpers.go -package mocks

// ErrUnavailable is returned by every Helpers call whose function pointer could not be loaded
var ErrUnavailable = errors.New("trace helper is not available")

// UpdateMemoryInfo describes a host update of buffer contents performed by the tracing tool
type UpdateMemoryInfo struct {
	Flags     UpdateMemoryFlags
	DstOffset int
	// DataSize must be zero when Flags contains UpdateMemoryPatchFormat
	DataSize int
	Data     []byte
}

// Helpers exposes the vendor functions a tracing layer or replayer adds to a device. None of them
// exist on a plain driver.
type Helpers interface {
	// Available reports whether any helper function was loaded
	Available() bool
	// Has reports whether the named extension was enabled on the device
	Has(extensionName string) bool

	AssertBuffer(buffer core1_0.Buffer, offset, size int, comment string) (uint32, error)
	ObjectProperty(objectType core1_0.ObjectType, handle uint64, property ObjectProperty) (uint64, error)
	FrameEnd() error
	UpdateBuffer(buffer core1_0.Buffer, info UpdateMemoryInfo) error
	ThreadBarrier(callIDs []uint32) error
}

type procs struct {
	assertBufferARM   unsafe.Pointer
	assertBufferTrace unsafe.Pointer
	objectProperty    unsafe.Pointer
	frameEnd          unsafe.Pointer
	updateBuffer      unsafe.Pointer
	threadBarrier     unsafe.Pointer
}

// DeviceHelpers is the Helpers implementation backed by device function pointers
type DeviceHelpers struct {
	device     unsafe.Pointer
	extensions *swiss.Map[string, struct{}]
	procs      procs
}

var _ Helpers = &DeviceHelpers{}

func newDeviceHelpers(device unsafe.Pointer, enabledExtensions []string, loadProc func(name string) unsafe.Pointer) *DeviceHelpers {
	helpers := &DeviceHelpers{
		device:     device,
		extensions: swiss.NewMap[string, struct{}](uint32(len(enabledExtensions))),
	}
	for _, name := range enabledExtensions {
		helpers.extensions.Put(name, struct{}{})
	}

	if helpers.Has(ARMTraceHelpersExtensionName) {
		helpers.procs.assertBufferARM = loadProc("vkAssertBufferARM")
	}
	if helpers.Has(ChecksumValidationExtensionName) {
		helpers.procs.assertBufferTrace = loadProc("vkAssertBufferTRACETOOLTEST")
	}
	if helpers.Has(ObjectPropertyExtensionName) {
		helpers.procs.objectProperty = loadProc("vkGetDeviceTracingObjectPropertyTRACETOOLTEST")
	}
	if helpers.Has(FrameEndExtensionName) {
		helpers.procs.frameEnd = loadProc("vkFrameEndTRACETOOLTEST")
	}
	if helpers.Has(TraceHelpers2ExtensionName) {
		helpers.procs.updateBuffer = loadProc("vkUpdateBufferTRACETOOLTEST")
		helpers.procs.threadBarrier = loadProc("vkThreadBarrierTRACETOOLTEST")
	}

	return helpers
}

func (h *DeviceHelpers) Available() bool {
	p := h.procs
	return p.assertBufferARM != nil || p.assertBufferTrace != nil || p.objectProperty != nil ||
		p.frameEnd != nil || p.updateBuffer != nil || p.threadBarrier != nil
}

func (h *DeviceHelpers) Has(extensionName string) bool {
	return h.extensions.Has(extensionName)
}

// CanAssertBuffer reports whether AssertBuffer will reach a tool
func (h *DeviceHelpers) CanAssertBuffer() bool {
	return h.procs.assertBufferARM != nil || h.procs.assertBufferTrace != nil
}

// AssertBuffer asks the tool for the adler32 checksum of [offset, offset+size) of the buffer. Size
// may be memutils.WholeSize. VK_ARM_trace_helpers is preferred when both variants are loaded.
func (h *DeviceHelpers) AssertBuffer(buffer core1_0.Buffer, offset, size int, comment string) (uint32, error) {
	if offset < 0 || (size < 0 && size != memutils.WholeSize) {
		return 0, errors.Newf("invalid buffer range at offset %d size %d", offset, size)
	}

	switch {
	case h.procs.assertBufferARM != nil:
		checksum, res := callAssertBufferARM(h.procs.assertBufferARM, h.device, bufferHandle(buffer), deviceSize(offset), deviceSize(size), comment)
		if res != core1_0.VKSuccess {
			return 0, res.ToError()
		}
		return checksum, nil
	case h.procs.assertBufferTrace != nil:
		return callAssertBufferTrace(h.procs.assertBufferTrace, h.device, bufferHandle(buffer), deviceSize(offset), deviceSize(size), comment), nil
	}

	return 0, errors.Wrap(ErrUnavailable, "vkAssertBuffer")
}

func (h *DeviceHelpers) ObjectProperty(objectType core1_0.ObjectType, handle uint64, property ObjectProperty) (uint64, error) {
	if h.procs.objectProperty == nil {
		return 0, errors.Wrap(ErrUnavailable, "vkGetDeviceTracingObjectPropertyTRACETOOLTEST")
	}

	return callObjectProperty(h.procs.objectProperty, h.device, int32(objectType), handle, int32(property)), nil
}

func (h *DeviceHelpers) FrameEnd() error {
	if h.procs.frameEnd == nil {
		return errors.Wrap(ErrUnavailable, "vkFrameEndTRACETOOLTEST")
	}

	callFrameEnd(h.procs.frameEnd, h.device)
	return nil
}

func (h *DeviceHelpers) UpdateBuffer(buffer core1_0.Buffer, info UpdateMemoryInfo) error {
	if h.procs.updateBuffer == nil {
		return errors.Wrap(ErrUnavailable, "vkUpdateBufferTRACETOOLTEST")
	}

	if info.Flags&UpdateMemoryPatchFormat != 0 {
		if info.DataSize != 0 {
			return errors.Newf("patch format updates must have a data size of zero, got %d", info.DataSize)
		}
		if _, err := DecodePatch(info.Data); err != nil {
			return err
		}
	} else if info.DataSize > len(info.Data) {
		return errors.Newf("update of %d bytes only has %d bytes of data", info.DataSize, len(info.Data))
	}

	callUpdateBuffer(h.procs.updateBuffer, h.device, bufferHandle(buffer), info)
	return nil
}

func (h *DeviceHelpers) ThreadBarrier(callIDs []uint32) error {
	if h.procs.threadBarrier == nil {
		return errors.Wrap(ErrUnavailable, "vkThreadBarrierTRACETOOLTEST")
	}

	callThreadBarrier(h.procs.threadBarrier, callIDs)
	return nil
}

func deviceSize(size int) uint64 {
	if size == memutils.WholeSize {
		return ^uint64(0)
	}
	return uint64(size)
}
