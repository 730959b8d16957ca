package tracehelpers

import (
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/vkngwrapper/core/v2/common"
)

// FlushRangesStructureType identifies FlushRangesFlags in a MappedMemoryRange chain
const FlushRangesStructureType int32 = 131316

type cFlushRangesFlags struct {
	sType int32
	next  unsafe.Pointer
	flags uint32
}

// FlushRangesFlags is chained onto a MappedMemoryRange to tell the tool how to treat the flush
type FlushRangesFlags struct {
	Flags FlushOperationFlags

	common.NextOptions
}

var _ common.Options = FlushRangesFlags{}

func (o FlushRangesFlags) PopulateCPointer(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	if preallocated == nil {
		preallocated = allocator.Malloc(int(unsafe.Sizeof(cFlushRangesFlags{})))
	}
	*(*cFlushRangesFlags)(preallocated) = cFlushRangesFlags{
		sType: FlushRangesStructureType,
		next:  next,
		flags: uint32(o.Flags),
	}
	return preallocated, nil
}
