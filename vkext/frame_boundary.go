package vkext

import (
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	FrameBoundaryExtensionName = "VK_EXT_frame_boundary"

	StructureTypeFrameBoundary int32 = 1000375001
)

// FrameBoundaryFlags is a VkFrameBoundaryFlagsEXT
type FrameBoundaryFlags uint32

const FrameBoundaryFrameEnd FrameBoundaryFlags = 0x1

type cFrameBoundary struct {
	sType       int32
	next        unsafe.Pointer
	flags       uint32
	frameID     uint64
	imageCount  uint32
	images      unsafe.Pointer
	bufferCount uint32
	buffers     unsafe.Pointer
	tagName     uint64
	tagSize     uintptr
	tag         unsafe.Pointer
}

// FrameBoundary tells tools which submit ends a frame. Chain it into a SubmitInfo.
type FrameBoundary struct {
	Flags   FrameBoundaryFlags
	FrameID uint64
	Images  []core1_0.Image
	Buffers []core1_0.Buffer
	TagName uint64
	Tag     []byte

	common.NextOptions
}

var _ common.Options = FrameBoundary{}

func handleArray(allocator *cgoparam.Allocator, handles []uint64) unsafe.Pointer {
	if len(handles) == 0 {
		return nil
	}
	array := allocator.Malloc(8 * len(handles))
	copy(unsafe.Slice((*uint64)(array), len(handles)), handles)
	return array
}

func (o FrameBoundary) PopulateCPointer(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	if preallocated == nil {
		preallocated = allocator.Malloc(int(unsafe.Sizeof(cFrameBoundary{})))
	}

	images := make([]uint64, 0, len(o.Images))
	for _, image := range o.Images {
		images = append(images, uint64(image.Handle()))
	}
	buffers := make([]uint64, 0, len(o.Buffers))
	for _, buffer := range o.Buffers {
		buffers = append(buffers, uint64(buffer.Handle()))
	}

	var tag unsafe.Pointer
	if len(o.Tag) > 0 {
		tag = allocator.Malloc(len(o.Tag))
		copy(unsafe.Slice((*byte)(tag), len(o.Tag)), o.Tag)
	}

	*(*cFrameBoundary)(preallocated) = cFrameBoundary{
		sType:       StructureTypeFrameBoundary,
		next:        next,
		flags:       uint32(o.Flags),
		frameID:     o.FrameID,
		imageCount:  uint32(len(images)),
		images:      handleArray(allocator, images),
		bufferCount: uint32(len(buffers)),
		buffers:     handleArray(allocator, buffers),
		tagName:     o.TagName,
		tagSize:     uintptr(len(o.Tag)),
		tag:         tag,
	}
	return preallocated, nil
}
