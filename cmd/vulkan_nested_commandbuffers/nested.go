package main

import (
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/vkngwrapper/core/v2/common"
)

// VK_EXT_nested_command_buffer is not wrapped by the extension bindings, so its structures are
// laid out by hand
const (
	nestedCommandBufferExtensionName = "VK_EXT_nested_command_buffer"

	structureTypeNestedFeatures   int32 = 1000451000
	structureTypeNestedProperties int32 = 1000451001
)

type cNestedFeatures struct {
	sType                              int32
	next                               unsafe.Pointer
	nestedCommandBuffer                uint32
	nestedCommandBufferRendering       uint32
	nestedCommandBufferSimultaneousUse uint32
}

type cNestedProperties struct {
	sType                        int32
	next                         unsafe.Pointer
	maxCommandBufferNestingLevel uint32
}

// NestedCommandBufferFeatures enables nested command buffers at device creation
type NestedCommandBufferFeatures struct {
	NestedCommandBuffer                bool
	NestedCommandBufferRendering       bool
	NestedCommandBufferSimultaneousUse bool

	common.NextOptions
}

var _ common.Options = NestedCommandBufferFeatures{}

func boolValue(value bool) uint32 {
	if value {
		return 1
	}
	return 0
}

func (o NestedCommandBufferFeatures) PopulateCPointer(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	if preallocated == nil {
		preallocated = allocator.Malloc(int(unsafe.Sizeof(cNestedFeatures{})))
	}
	features := (*cNestedFeatures)(preallocated)
	features.sType = structureTypeNestedFeatures
	features.next = next
	features.nestedCommandBuffer = boolValue(o.NestedCommandBuffer)
	features.nestedCommandBufferRendering = boolValue(o.NestedCommandBufferRendering)
	features.nestedCommandBufferSimultaneousUse = boolValue(o.NestedCommandBufferSimultaneousUse)
	return preallocated, nil
}

// NestedCommandBufferProperties reads the nesting limit through vkGetPhysicalDeviceProperties2
type NestedCommandBufferProperties struct {
	MaxCommandBufferNestingLevel int

	common.NextOutData
}

var _ common.OutData = &NestedCommandBufferProperties{}

func (o *NestedCommandBufferProperties) PopulateHeader(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	if preallocated == nil {
		preallocated = allocator.Malloc(int(unsafe.Sizeof(cNestedProperties{})))
	}
	properties := (*cNestedProperties)(preallocated)
	properties.sType = structureTypeNestedProperties
	properties.next = next
	properties.maxCommandBufferNestingLevel = 0
	return preallocated, nil
}

func (o *NestedCommandBufferProperties) PopulateOutData(cDataPointer unsafe.Pointer, helpers ...any) (next unsafe.Pointer, err error) {
	properties := (*cNestedProperties)(cDataPointer)
	o.MaxCommandBufferNestingLevel = int(properties.maxCommandBufferNestingLevel)
	return properties.next, nil
}
