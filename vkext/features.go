// Package vkext lays out the structures and entry points of Vulkan extensions and core versions
// that the vkngwrapper bindings do not wrap.
package vkext

import (
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/vkngwrapper/core/v2/common"
)

const (
	StructureTypeVulkan13Features int32 = 53
)

// cHeader is the leading sType and pNext pair every chained structure starts with
type cHeader struct {
	sType int32
	next  unsafe.Pointer
}

var headerSize = unsafe.Sizeof(cHeader{})

func boolValue(value bool) uint32 {
	if value {
		return 1
	}
	return 0
}

// writeBools lays out a structure made of a header followed by one VkBool32 per value
func writeBools(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, sType int32, next unsafe.Pointer, values []bool) unsafe.Pointer {
	if preallocated == nil {
		preallocated = allocator.Malloc(int(headerSize) + 4*len(values))
	}
	*(*cHeader)(preallocated) = cHeader{sType: sType, next: next}

	cValues := unsafe.Slice((*uint32)(unsafe.Add(preallocated, headerSize)), len(values))
	for i, value := range values {
		cValues[i] = boolValue(value)
	}
	return preallocated
}

func readBools(cDataPointer unsafe.Pointer, values []*bool) unsafe.Pointer {
	cValues := unsafe.Slice((*uint32)(unsafe.Add(cDataPointer, headerSize)), len(values))
	for i, value := range values {
		*value = cValues[i] != 0
	}
	return (*cHeader)(cDataPointer).next
}

// BoolFeatures is an extension feature structure made only of VkBool32 members, listed in
// declaration order. It can be chained into device creation or into a features query.
type BoolFeatures struct {
	StructureType int32
	Values        []bool

	common.NextOptions
	common.NextOutData
}

var _ common.Options = BoolFeatures{}
var _ common.OutData = &BoolFeatures{}

func (o BoolFeatures) PopulateCPointer(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	return writeBools(allocator, preallocated, o.StructureType, next, o.Values), nil
}

func (o *BoolFeatures) PopulateHeader(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	return writeBools(allocator, preallocated, o.StructureType, next, make([]bool, len(o.Values))), nil
}

func (o *BoolFeatures) PopulateOutData(cDataPointer unsafe.Pointer, helpers ...any) (next unsafe.Pointer, err error) {
	values := make([]*bool, len(o.Values))
	for i := range o.Values {
		values[i] = &o.Values[i]
	}
	return readBools(cDataPointer, values), nil
}

// Vulkan13Features mirrors VkPhysicalDeviceVulkan13Features
type Vulkan13Features struct {
	RobustImageAccess                                  bool
	InlineUniformBlock                                 bool
	DescriptorBindingInlineUniformBlockUpdateAfterBind bool
	PipelineCreationCacheControl                       bool
	PrivateData                                        bool
	ShaderDemoteToHelperInvocation                     bool
	ShaderTerminateInvocation                          bool
	SubgroupSizeControl                                bool
	ComputeFullSubgroups                               bool
	Synchronization2                                   bool
	TextureCompressionASTC_HDR                         bool
	ShaderZeroInitializeWorkgroupMemory                bool
	DynamicRendering                                   bool
	ShaderIntegerDotProduct                            bool
	Maintenance4                                       bool

	common.NextOptions
	common.NextOutData
}

var _ common.Options = Vulkan13Features{}
var _ common.OutData = &Vulkan13Features{}

var vulkan13FeatureNames = []string{
	"robustImageAccess",
	"inlineUniformBlock",
	"descriptorBindingInlineUniformBlockUpdateAfterBind",
	"pipelineCreationCacheControl",
	"privateData",
	"shaderDemoteToHelperInvocation",
	"shaderTerminateInvocation",
	"subgroupSizeControl",
	"computeFullSubgroups",
	"synchronization2",
	"textureCompressionASTC_HDR",
	"shaderZeroInitializeWorkgroupMemory",
	"dynamicRendering",
	"shaderIntegerDotProduct",
	"maintenance4",
}

// fields returns the members in declaration order
func (o *Vulkan13Features) fields() []*bool {
	return []*bool{
		&o.RobustImageAccess,
		&o.InlineUniformBlock,
		&o.DescriptorBindingInlineUniformBlockUpdateAfterBind,
		&o.PipelineCreationCacheControl,
		&o.PrivateData,
		&o.ShaderDemoteToHelperInvocation,
		&o.ShaderTerminateInvocation,
		&o.SubgroupSizeControl,
		&o.ComputeFullSubgroups,
		&o.Synchronization2,
		&o.TextureCompressionASTC_HDR,
		&o.ShaderZeroInitializeWorkgroupMemory,
		&o.DynamicRendering,
		&o.ShaderIntegerDotProduct,
		&o.Maintenance4,
	}
}

func (o Vulkan13Features) values() []bool {
	fields := o.fields()
	values := make([]bool, len(fields))
	for i, field := range fields {
		values[i] = *field
	}
	return values
}

// Missing names the features set in o that offered lacks
func (o Vulkan13Features) Missing(offered Vulkan13Features) []string {
	var missing []string
	has := offered.values()
	for i, wanted := range o.values() {
		if wanted && !has[i] {
			missing = append(missing, vulkan13FeatureNames[i])
		}
	}
	return missing
}

// Merge sets every feature that is set in other
func (o *Vulkan13Features) Merge(other Vulkan13Features) {
	for i, value := range other.values() {
		if value {
			*o.fields()[i] = true
		}
	}
}

// Any reports whether at least one feature is set
func (o Vulkan13Features) Any() bool {
	for _, value := range o.values() {
		if value {
			return true
		}
	}
	return false
}

func (o Vulkan13Features) PopulateCPointer(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	return writeBools(allocator, preallocated, StructureTypeVulkan13Features, next, o.values()), nil
}

func (o *Vulkan13Features) PopulateHeader(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	return writeBools(allocator, preallocated, StructureTypeVulkan13Features, next, make([]bool, len(vulkan13FeatureNames))), nil
}

func (o *Vulkan13Features) PopulateOutData(cDataPointer unsafe.Pointer, helpers ...any) (next unsafe.Pointer, err error) {
	return readBools(cDataPointer, o.fields()), nil
}
