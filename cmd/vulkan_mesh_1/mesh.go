package main

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/vkngwrapper/core/v2/common"
)

// VK_EXT_mesh_shader is not wrapped by the extension bindings
const (
	meshShaderExtensionName = "VK_EXT_mesh_shader"

	structureTypeMeshFeatures   int32 = 1000328000
	structureTypeMeshProperties int32 = 1000328001
)

var meshFeatureNames = []string{
	"taskShader",
	"meshShader",
	"multiviewMeshShader",
	"primitiveFragmentShadingRateMeshShader",
	"meshShaderQueries",
}

// MeshLimits has the member layout of VkPhysicalDeviceMeshShaderPropertiesEXT after its header.
// The Prefers* members are VkBool32.
type MeshLimits struct {
	MaxTaskWorkGroupTotalCount            uint32
	MaxTaskWorkGroupCount                 [3]uint32
	MaxTaskWorkGroupInvocations           uint32
	MaxTaskWorkGroupSize                  [3]uint32
	MaxTaskPayloadSize                    uint32
	MaxTaskSharedMemorySize               uint32
	MaxTaskPayloadAndSharedMemorySize     uint32
	MaxMeshWorkGroupTotalCount            uint32
	MaxMeshWorkGroupCount                 [3]uint32
	MaxMeshWorkGroupInvocations           uint32
	MaxMeshWorkGroupSize                  [3]uint32
	MaxMeshSharedMemorySize               uint32
	MaxMeshPayloadAndSharedMemorySize     uint32
	MaxMeshOutputMemorySize               uint32
	MaxMeshPayloadAndOutputMemorySize     uint32
	MaxMeshOutputComponents               uint32
	MaxMeshOutputVertices                 uint32
	MaxMeshOutputPrimitives               uint32
	MaxMeshOutputLayers                   uint32
	MaxMeshMultiviewViewCount             uint32
	MeshOutputPerVertexGranularity        uint32
	MeshOutputPerPrimitiveGranularity     uint32
	MaxPreferredTaskWorkGroupInvocations  uint32
	MaxPreferredMeshWorkGroupInvocations  uint32
	PrefersLocalInvocationVertexOutput    uint32
	PrefersLocalInvocationPrimitiveOutput uint32
	PrefersCompactVertexOutput            uint32
	PrefersCompactPrimitiveOutput         uint32
}

type cMeshProperties struct {
	sType  int32
	next   unsafe.Pointer
	limits MeshLimits
}

// MeshShaderProperties reads the mesh shader limits through vkGetPhysicalDeviceProperties2
type MeshShaderProperties struct {
	Limits MeshLimits

	common.NextOutData
}

var _ common.OutData = &MeshShaderProperties{}

func (o *MeshShaderProperties) PopulateHeader(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	if preallocated == nil {
		preallocated = allocator.Malloc(int(unsafe.Sizeof(cMeshProperties{})))
	}
	*(*cMeshProperties)(preallocated) = cMeshProperties{sType: structureTypeMeshProperties, next: next}
	return preallocated, nil
}

func (o *MeshShaderProperties) PopulateOutData(cDataPointer unsafe.Pointer, helpers ...any) (next unsafe.Pointer, err error) {
	properties := (*cMeshProperties)(cDataPointer)
	o.Limits = properties.limits
	return properties.next, nil
}

func printMeshFeatures(w io.Writer, values []bool) {
	fmt.Fprintln(w, "Mesh features supported:")
	for i, name := range meshFeatureNames {
		fmt.Fprintf(w, "\t%s = %t\n", name, values[i])
	}
}

func printMeshLimits(w io.Writer, l MeshLimits) {
	triple := func(v [3]uint32) string {
		return fmt.Sprintf("%d,%d,%d", v[0], v[1], v[2])
	}

	fmt.Fprintln(w, "Mesh properties:")
	for _, line := range []struct {
		name  string
		value any
	}{
		{"maxTaskWorkGroupTotalCount", l.MaxTaskWorkGroupTotalCount},
		{"maxTaskWorkGroupCount", triple(l.MaxTaskWorkGroupCount)},
		{"maxTaskWorkGroupInvocations", l.MaxTaskWorkGroupInvocations},
		{"maxTaskWorkGroupSize", triple(l.MaxTaskWorkGroupSize)},
		{"maxTaskPayloadSize", l.MaxTaskPayloadSize},
		{"maxTaskSharedMemorySize", l.MaxTaskSharedMemorySize},
		{"maxTaskPayloadAndSharedMemorySize", l.MaxTaskPayloadAndSharedMemorySize},
		{"maxMeshWorkGroupTotalCount", l.MaxMeshWorkGroupTotalCount},
		{"maxMeshWorkGroupCount", triple(l.MaxMeshWorkGroupCount)},
		{"maxMeshWorkGroupInvocations", l.MaxMeshWorkGroupInvocations},
		{"maxMeshWorkGroupSize", triple(l.MaxMeshWorkGroupSize)},
		{"maxMeshSharedMemorySize", l.MaxMeshSharedMemorySize},
		{"maxMeshPayloadAndSharedMemorySize", l.MaxMeshPayloadAndSharedMemorySize},
		{"maxMeshOutputMemorySize", l.MaxMeshOutputMemorySize},
		{"maxMeshPayloadAndOutputMemorySize", l.MaxMeshPayloadAndOutputMemorySize},
		{"maxMeshOutputComponents", l.MaxMeshOutputComponents},
		{"maxMeshOutputVertices", l.MaxMeshOutputVertices},
		{"maxMeshOutputPrimitives", l.MaxMeshOutputPrimitives},
		{"maxMeshOutputLayers", l.MaxMeshOutputLayers},
		{"maxMeshMultiviewViewCount", l.MaxMeshMultiviewViewCount},
		{"meshOutputPerVertexGranularity", l.MeshOutputPerVertexGranularity},
		{"meshOutputPerPrimitiveGranularity", l.MeshOutputPerPrimitiveGranularity},
		{"maxPreferredTaskWorkGroupInvocations", l.MaxPreferredTaskWorkGroupInvocations},
		{"maxPreferredMeshWorkGroupInvocations", l.MaxPreferredMeshWorkGroupInvocations},
		{"prefersLocalInvocationVertexOutput", l.PrefersLocalInvocationVertexOutput},
		{"prefersLocalInvocationPrimitiveOutput", l.PrefersLocalInvocationPrimitiveOutput},
		{"prefersCompactVertexOutput", l.PrefersCompactVertexOutput},
		{"prefersCompactPrimitiveOutput", l.PrefersCompactPrimitiveOutput},
	} {
		fmt.Fprintf(w, "\t%s = %v\n", line.name, line.value)
	}
}
