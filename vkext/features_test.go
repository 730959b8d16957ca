package vkext

import (
	"testing"
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/stretchr/testify/require"
)

func cBools(ptr unsafe.Pointer, count int) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Add(ptr, headerSize)), count)
}

func TestVulkan13FeaturesPopulate(t *testing.T) {
	alloc := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(alloc)

	next := alloc.Malloc(8)
	ptr, err := Vulkan13Features{PrivateData: true, Synchronization2: true}.PopulateCPointer(alloc, nil, next)
	require.NoError(t, err)

	header := (*cHeader)(ptr)
	require.Equal(t, int32(53), header.sType)
	require.Equal(t, next, header.next)
	require.Equal(t, []uint32{0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0}, cBools(ptr, 15))
}

func TestVulkan13FeaturesReadback(t *testing.T) {
	alloc := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(alloc)

	var features Vulkan13Features
	ptr, err := features.PopulateHeader(alloc, nil, nil)
	require.NoError(t, err)
	require.Equal(t, make([]uint32, 15), cBools(ptr, 15))

	values := cBools(ptr, 15)
	values[0] = 1
	values[14] = 1

	next, err := features.PopulateOutData(ptr)
	require.NoError(t, err)
	require.Nil(t, next)
	require.Equal(t, Vulkan13Features{RobustImageAccess: true, Maintenance4: true}, features)
}

func TestVulkan13FeaturesMissing(t *testing.T) {
	requested := Vulkan13Features{PrivateData: true, DynamicRendering: true}
	require.Equal(t, []string{"privateData", "dynamicRendering"}, requested.Missing(Vulkan13Features{}))
	require.Empty(t, requested.Missing(Vulkan13Features{PrivateData: true, DynamicRendering: true, Maintenance4: true}))
	require.Empty(t, Vulkan13Features{}.Missing(Vulkan13Features{}))
}

func TestVulkan13FeaturesMerge(t *testing.T) {
	features := Vulkan13Features{Maintenance4: true}
	require.True(t, features.Any())
	require.False(t, Vulkan13Features{}.Any())

	features.Merge(Vulkan13Features{Synchronization2: true})
	require.Equal(t, Vulkan13Features{Maintenance4: true, Synchronization2: true}, features)
}

func TestBoolFeatures(t *testing.T) {
	alloc := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(alloc)

	ptr, err := BoolFeatures{StructureType: 1000295000, Values: []bool{true, false}}.PopulateCPointer(alloc, nil, nil)
	require.NoError(t, err)
	require.Equal(t, int32(1000295000), (*cHeader)(ptr).sType)
	require.Equal(t, []uint32{1, 0}, cBools(ptr, 2))

	queried := &BoolFeatures{StructureType: 1000295000, Values: make([]bool, 2)}
	ptr, err = queried.PopulateHeader(alloc, nil, nil)
	require.NoError(t, err)
	cBools(ptr, 2)[1] = 1

	_, err = queried.PopulateOutData(ptr)
	require.NoError(t, err)
	require.Equal(t, []bool{false, true}, queried.Values)
}
