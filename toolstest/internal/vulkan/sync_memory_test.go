package vulkan

import (
	"testing"
	"unsafe"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/mocks"
)

func testMemory(ctrl *gomock.Controller, size int, extensionData *ExtensionData) (*SynchronizedMemory, *mocks.MockDeviceMemory) {
	memory := mocks.EasyMockDeviceMemory(ctrl)
	return &SynchronizedMemory{
		memory:          memory,
		memoryTypeIndex: 1,
		size:            size,
		extensionData:   extensionData,
	}, memory
}

func TestMapReferenceCounting(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncMemory, memory := testMemory(ctrl, 1024, nil)

	data := make([]byte, 1024)
	dataPtr := unsafe.Pointer(&data[0])
	memory.EXPECT().Map(0, 1024, core1_0.MemoryMapFlags(0)).Return(dataPtr, core1_0.VKSuccess, nil)

	ptr, _, err := syncMemory.Map(0, memutils.WholeSize)
	require.NoError(t, err)
	require.Equal(t, dataPtr, ptr)
	require.Equal(t, 1, syncMemory.References())

	// A range inside the mapping reuses it
	ptr, _, err = syncMemory.Map(256, 128)
	require.NoError(t, err)
	require.Equal(t, unsafe.Pointer(&data[256]), ptr)
	require.Equal(t, 2, syncMemory.References())

	require.NoError(t, syncMemory.Unmap())
	require.Equal(t, 1, syncMemory.References())
	require.Equal(t, dataPtr, syncMemory.MappedData())

	memory.EXPECT().Unmap()
	require.NoError(t, syncMemory.Unmap())
	require.Equal(t, 0, syncMemory.References())
	require.Nil(t, syncMemory.MappedData())

	require.Error(t, syncMemory.Unmap())
}

func TestMapOutsideExistingMapping(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncMemory, memory := testMemory(ctrl, 1024, nil)

	data := make([]byte, 256)
	memory.EXPECT().Map(256, 256, core1_0.MemoryMapFlags(0)).Return(unsafe.Pointer(&data[0]), core1_0.VKSuccess, nil)

	_, _, err := syncMemory.Map(256, 256)
	require.NoError(t, err)

	ptr, _, err := syncMemory.Map(0, 64)
	require.Nil(t, ptr)
	require.Error(t, err)
	require.Equal(t, 1, syncMemory.References())
}

func TestFreeMappedMemory(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncMemory, memory := testMemory(ctrl, 64, nil)

	data := make([]byte, 64)
	memory.EXPECT().Map(0, 64, core1_0.MemoryMapFlags(0)).Return(unsafe.Pointer(&data[0]), core1_0.VKSuccess, nil)
	_, _, err := syncMemory.Map(0, 64)
	require.NoError(t, err)

	memory.EXPECT().Unmap()
	memory.EXPECT().Free(nil)
	syncMemory.FreeMemory()
	require.Equal(t, 0, syncMemory.References())
}

func TestBindBufferWithoutBindMemory2(t *testing.T) {
	ctrl := gomock.NewController(t)
	syncMemory, memory := testMemory(ctrl, 1024, &ExtensionData{})

	buffer := mocks.EasyMockBuffer(ctrl)
	buffer.EXPECT().BindBufferMemory(memory, 512).Return(core1_0.VKSuccess, nil)

	_, err := syncMemory.BindVulkanBuffer(512, buffer, nil)
	require.NoError(t, err)

	// A chained structure needs vkBindBufferMemory2
	res, err := syncMemory.BindVulkanBuffer(0, buffer, core1_1.MemoryAllocateFlagsInfo{})
	require.Equal(t, core1_0.VKErrorExtensionNotPresent, res)
	require.Error(t, err)
}

func TestBindBufferPrefersBindMemory2(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewDevice1_1(ctrl)
	syncMemory, memory := testMemory(ctrl, 1024, &ExtensionData{BindMemory2: device})

	buffer := mocks.EasyMockBuffer(ctrl)
	next := core1_1.MemoryAllocateFlagsInfo{Flags: core1_1.MemoryAllocateDeviceMask}
	device.EXPECT().BindBufferMemory2([]core1_1.BindBufferMemoryInfo{
		{
			Buffer:       buffer,
			Memory:       memory,
			MemoryOffset: 256,
			NextOptions:  common.NextOptions{Next: next},
		},
	}).Return(core1_0.VKSuccess, nil)

	_, err := syncMemory.BindVulkanBuffer(256, buffer, next)
	require.NoError(t, err)
}

func TestFlushOrInvalidateAllocations(t *testing.T) {
	ctrl := gomock.NewController(t)
	device := mocks.NewMockDevice(ctrl)
	props := testProperties(t)
	props.device = device

	memory := mocks.EasyMockDeviceMemory(ctrl)
	ranges := []core1_0.MappedMemoryRange{{Memory: memory, Offset: 64, Size: 128}}

	device.EXPECT().FlushMappedMemoryRanges(ranges).Return(core1_0.VKSuccess, nil)
	_, err := props.FlushOrInvalidateAllocations(ranges, CacheOperationFlush)
	require.NoError(t, err)

	device.EXPECT().InvalidateMappedMemoryRanges(ranges).Return(core1_0.VKSuccess, nil)
	_, err = props.FlushOrInvalidateAllocations(ranges, CacheOperationInvalidate)
	require.NoError(t, err)

	res, err := props.FlushOrInvalidateAllocations(nil, CacheOperationFlush)
	require.NoError(t, err)
	require.Equal(t, core1_0.VKSuccess, res)
}
