package vulkan

import (
	"unsafe"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/ARM-software/tracetooltests-sub000/toolstest/internal/utils"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	khr_bind_memory2_shim "github.com/vkngwrapper/extensions/v2/khr_bind_memory2/shim"
)

// SynchronizedMemory is a device memory object whose mapping is reference counted, so that
// several resources living in the same allocation can be written through one mapping
type SynchronizedMemory struct {
	mapReferences int
	mapData       unsafe.Pointer
	mapOffset     int
	mapSize       int

	mapMutex        utils.OptionalMutex
	memory          core1_0.DeviceMemory
	memoryTypeIndex int
	size            int
	extensionData   *ExtensionData
}

func allocateSynchronizedMemory(device core1_0.Device, useMutex bool, extensionData *ExtensionData, allocateInfo core1_0.MemoryAllocateInfo) (*SynchronizedMemory, common.VkResult, error) {
	memory, res, err := device.AllocateMemory(nil, allocateInfo)
	if err != nil {
		return nil, res, err
	}

	return &SynchronizedMemory{
		memory: memory,
		mapMutex: utils.OptionalMutex{
			Enabled: useMutex,
		},
		memoryTypeIndex: allocateInfo.MemoryTypeIndex,
		size:            allocateInfo.AllocationSize,
		extensionData:   extensionData,
	}, res, nil
}

func (m *SynchronizedMemory) VulkanDeviceMemory() core1_0.DeviceMemory {
	return m.memory
}

func (m *SynchronizedMemory) MemoryTypeIndex() int {
	return m.memoryTypeIndex
}

func (m *SynchronizedMemory) Size() int {
	return m.size
}

func (m *SynchronizedMemory) BindVulkanBuffer(offset int, buffer core1_0.Buffer, next common.Options) (common.VkResult, error) {
	bindMemory2 := m.bindMemory2()
	if next != nil && bindMemory2 == nil {
		// We included a next pointer for BindBufferMemory2 but it isn't active
		return core1_0.VKErrorExtensionNotPresent, core1_0.VKErrorExtensionNotPresent.ToError()
	}

	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	if bindMemory2 != nil {
		return bindMemory2.BindBufferMemory2([]core1_1.BindBufferMemoryInfo{
			{
				Buffer:       buffer,
				Memory:       m.memory,
				MemoryOffset: offset,
				NextOptions:  common.NextOptions{Next: next},
			},
		})
	}

	return buffer.BindBufferMemory(m.memory, offset)
}

func (m *SynchronizedMemory) BindVulkanImage(offset int, image core1_0.Image, next common.Options) (common.VkResult, error) {
	bindMemory2 := m.bindMemory2()
	if next != nil && bindMemory2 == nil {
		// We included a next pointer for BindImageMemory2 but it isn't active
		return core1_0.VKErrorExtensionNotPresent, core1_0.VKErrorExtensionNotPresent.ToError()
	}

	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	if bindMemory2 != nil {
		return bindMemory2.BindImageMemory2([]core1_1.BindImageMemoryInfo{
			{
				Image:        image,
				MemoryOffset: uint64(offset),
				Memory:       m.memory,
				NextOptions:  common.NextOptions{Next: next},
			},
		})
	}

	return image.BindImageMemory(m.memory, offset)
}

func (m *SynchronizedMemory) bindMemory2() khr_bind_memory2_shim.Shim {
	if m.extensionData == nil || m.extensionData.BindMemory2 == nil {
		return nil
	}

	return m.extensionData.BindMemory2
}

func (m *SynchronizedMemory) References() int {
	return m.mapReferences
}

func (m *SynchronizedMemory) MappedData() unsafe.Pointer {
	return m.mapData
}

// Map maps [offset, offset+size) of the memory object. If the memory is already mapped, the
// existing mapping is reused as long as it contains the requested range.
func (m *SynchronizedMemory) Map(offset int, size int) (unsafe.Pointer, common.VkResult, error) {
	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	if size == memutils.WholeSize {
		size = m.size - offset
	}

	if m.mapReferences > 0 {
		if m.mapData == nil {
			return nil, core1_0.VKErrorUnknown, errors.New("the memory is showing existing mapping references, but no mapped memory")
		}

		if offset < m.mapOffset || offset+size > m.mapOffset+m.mapSize {
			return nil, core1_0.VKErrorMemoryMapFailed, errors.Newf("range at offset %d size %d is outside the existing mapping at offset %d size %d", offset, size, m.mapOffset, m.mapSize)
		}

		m.mapReferences++
		return unsafe.Add(m.mapData, offset-m.mapOffset), core1_0.VKSuccess, nil
	}

	mappedData, result, err := m.memory.Map(offset, size, 0)
	if err != nil {
		return nil, result, err
	}

	m.mapData = mappedData
	m.mapOffset = offset
	m.mapSize = size
	m.mapReferences = 1
	return mappedData, result, nil
}

func (m *SynchronizedMemory) Unmap() error {
	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	if m.mapReferences == 0 {
		return errors.New("device memory has more references being unmapped than are currently mapped")
	}

	m.mapReferences--
	if m.mapReferences == 0 {
		m.memory.Unmap()
		m.mapData = nil
	}

	return nil
}

func (m *SynchronizedMemory) FreeMemory() {
	m.mapMutex.Lock()
	defer m.mapMutex.Unlock()

	if m.mapReferences > 0 {
		m.memory.Unmap()
		m.mapReferences = 0
		m.mapData = nil
	}

	m.memory.Free(nil)
}
