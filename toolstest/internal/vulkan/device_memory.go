package vulkan

import (
	"fmt"
	"sync/atomic"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// DeviceMemoryProperties wraps the memory properties of the selected physical device and keeps
// per-heap bookkeeping for every allocation a program makes through it
type DeviceMemoryProperties struct {
	// Number of device memory objects allocated from each heap
	blockCount [common.MaxMemoryHeaps]int32
	// Size of device memory objects allocated from each heap
	blockBytes [common.MaxMemoryHeaps]int64
	// Number of resources bound into memory from each heap
	allocationCount [common.MaxMemoryHeaps]int32
	// Size of resources bound into memory from each heap
	allocationBytes [common.MaxMemoryHeaps]int64

	// Whether the SynchronizedMemory objects created from this object should use a mutex to control access
	useMutex    bool
	memoryCount uint32

	device           core1_0.Device
	extensionData    *ExtensionData
	deviceProperties *core1_0.PhysicalDeviceProperties
	memoryProperties *core1_0.PhysicalDeviceMemoryProperties
}

func NewDeviceMemoryProperties(
	useMutex bool,
	device core1_0.Device,
	extensionData *ExtensionData,
	deviceProperties *core1_0.PhysicalDeviceProperties,
	memoryProperties *core1_0.PhysicalDeviceMemoryProperties,
) (*DeviceMemoryProperties, error) {
	if deviceProperties == nil || memoryProperties == nil {
		return nil, errors.New("device and memory properties must both be provided")
	}

	err := memutils.CheckPow2(deviceProperties.Limits.BufferImageGranularity, "device bufferImageGranularity")
	if err != nil {
		return nil, err
	}
	err = memutils.CheckPow2(deviceProperties.Limits.NonCoherentAtomSize, "device nonCoherentAtomSize")
	if err != nil {
		return nil, err
	}

	if len(memoryProperties.MemoryHeaps) > common.MaxMemoryHeaps {
		return nil, errors.Newf("device reports %d memory heaps, more than the maximum of %d", len(memoryProperties.MemoryHeaps), common.MaxMemoryHeaps)
	}

	return &DeviceMemoryProperties{
		useMutex:         useMutex,
		device:           device,
		extensionData:    extensionData,
		deviceProperties: deviceProperties,
		memoryProperties: memoryProperties,
	}, nil
}

func (m *DeviceMemoryProperties) MemoryTypeCount() int {
	return len(m.memoryProperties.MemoryTypes)
}

func (m *DeviceMemoryProperties) MemoryHeapCount() int {
	return len(m.memoryProperties.MemoryHeaps)
}

func (m *DeviceMemoryProperties) MemoryTypeIndexToHeapIndex(memTypeIndex int) int {
	return m.memoryProperties.MemoryTypes[memTypeIndex].HeapIndex
}

func (m *DeviceMemoryProperties) MemoryTypeProperties(memoryTypeIndex int) core1_0.MemoryType {
	return m.memoryProperties.MemoryTypes[memoryTypeIndex]
}

func (m *DeviceMemoryProperties) MemoryHeapProperties(heapIndex int) core1_0.MemoryHeap {
	return m.memoryProperties.MemoryHeaps[heapIndex]
}

func (m *DeviceMemoryProperties) DeviceProperties() *core1_0.PhysicalDeviceProperties {
	return m.deviceProperties
}

func (m *DeviceMemoryProperties) IsMemoryTypeHostNonCoherent(memoryTypeIndex int) bool {
	flags := m.memoryProperties.MemoryTypes[memoryTypeIndex].PropertyFlags

	return flags&(core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent) == core1_0.MemoryPropertyHostVisible
}

func (m *DeviceMemoryProperties) IsMemoryTypeHostVisible(memoryTypeIndex int) bool {
	return m.memoryProperties.MemoryTypes[memoryTypeIndex].PropertyFlags&core1_0.MemoryPropertyHostVisible != 0
}

// FindMemoryType returns the first memory type allowed by typeBits whose property flags
// contain all of the requested properties
func (m *DeviceMemoryProperties) FindMemoryType(typeBits uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	for memoryTypeIndex, memoryType := range m.memoryProperties.MemoryTypes {
		if typeBits&(1<<memoryTypeIndex) == 0 {
			continue
		}

		if memoryType.PropertyFlags&properties == properties {
			return memoryTypeIndex, nil
		}
	}

	return -1, errors.Newf("no memory type in bits 0x%x has properties %s", typeBits, properties)
}

func (m *DeviceMemoryProperties) CalculateBufferImageGranularity() int {
	granularity := m.deviceProperties.Limits.BufferImageGranularity

	if granularity < 1 {
		return 1
	}
	return granularity
}

func (m *DeviceMemoryProperties) NonCoherentAtomSize() int {
	atomSize := m.deviceProperties.Limits.NonCoherentAtomSize

	if atomSize < 1 {
		return 1
	}
	return atomSize
}

func (m *DeviceMemoryProperties) addBlockAllocation(heapIndex int, allocationSize int) {
	atomic.AddInt64(&m.blockBytes[heapIndex], int64(allocationSize))
	atomic.AddInt32(&m.blockCount[heapIndex], 1)
}

func (m *DeviceMemoryProperties) removeBlockAllocation(heapIndex, allocationSize int) {
	newVal := atomic.AddInt64(&m.blockBytes[heapIndex], int64(-allocationSize))
	if newVal < 0 {
		panic(fmt.Sprintf("block bytes for heapIndex %d went negative", heapIndex))
	}

	newCountVal := atomic.AddInt32(&m.blockCount[heapIndex], -1)
	if newCountVal < 0 {
		panic(fmt.Sprintf("block count for heapIndex %d went negative", heapIndex))
	}
}

// reserveAllocation counts a new device memory object against maxMemoryAllocationCount
func (m *DeviceMemoryProperties) reserveAllocation() (common.VkResult, error) {
	newDeviceCount := atomic.AddUint32(&m.memoryCount, 1)
	if int(newDeviceCount) > m.deviceProperties.Limits.MaxMemoryAllocationCount {
		// Decrement
		atomic.AddUint32(&m.memoryCount, ^uint32(0))
		return core1_0.VKErrorTooManyObjects, core1_0.VKErrorTooManyObjects.ToError()
	}

	return core1_0.VKSuccess, nil
}

func (m *DeviceMemoryProperties) releaseAllocation() {
	// Decrement
	atomic.AddUint32(&m.memoryCount, ^uint32(0))
}

func (m *DeviceMemoryProperties) AllocateVulkanMemory(
	allocateInfo core1_0.MemoryAllocateInfo,
) (mem *SynchronizedMemory, res common.VkResult, err error) {
	if allocateInfo.MemoryTypeIndex < 0 || allocateInfo.MemoryTypeIndex >= m.MemoryTypeCount() {
		return nil, core1_0.VKErrorUnknown, errors.Newf("attempted to allocate from unsupported memory type index %d", allocateInfo.MemoryTypeIndex)
	}

	res, err = m.reserveAllocation()
	if err != nil {
		return nil, res, err
	}

	mem, res, err = allocateSynchronizedMemory(m.device, m.useMutex, m.extensionData, allocateInfo)
	if err != nil {
		m.releaseAllocation()
		return nil, res, err
	}

	m.addBlockAllocation(m.MemoryTypeIndexToHeapIndex(allocateInfo.MemoryTypeIndex), allocateInfo.AllocationSize)
	return mem, res, nil
}

func (m *DeviceMemoryProperties) FreeVulkanMemory(memory *SynchronizedMemory) {
	memory.FreeMemory()

	heapIndex := m.MemoryTypeIndexToHeapIndex(memory.MemoryTypeIndex())
	m.removeBlockAllocation(heapIndex, memory.Size())
	m.releaseAllocation()
}

// AddAllocation records a resource bound into memory of the given type
func (m *DeviceMemoryProperties) AddAllocation(memoryTypeIndex int, size int) {
	heapIndex := m.MemoryTypeIndexToHeapIndex(memoryTypeIndex)
	atomic.AddInt64(&m.allocationBytes[heapIndex], int64(size))
	atomic.AddInt32(&m.allocationCount[heapIndex], 1)
}

func (m *DeviceMemoryProperties) RemoveAllocation(memoryTypeIndex int, size int) {
	heapIndex := m.MemoryTypeIndexToHeapIndex(memoryTypeIndex)
	newSizeVal := atomic.AddInt64(&m.allocationBytes[heapIndex], int64(-size))
	if newSizeVal < 0 {
		panic(fmt.Sprintf("allocation bytes for heapIndex %d went negative", heapIndex))
	}

	newCountVal := atomic.AddInt32(&m.allocationCount[heapIndex], -1)
	if newCountVal < 0 {
		panic(fmt.Sprintf("allocation count for heapIndex %d went negative", heapIndex))
	}
}

func (m *DeviceMemoryProperties) HeapStatistics(heapIndex int, stats *memutils.Statistics) {
	stats.MemoryObjects = int(atomic.LoadInt32(&m.blockCount[heapIndex]))
	stats.MemoryBytes = int(atomic.LoadInt64(&m.blockBytes[heapIndex]))
	stats.BoundResources = int(atomic.LoadInt32(&m.allocationCount[heapIndex]))
	stats.BoundBytes = int(atomic.LoadInt64(&m.allocationBytes[heapIndex]))
}

func (m *DeviceMemoryProperties) AllocationCount() uint32 {
	return atomic.LoadUint32(&m.memoryCount)
}

type CacheOperation uint32

const (
	CacheOperationFlush CacheOperation = iota
	CacheOperationInvalidate
)

var cacheOperationMapping = make(map[CacheOperation]string)

func (o CacheOperation) String() string {
	return cacheOperationMapping[o]
}

func init() {
	cacheOperationMapping[CacheOperationFlush] = "CacheOperationFlush"
	cacheOperationMapping[CacheOperationInvalidate] = "CacheOperationInvalidate"
}

// AtomAlignedRange widens [offset, offset+size) to nonCoherentAtomSize boundaries, clamped to the
// memory object's size. A size of memutils.WholeSize is passed through unchanged.
func (m *DeviceMemoryProperties) AtomAlignedRange(offset, size, memorySize int) (int, int) {
	if size == memutils.WholeSize {
		return memutils.AlignDown(offset, uint(m.NonCoherentAtomSize())), memutils.WholeSize
	}

	atom := uint(m.NonCoherentAtomSize())
	start := memutils.AlignDown(offset, atom)
	end := memutils.AlignUp(offset+size, atom)
	if end > memorySize {
		end = memorySize
	}

	return start, end - start
}

func (m *DeviceMemoryProperties) FlushOrInvalidateAllocations(memRanges []core1_0.MappedMemoryRange, operation CacheOperation) (common.VkResult, error) {
	if len(memRanges) == 0 {
		return core1_0.VKSuccess, nil
	}

	switch operation {
	case CacheOperationFlush:
		return m.device.FlushMappedMemoryRanges(memRanges)
	case CacheOperationInvalidate:
		return m.device.InvalidateMappedMemoryRanges(memRanges)
	}

	return core1_0.VKErrorUnknown, errors.Newf("attempted to carry out invalid cache operation %s", operation.String())
}
