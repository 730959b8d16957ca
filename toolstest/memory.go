package toolstest

import (
	"fmt"
	"unsafe"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/ARM-software/tracetooltests-sub000/toolstest/internal/vulkan"
	"github.com/ARM-software/tracetooltests-sub000/tracehelpers"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/core/v2/driver"
	"golang.org/x/exp/slog"
)

// allocation is a device memory object handed out by AllocateMemory, together with the
// resources bound into it
type allocation struct {
	memory *vulkan.SynchronizedMemory
	bound  []int
}

func (c *Context) releaseAllocation(alloc *allocation) {
	for _, size := range alloc.bound {
		c.memory.RemoveAllocation(alloc.memory.MemoryTypeIndex(), size)
	}
	alloc.bound = nil
	c.memory.FreeVulkanMemory(alloc.memory)
}

func (c *Context) lookupAllocation(memory core1_0.DeviceMemory) (*allocation, error) {
	if memory == nil {
		return nil, errors.New("device memory is nil")
	}

	c.allocationLock.Lock()
	defer c.allocationLock.Unlock()

	alloc, ok := c.allocations.Get(memory.Handle())
	if !ok {
		return nil, errors.Newf("device memory %v was not allocated through the test context", memory.Handle())
	}
	return alloc, nil
}

// FindMemoryType returns the first memory type allowed by typeBits that has every requested
// property flag
func (c *Context) FindMemoryType(typeBits uint32, properties core1_0.MemoryPropertyFlags) (int, error) {
	return c.memory.FindMemoryType(typeBits, properties)
}

func (c *Context) MemoryTypeCount() int {
	return c.memory.MemoryTypeCount()
}

func (c *Context) MemoryType(memoryTypeIndex int) core1_0.MemoryType {
	return c.memory.MemoryTypeProperties(memoryTypeIndex)
}

func (c *Context) MemoryHeapCount() int {
	return c.memory.MemoryHeapCount()
}

func (c *Context) MemoryHeap(heapIndex int) core1_0.MemoryHeap {
	return c.memory.MemoryHeapProperties(heapIndex)
}

func (c *Context) NonCoherentAtomSize() int {
	return c.memory.NonCoherentAtomSize()
}

func (c *Context) BufferImageGranularity() int {
	return c.memory.CalculateBufferImageGranularity()
}

// HeapStatistics fills stats with the memory objects and bound resources living in a heap
func (c *Context) HeapStatistics(heapIndex int, stats *memutils.Statistics) {
	c.memory.HeapStatistics(heapIndex, stats)
}

// AllocateMemory allocates a device memory object. It must be released with FreeMemory.
func (c *Context) AllocateMemory(allocateInfo core1_0.MemoryAllocateInfo) (core1_0.DeviceMemory, error) {
	memory, res, err := c.memory.AllocateVulkanMemory(allocateInfo)
	if err := Check(res, err); err != nil {
		return nil, errors.Wrapf(err, "allocating %d bytes from memory type %d", allocateInfo.AllocationSize, allocateInfo.MemoryTypeIndex)
	}

	c.allocationLock.Lock()
	c.allocations.Put(memory.VulkanDeviceMemory().Handle(), &allocation{memory: memory})
	c.allocationLock.Unlock()

	return memory.VulkanDeviceMemory(), nil
}

// FreeMemory releases memory from AllocateMemory, unmapping it first if needed
func (c *Context) FreeMemory(memory core1_0.DeviceMemory) {
	alloc, err := c.lookupAllocation(memory)
	if err != nil {
		c.Logger.Error("could not free device memory", slog.Any("error", err))
		return
	}

	c.allocationLock.Lock()
	c.allocations.Delete(memory.Handle())
	c.allocationLock.Unlock()

	c.releaseAllocation(alloc)
}

// MemoryTypeIndex returns the memory type memory was allocated from
func (c *Context) MemoryTypeIndex(memory core1_0.DeviceMemory) (int, error) {
	alloc, err := c.lookupAllocation(memory)
	if err != nil {
		return -1, err
	}
	return alloc.memory.MemoryTypeIndex(), nil
}

// IsHostCoherent reports whether writes through a mapping of memory are visible without a flush
func (c *Context) IsHostCoherent(memory core1_0.DeviceMemory) (bool, error) {
	memoryTypeIndex, err := c.MemoryTypeIndex(memory)
	if err != nil {
		return false, err
	}
	return !c.memory.IsMemoryTypeHostNonCoherent(memoryTypeIndex), nil
}

// MapMemory maps a range of memory. Mapping memory that is already mapped reuses the mapping,
// as long as the requested range lies inside it, and each MapMemory needs its own UnmapMemory.
func (c *Context) MapMemory(memory core1_0.DeviceMemory, offset, size int) (unsafe.Pointer, error) {
	alloc, err := c.lookupAllocation(memory)
	if err != nil {
		return nil, err
	}

	data, res, err := alloc.memory.Map(offset, size)
	if err := Check(res, err); err != nil {
		return nil, err
	}
	return data, nil
}

// MapBytes maps a range of memory as a byte slice of the given size
func (c *Context) MapBytes(memory core1_0.DeviceMemory, offset, size int) ([]byte, error) {
	data, err := c.MapMemory(memory, offset, size)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(data), size), nil
}

func (c *Context) UnmapMemory(memory core1_0.DeviceMemory) error {
	alloc, err := c.lookupAllocation(memory)
	if err != nil {
		return err
	}
	return alloc.memory.Unmap()
}

// BindBuffer binds buffer at offset of memory, through vkBindBufferMemory2 when it is available.
// next is chained into the bind info and requires vkBindBufferMemory2.
func (c *Context) BindBuffer(buffer core1_0.Buffer, memory core1_0.DeviceMemory, offset int, next common.Options) error {
	alloc, err := c.lookupAllocation(memory)
	if err != nil {
		return err
	}

	res, err := alloc.memory.BindVulkanBuffer(offset, buffer, next)
	if err := Check(res, err); err != nil {
		return err
	}

	c.recordBinding(alloc, buffer.MemoryRequirements().Size)
	return nil
}

// BindImage binds image at offset of memory, through vkBindImageMemory2 when it is available
func (c *Context) BindImage(image core1_0.Image, memory core1_0.DeviceMemory, offset int, next common.Options) error {
	alloc, err := c.lookupAllocation(memory)
	if err != nil {
		return err
	}

	res, err := alloc.memory.BindVulkanImage(offset, image, next)
	if err := Check(res, err); err != nil {
		return err
	}

	c.recordBinding(alloc, image.MemoryRequirements().Size)
	return nil
}

func (c *Context) recordBinding(alloc *allocation, size int) {
	c.allocationLock.Lock()
	alloc.bound = append(alloc.bound, size)
	c.allocationLock.Unlock()

	c.memory.AddAllocation(alloc.memory.MemoryTypeIndex(), size)
}

// BindBufferMemory binds buffers into memory one after another, stride bytes apart. When name
// is set each buffer is named name_<index>_offset=<offset>.
func (c *Context) BindBufferMemory(buffers []core1_0.Buffer, memory core1_0.DeviceMemory, stride int, name string) error {
	offset := 0
	for index, buffer := range buffers {
		err := c.BindBuffer(buffer, memory, offset, nil)
		if err != nil {
			return errors.Wrapf(err, "binding buffer %d", index)
		}
		offset += stride
	}

	c.nameBuffers(buffers, stride, name)
	return nil
}

func (c *Context) nameBuffers(buffers []core1_0.Buffer, stride int, name string) {
	if name == "" {
		return
	}

	for index, buffer := range buffers {
		c.SetName(core1_0.ObjectTypeBuffer, driver.VulkanHandle(buffer.Handle()), fmt.Sprintf("%s_%d_offset=%d", name, index, index*stride))
	}
}

// BufferMemoryOptions control AllocateBufferMemory
type BufferMemoryOptions struct {
	// DeviceAddress allocates with the device address flag
	DeviceAddress bool
	// Dedicated gives every buffer its own memory object instead of sharing one
	Dedicated bool
	// Pattern fills buffer i with the byte i instead of zero
	Pattern bool
	// Name labels the buffers, see BindBufferMemory
	Name string
}

// AllocateBufferMemory allocates host visible, coherent memory for buffers of identical size,
// binds them and fills them. It returns the memory objects and the aligned size of one buffer.
func (c *Context) AllocateBufferMemory(buffers []core1_0.Buffer, options BufferMemoryOptions) ([]core1_0.DeviceMemory, int, error) {
	if len(buffers) == 0 {
		return nil, 0, errors.New("no buffers to allocate memory for")
	}

	count := 1
	if options.Dedicated {
		count = len(buffers)
	}

	if options.DeviceAddress && !options.Dedicated {
		fmt.Println("We're binding multiple bufferdeviceaddress buffers to a single device memory here in violation of VUID-VkBufferDeviceAddressInfo-buffer-02600")
	}

	var memories []core1_0.DeviceMemory
	freeAll := func() {
		for _, memory := range memories {
			c.FreeMemory(memory)
		}
	}

	alignedSize := 0
	for index := 0; index < count; index++ {
		requirements := buffers[index].MemoryRequirements()
		memoryTypeIndex, err := c.FindMemoryType(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if err != nil {
			freeAll()
			return nil, 0, err
		}

		size := memutils.AlignUp(requirements.Size, uint(requirements.Alignment))
		if index > 0 && size != alignedSize {
			freeAll()
			return nil, 0, errors.Newf("buffer %d needs %d bytes but buffer 0 needs %d", index, size, alignedSize)
		}
		alignedSize = size

		allocateInfo := core1_0.MemoryAllocateInfo{
			AllocationSize:  alignedSize,
			MemoryTypeIndex: memoryTypeIndex,
		}
		if !options.Dedicated {
			allocateInfo.AllocationSize = alignedSize * len(buffers)
		}

		if c.APIVersion >= common.Vulkan1_1 {
			var flags core1_1.MemoryAllocateFlags
			if options.DeviceAddress {
				flags |= core1_2.MemoryAllocateDeviceAddress
			}
			allocateInfo.NextOptions = common.NextOptions{Next: core1_1.MemoryAllocateFlagsInfo{Flags: flags}}
		}

		memory, err := c.AllocateMemory(allocateInfo)
		if err != nil {
			freeAll()
			return nil, 0, err
		}
		memories = append(memories, memory)
	}

	memoryFor := func(index int) (core1_0.DeviceMemory, int) {
		if options.Dedicated {
			return memories[index], 0
		}
		return memories[0], index * alignedSize
	}

	for index, buffer := range buffers {
		memory, offset := memoryFor(index)
		err := c.BindBuffer(buffer, memory, offset, nil)
		if err != nil {
			freeAll()
			return nil, 0, errors.Wrapf(err, "binding buffer %d", index)
		}
	}

	for index := range buffers {
		memory, offset := memoryFor(index)
		data, err := c.MapBytes(memory, offset, alignedSize)
		if err != nil {
			freeAll()
			return nil, 0, err
		}

		fill := byte(0)
		if options.Pattern {
			fill = byte(index)
		}
		for i := range data {
			data[i] = fill
		}

		err = c.UnmapMemory(memory)
		if err != nil {
			freeAll()
			return nil, 0, err
		}
	}

	stride := alignedSize
	if options.Dedicated {
		stride = 0
	}
	c.nameBuffers(buffers, stride, options.Name)

	return memories, alignedSize, nil
}

// FlushMemory flushes a mapped range of memory when its memory type is not host coherent.
// An informative flush is always issued, to tell tracing tools exactly which range changed. On
// coherent memory it carries FlushOperationInformative, since the device needs no flush there.
func (c *Context) FlushMemory(memory core1_0.DeviceMemory, offset, size int, informative bool) error {
	return c.cacheOperation(memory, offset, size, informative, vulkan.CacheOperationFlush)
}

// InvalidateMemory makes device writes visible through a mapping of non-coherent memory
func (c *Context) InvalidateMemory(memory core1_0.DeviceMemory, offset, size int) error {
	return c.cacheOperation(memory, offset, size, false, vulkan.CacheOperationInvalidate)
}

func (c *Context) cacheOperation(memory core1_0.DeviceMemory, offset, size int, informative bool, operation vulkan.CacheOperation) error {
	alloc, err := c.lookupAllocation(memory)
	if err != nil {
		return err
	}

	nonCoherent := c.memory.IsMemoryTypeHostNonCoherent(alloc.memory.MemoryTypeIndex())
	if !informative && !nonCoherent {
		return nil
	}

	alignedOffset, alignedSize := c.memory.AtomAlignedRange(offset, size, alloc.memory.Size())
	mappedRange := core1_0.MappedMemoryRange{
		Memory: memory,
		Offset: alignedOffset,
		Size:   alignedSize,
	}
	if informative && !nonCoherent && operation == vulkan.CacheOperationFlush {
		mappedRange.NextOptions = common.NextOptions{Next: tracehelpers.FlushRangesFlags{Flags: tracehelpers.FlushOperationInformative}}
	}

	return Check(c.memory.FlushOrInvalidateAllocations([]core1_0.MappedMemoryRange{mappedRange}, operation))
}

// BufferMemoryRequirements2 queries the memory requirements of buffer through
// vkGetBufferMemoryRequirements2, or its KHR alias on a 1.0 device
func (c *Context) BufferMemoryRequirements2(buffer core1_0.Buffer) (*core1_0.MemoryRequirements, error) {
	if c.extensionData.GetMemoryRequirements == nil {
		return nil, Skip("vkGetBufferMemoryRequirements2 is not available")
	}

	var out core1_1.MemoryRequirements2
	err := c.extensionData.GetMemoryRequirements.BufferMemoryRequirements2(core1_1.BufferMemoryRequirementsInfo2{
		Buffer: buffer,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out.MemoryRequirements, nil
}

// FillMemory sets size bytes of memory at offset to value through a mapping and returns their
// Adler-32 checksum. When flush is set the range is flushed before unmapping.
func (c *Context) FillMemory(memory core1_0.DeviceMemory, offset, size int, value byte, flush bool) (uint32, error) {
	data, err := c.MapBytes(memory, offset, size)
	if err != nil {
		return 0, err
	}

	for i := range data {
		data[i] = value
	}
	checksum := Adler32(data)

	if flush {
		err = c.FlushMemory(memory, offset, size, false)
	}
	return checksum, errors.CombineErrors(err, c.UnmapMemory(memory))
}

// ChecksumMemory maps size bytes of memory at offset and returns their Adler-32 checksum
func (c *Context) ChecksumMemory(memory core1_0.DeviceMemory, offset, size int) (uint32, error) {
	data, err := c.MapBytes(memory, offset, size)
	if err != nil {
		return 0, err
	}

	checksum := Adler32(data)
	return checksum, c.UnmapMemory(memory)
}
