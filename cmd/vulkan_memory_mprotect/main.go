// vulkan_memory_mprotect changes the page protection of mapped device memory, the way
// tracers that track host writes through page faults do
package main

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/sys/unix"
)

type mapping struct {
	offset int
	size   int
}

var allocations = []struct {
	size     int
	mappings []mapping
}{
	{size: 1024, mappings: []mapping{{0, 1024}, {1024, 1024}, {1, 512}, {512, 10}}},
	{size: 4000, mappings: []mapping{{500, 64}}},
	{size: 50, mappings: []mapping{{0, 5}, {25, 5}}},
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion: common.Vulkan1_1,
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_memory_mprotect", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	for memoryTypeIndex := 0; memoryTypeIndex < ctx.MemoryTypeCount(); memoryTypeIndex++ {
		if ctx.MemoryType(memoryTypeIndex).PropertyFlags&core1_0.MemoryPropertyHostVisible == 0 {
			continue
		}

		err = testMemoryType(ctx, memoryTypeIndex)
		if err != nil {
			return errors.Wrapf(err, "memory type %d", memoryTypeIndex)
		}
	}

	return nil
}

func testMemoryType(ctx *toolstest.Context, memoryTypeIndex int) error {
	for _, allocation := range allocations {
		memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
			AllocationSize:  allocation.size,
			MemoryTypeIndex: memoryTypeIndex,
		})
		if err != nil {
			return err
		}

		for _, m := range allocation.mappings {
			fmt.Printf("test memtype=%d size=%d offset=%d mapsize=%d\n", memoryTypeIndex, allocation.size, m.offset, m.size)

			if memutils.CheckRange(m.offset, m.size, allocation.size) != nil {
				fmt.Println("\tmapping is outside the allocation, skipped")
				continue
			}

			err = protect(ctx, memory, m)
			if err != nil {
				ctx.FreeMemory(memory)
				return err
			}
		}

		ctx.FreeMemory(memory)
	}

	return nil
}

// protect maps a range and flips the pages holding it to read-only and back
func protect(ctx *toolstest.Context, memory core1_0.DeviceMemory, m mapping) error {
	data, err := ctx.MapMemory(memory, m.offset, m.size)
	if err != nil {
		return err
	}

	pageSize := unix.Getpagesize()
	inPage := int(uintptr(data) % uintptr(pageSize))
	pages := unsafe.Slice((*byte)(unsafe.Add(data, -inPage)), memutils.AlignUp(inPage+m.size, uint(pageSize)))

	err = unix.Mprotect(pages, unix.PROT_READ)
	if err == nil {
		err = unix.Mprotect(pages, unix.PROT_READ|unix.PROT_WRITE)
	}

	return errors.CombineErrors(errors.Wrap(err, "mprotect"), ctx.UnmapMemory(memory))
}
