// vulkan_aliasing_2 creates two buffers that only partially overlap, without a bigger buffer
// around them.
//
//	memory   0----512----1024----1536----2048
//	child_1  ++++++++++++++------------------
//	child_2  ------++++++++++++++++++++++++++
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/memutils/layout"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const usage = core1_0.BufferUsageTransferSrc | core1_0.BufferUsageTransferDst

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_aliasing_2", pflag.ContinueOnError)
	flushVariant := flags.IntP("flush-variant", "F", 0, "Set memory flush variant")

	reqs := &toolstest.Requirements{
		APIVersion: common.Vulkan1_1,
		Queues:     2,
		Flags:      flags,
		Usage:      "\t0 - use coherent memory, no explicit flushing\n\t1 - use any memory, explicit flushing",
		Validate: func() error {
			if *flushVariant < 0 || *flushVariant > 1 {
				return errors.Newf("flush variant %d is not 0 or 1", *flushVariant)
			}
			return nil
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_aliasing_2", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	queue := ctx.Queue(0)

	// Only used to size the memory
	fakeParent, err := ctx.CreateBuffer(2048, usage)
	if err != nil {
		return err
	}
	defer fakeParent.Destroy(nil)

	child1, err := ctx.CreateBuffer(1024, usage)
	if err != nil {
		return err
	}
	defer child1.Destroy(nil)

	child2, err := ctx.CreateBuffer(1536, usage)
	if err != nil {
		return err
	}
	defer child2.Destroy(nil)

	requirements := fakeParent.MemoryRequirements()
	properties := core1_0.MemoryPropertyHostVisible
	if *flushVariant == 0 {
		properties |= core1_0.MemoryPropertyHostCoherent
	}
	memoryTypeIndex, err := ctx.FindMemoryType(requirements.MemoryTypeBits, properties)
	if err != nil {
		return err
	}

	packer, err := layout.NewPacker(requirements.Size, 1)
	if err != nil {
		return err
	}
	err = packer.PlaceAt("child_1", layout.KindBuffer, 0, 1024)
	if err != nil {
		return err
	}
	err = packer.PlaceAt("child_2", layout.KindBuffer, 512, 1536)
	if err != nil {
		return err
	}
	first, _ := packer.Lookup("child_1")
	second, _ := packer.Lookup("child_2")

	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return err
	}
	defer ctx.FreeMemory(memory)

	err = ctx.BindBuffer(child1, memory, first.Offset, nil)
	if err != nil {
		return err
	}
	err = ctx.BindBuffer(child2, memory, second.Offset, nil)
	if err != nil {
		return err
	}

	flush := *flushVariant == 1
	originalChecksum1, err := ctx.FillMemory(memory, first.Offset, first.Size, 0xed, flush)
	if err != nil {
		return err
	}
	originalChecksum2, err := ctx.FillMemory(memory, second.Offset, second.Size, 0xcd, flush)
	if err != nil {
		return err
	}

	// Remap child_1 to see if the overlapping child_2 has modified it
	latestChecksum1, err := ctx.ChecksumMemory(memory, first.Offset, first.Size)
	if err != nil {
		return err
	}
	if latestChecksum1 == originalChecksum1 {
		return errors.New("writing child_2 did not change the overlapping part of child_1")
	}

	err = ctx.AssertBufferChecksum(child1, 0, toolstest.WholeSize, "child_1 buffer", latestChecksum1)
	if err != nil {
		return err
	}
	err = ctx.AssertBufferChecksum(child2, 0, toolstest.WholeSize, "child_2 buffer", originalChecksum2)
	if err != nil {
		return err
	}

	return ctx.QueueBuffer(queue, []core1_0.Buffer{child1, child2})
}
