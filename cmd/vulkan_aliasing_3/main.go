// vulkan_aliasing_3 binds two buffers to exactly the same memory
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const bufferSize = 1024

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_aliasing_3", pflag.ContinueOnError)
	flushVariant := flags.IntP("flush-variant", "F", 0, "Set memory flush variant")

	reqs := &toolstest.Requirements{
		APIVersion: common.Vulkan1_1,
		Flags:      flags,
		Usage:      "\t0 - use coherent memory, no explicit flushing\n\t1 - use any memory, explicit flushing",
		Validate: func() error {
			if *flushVariant < 0 || *flushVariant > 1 {
				return errors.Newf("flush variant %d is not 0 or 1", *flushVariant)
			}
			return nil
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_aliasing_3", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	queue := ctx.Queue(0)

	parent, err := ctx.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc)
	if err != nil {
		return err
	}
	defer parent.Destroy(nil)

	child, err := ctx.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc|core1_0.BufferUsageTransferDst)
	if err != nil {
		return err
	}
	defer child.Destroy(nil)

	requirements := parent.MemoryRequirements()
	properties := core1_0.MemoryPropertyHostVisible
	if *flushVariant == 0 {
		properties |= core1_0.MemoryPropertyHostCoherent
	}
	memoryTypeIndex, err := ctx.FindMemoryType(requirements.MemoryTypeBits, properties)
	if err != nil {
		return err
	}

	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return err
	}
	defer ctx.FreeMemory(memory)

	err = ctx.BindBufferMemory([]core1_0.Buffer{parent, child}, memory, 0, "")
	if err != nil {
		return err
	}

	checksum, err := ctx.FillMemory(memory, 0, bufferSize, 0xed, *flushVariant == 1)
	if err != nil {
		return err
	}

	// Submit both somewhere with proper memory barriers
	buffers := []core1_0.Buffer{parent, child}
	err = ctx.QueueBuffer(queue, buffers)
	if err != nil {
		return err
	}

	err = ctx.AssertBufferChecksum(parent, 0, toolstest.WholeSize, "parent buffer", checksum)
	if err != nil {
		return err
	}
	err = ctx.AssertBufferChecksum(child, 0, toolstest.WholeSize, "child buffer", checksum)
	if err != nil {
		return err
	}

	return ctx.QueueBuffer(queue, buffers)
}
