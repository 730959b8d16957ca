// vulkan_aliasing_1 checks basic memory aliasing: a child and an alien buffer live inside the
// memory of a parent buffer, and copying the alien into the child must show up in the parent
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/memutils/layout"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

type resource struct {
	name    string
	size    int
	offset  int
	usage   core1_0.BufferUsageFlags
	fill    byte
	comment string
}

var resources = []resource{
	{name: "parent", size: 1024, offset: 0, usage: core1_0.BufferUsageTransferSrc, fill: 0xed, comment: "parent buffer"},
	{name: "child", size: 256, offset: 256, usage: core1_0.BufferUsageTransferSrc | core1_0.BufferUsageTransferDst, fill: 0xcd, comment: "child buffer"},
	{name: "alien", size: 256, offset: 512, usage: core1_0.BufferUsageTransferSrc, fill: 0xef, comment: "aliased buffer"},
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_aliasing_1", pflag.ContinueOnError)
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

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_aliasing_1", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	queue := ctx.Queue(0)

	packer, err := layout.NewPacker(resources[0].size, 1)
	if err != nil {
		return err
	}

	buffers := make([]core1_0.Buffer, 0, len(resources))
	defer func() {
		for _, buffer := range buffers {
			buffer.Destroy(nil)
		}
	}()
	for _, r := range resources {
		buffer, err := ctx.CreateBuffer(r.size, r.usage)
		if err != nil {
			return err
		}
		buffers = append(buffers, buffer)

		err = packer.PlaceAt(r.name, layout.KindBuffer, r.offset, r.size)
		if err != nil {
			return err
		}
	}
	parent, child, alien := buffers[0], buffers[1], buffers[2]

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

	for i, r := range resources {
		err = ctx.BindBuffer(buffers[i], memory, r.offset, nil)
		if err != nil {
			return err
		}
	}

	// Host model of the memory contents, used to derive the checksums the tool must report
	shadow := make([]byte, packer.RequiredSize())
	for _, r := range resources {
		_, err = ctx.FillMemory(memory, r.offset, r.size, r.fill, *flushVariant == 1)
		if err != nil {
			return err
		}
		fill(shadow[r.offset:r.offset+r.size], r.fill)
	}

	// Copy alien's contents into child. The parent sees the change through aliasing.
	err = ctx.CopyBuffer(queue, child, alien, resources[2].size)
	if err != nil {
		return err
	}
	copy(shadow[resources[1].offset:resources[1].offset+resources[1].size], shadow[resources[2].offset:resources[2].offset+resources[2].size])

	// Submit all of them somewhere with proper memory barriers
	err = ctx.QueueBuffer(queue, buffers)
	if err != nil {
		return err
	}

	for i, r := range resources {
		ctx.Logger.Debug("checking aliased buffer", slog.String("name", r.name), slog.Any("aliases", packer.Aliases(r.name)))
		expected := toolstest.Adler32(shadow[r.offset : r.offset+r.size])
		err = ctx.AssertBufferChecksum(buffers[i], 0, toolstest.WholeSize, r.comment, expected)
		if err != nil {
			return err
		}
	}

	return ctx.QueueBuffer(queue, []core1_0.Buffer{parent, child})
}

func fill(data []byte, value byte) {
	for i := range data {
		data[i] = value
	}
}
