// vulkan_memory_1 binds many buffers into one memory object while destroying some of them
// along the way
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/memutils/layout"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
)

const bufferSize = 1024 * 1024

// destroyedAfter maps the index of a freshly bound buffer to the buffer destroyed right after it
var destroyedAfter = map[int]int{
	1:  0,
	5:  4,
	9:  9,
	10: 1,
}

var namedAfter = map[int]string{
	0:  "Very temporary buffer",
	10: "Buffer 10",
}

func main() {
	toolstest.Main(run)
}

func run() error {
	flags := pflag.NewFlagSet("vulkan_memory_1", pflag.ContinueOnError)
	bufferCount := flags.IntP("buffers", "b", 48, "Set number of buffers to use")
	loops := flags.IntP("loops", "l", 1, "Set number of loops to run")
	rename := flags.BoolP("rename", "N", false, "Change app name for each loop")

	reqs := &toolstest.Requirements{
		APIVersion: common.Vulkan1_0,
		Flags:      flags,
		Validate: func() error {
			if *bufferCount < 11 {
				return errors.Newf("buffer count %d is below 11", *bufferCount)
			}
			if *loops < 1 {
				return errors.Newf("loop count %d must be positive", *loops)
			}
			return nil
		},
	}

	// The flags are parsed by the first Init, so the loop count is only known after it
	for i := 0; i < *loops; i++ {
		name := "vulkan_memory_1"
		if *rename {
			name = fmt.Sprintf("vulkan_memory_1_i%d", i)
		}

		err := iteration(name, reqs, *bufferCount)
		if err != nil {
			return errors.Wrapf(err, "loop %d", i)
		}
	}

	return nil
}

func iteration(name string, reqs *toolstest.Requirements, bufferCount int) (err error) {
	ctx, err := toolstest.Init(os.Args[1:], name, reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	pool, err := ctx.CreateCommandPool(0, "Our command pool")
	if err != nil {
		return err
	}
	defer pool.Destroy(nil)

	commandBuffers, err := ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, 10)
	if err != nil {
		return err
	}
	defer ctx.Device.FreeCommandBuffers(commandBuffers)

	buffers := make([]core1_0.Buffer, bufferCount)
	destroyBuffers := func() {
		for i, buffer := range buffers {
			if buffer != nil {
				buffer.Destroy(nil)
				buffers[i] = nil
			}
		}
	}
	defer destroyBuffers()
	for i := range buffers {
		buffers[i], err = ctx.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc)
		if err != nil {
			return err
		}
	}

	requirements := buffers[0].MemoryRequirements()
	memoryTypeIndex, err := ctx.FindMemoryType(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return err
	}

	packer, err := packBuffers(ctx, bufferCount, requirements)
	if err != nil {
		return err
	}

	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  packer.RequiredSize(),
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return err
	}
	defer ctx.FreeMemory(memory)
	defer destroyBuffers()

	for i, placement := range packer.Placements() {
		err = ctx.BindBuffer(buffers[i], memory, placement.Offset, nil)
		if err != nil {
			return err
		}

		if label, ok := namedAfter[i]; ok {
			ctx.SetName(core1_0.ObjectTypeBuffer, driver.VulkanHandle(buffers[i].Handle()), label)
		}

		if victim, ok := destroyedAfter[i]; ok {
			buffers[victim].Destroy(nil)
			buffers[victim] = nil
		}
	}

	setLayout, res, err := ctx.Device.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 10,
				StageFlags:      core1_0.StageVertex,
			},
		},
	})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer setLayout.Destroy(nil)

	descriptorPool, res, err := ctx.Device.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		Flags:   core1_0.DescriptorPoolCreateFreeDescriptorSet,
		MaxSets: 500,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{
				Type:            core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
			},
		},
	})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer descriptorPool.Destroy(nil)

	return toolstest.Check(descriptorPool.Reset(0))
}

func packBuffers(ctx *toolstest.Context, count int, requirements *core1_0.MemoryRequirements) (*layout.Packer, error) {
	packer, err := layout.NewPacker(0, ctx.BufferImageGranularity())
	if err != nil {
		return nil, err
	}

	for i := 0; i < count; i++ {
		_, err = packer.Place(fmt.Sprintf("buffer_%d", i), layout.KindBuffer, requirements.Size, uint(requirements.Alignment))
		if err != nil {
			return nil, err
		}
	}
	return packer, nil
}
