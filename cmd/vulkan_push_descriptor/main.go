// vulkan_push_descriptor records a vkCmdPushDescriptorSetKHR for a uniform buffer
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const uniformSize = 256

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:       common.Vulkan1_1,
		DeviceExtensions: []string{vkext.PushDescriptorExtensionName},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_push_descriptor", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	push, err := vkext.LoadPushDescriptor(ctx.Device)
	if err != nil {
		return err
	}

	ctx.Bench.StartIteration()

	buffer, err := ctx.CreateBuffer(uniformSize, core1_0.BufferUsageUniformBuffer)
	if err != nil {
		return err
	}
	defer buffer.Destroy(nil)

	requirements := buffer.MemoryRequirements()
	memoryTypeIndex, err := ctx.FindMemoryType(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
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

	err = ctx.BindBuffer(buffer, memory, 0, nil)
	if err != nil {
		return err
	}

	setLayout, res, err := ctx.Device.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Flags: vkext.DescriptorSetLayoutCreatePushDescriptor,
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
				DescriptorCount: 1,
				StageFlags:      core1_0.StageCompute,
			},
		},
	})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer setLayout.Destroy(nil)

	pipelineLayout, res, err := ctx.Device.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{setLayout},
	})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer pipelineLayout.Destroy(nil)

	err = ctx.SubmitOnce(ctx.Queue(0), func(commandBuffer core1_0.CommandBuffer) error {
		push.CmdPushDescriptorSet(commandBuffer, core1_0.PipelineBindPointCompute, pipelineLayout, 0, []vkext.PushBufferWrite{
			{
				Binding:        0,
				DescriptorType: core1_0.DescriptorTypeUniformBuffer,
				Buffers: []core1_0.DescriptorBufferInfo{
					{Buffer: buffer, Offset: 0, Range: toolstest.WholeSize},
				},
			},
		})
		return nil
	})
	if err != nil {
		return err
	}

	ctx.Bench.StopIteration()
	return nil
}
