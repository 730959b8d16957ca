// vulkan_updatedescriptor_1 exercises descriptor set writes and copies, including copies of
// undefined descriptors
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
)

const bufferSize = 1024

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_updatedescriptor_1", pflag.ContinueOnError)
	bufferCount := flags.IntP("buffers", "b", 48, "Set number of buffers to use")

	reqs := &toolstest.Requirements{
		APIVersion: common.Vulkan1_1,
		Flags:      flags,
		Validate: func() error {
			if *bufferCount < 1 {
				return errors.Newf("need at least one buffer, got %d", *bufferCount)
			}
			return nil
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_updatedescriptor_1", reqs)
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

	buffers := make([]core1_0.Buffer, 0, *bufferCount)
	defer func() {
		for _, buffer := range buffers {
			buffer.Destroy(nil)
		}
	}()
	for i := 0; i < *bufferCount; i++ {
		buffer, err := ctx.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc|core1_0.BufferUsageUniformBuffer)
		if err != nil {
			return err
		}
		buffers = append(buffers, buffer)
	}

	requirements := buffers[0].MemoryRequirements()
	memoryTypeIndex, err := ctx.FindMemoryType(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return err
	}

	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size * *bufferCount,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return err
	}
	// Buffers are destroyed before the memory goes away
	defer ctx.FreeMemory(memory)
	defer func() {
		for _, buffer := range buffers {
			buffer.Destroy(nil)
		}
		buffers = nil
	}()

	err = ctx.BindBufferMemory(buffers, memory, requirements.Size, "")
	if err != nil {
		return err
	}

	bindings := make([]core1_0.DescriptorSetLayoutBinding, *bufferCount)
	for i := range bindings {
		bindings[i] = core1_0.DescriptorSetLayoutBinding{
			Binding:         i,
			DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
			DescriptorCount: 1,
			StageFlags:      core1_0.StageVertex,
		}
	}
	setLayout, _, err := ctx.Device.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: bindings,
	})
	if err != nil {
		return errors.Wrap(err, "creating descriptor set layout")
	}
	defer setLayout.Destroy(nil)

	descriptorPool, _, err := ctx.Device.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		Flags:   core1_0.DescriptorPoolCreateFreeDescriptorSet,
		MaxSets: *bufferCount * 2,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{Type: core1_0.DescriptorTypeUniformBuffer, DescriptorCount: *bufferCount * 2},
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating descriptor pool")
	}
	defer descriptorPool.Destroy(nil)

	_, err = descriptorPool.Reset(0)
	if err != nil {
		return errors.Wrap(err, "resetting descriptor pool")
	}

	live := swiss.NewMap[driver.VkDescriptorSet, struct{}](2)
	allocate := func() (core1_0.DescriptorSet, error) {
		sets, _, err := ctx.Device.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
			DescriptorPool: descriptorPool,
			SetLayouts:     []core1_0.DescriptorSetLayout{setLayout},
		})
		if err != nil {
			return nil, errors.Wrap(err, "allocating descriptor set")
		}
		if live.Has(sets[0].Handle()) {
			return nil, errors.Newf("descriptor set %p allocated twice", sets[0].Handle())
		}
		live.Put(sets[0].Handle(), struct{}{})
		return sets[0], nil
	}

	source, err := allocate()
	if err != nil {
		return err
	}
	target, err := allocate()
	if err != nil {
		return err
	}

	writes := make([]core1_0.WriteDescriptorSet, *bufferCount)
	copies := make([]core1_0.CopyDescriptorSet, *bufferCount)
	for i, buffer := range buffers {
		writes[i] = core1_0.WriteDescriptorSet{
			DstSet:         source,
			DstBinding:     i,
			DescriptorType: core1_0.DescriptorTypeUniformBuffer,
			BufferInfo: []core1_0.DescriptorBufferInfo{
				{Buffer: buffer, Offset: 0, Range: toolstest.WholeSize},
			},
		}
		copies[i] = core1_0.CopyDescriptorSet{
			SrcSet:          source,
			SrcBinding:      i,
			DstSet:          target,
			DstBinding:      i,
			DescriptorCount: 1,
		}
	}

	// Updating nothing is valid
	err = ctx.Device.UpdateDescriptorSets(nil, nil)
	if err != nil {
		return errors.Wrap(err, "empty descriptor update")
	}

	// The source descriptors are still undefined here, which makes the targets undefined too
	err = ctx.Device.UpdateDescriptorSets(nil, copies)
	if err != nil {
		return errors.Wrap(err, "copying undefined descriptors")
	}

	err = ctx.Device.UpdateDescriptorSets(writes, copies)
	if err != nil {
		return errors.Wrap(err, "writing and copying descriptors")
	}

	for _, set := range []core1_0.DescriptorSet{source, target} {
		_, err = ctx.Device.FreeDescriptorSets([]core1_0.DescriptorSet{set})
		if err != nil {
			return errors.Wrap(err, "freeing descriptor set")
		}
		live.Delete(set.Handle())
	}

	if live.Count() != 0 {
		return errors.Newf("%d descriptor sets were not freed", live.Count())
	}

	return nil
}
