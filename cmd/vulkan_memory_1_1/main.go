// vulkan_memory_1_1 is vulkan_memory_1 written against the Vulkan 1.1 entry points
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/khr_get_memory_requirements2"
	khr_get_memory_requirements2_shim "github.com/vkngwrapper/extensions/v2/khr_get_memory_requirements2/shim"
)

const (
	bufferCount = 48
	bufferSize  = 1024 * 1024
)

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:       common.Vulkan1_1,
		DeviceExtensions: []string{khr_get_memory_requirements2.ExtensionName},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_memory_1_1", reqs)
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

	buffers := make([]core1_0.Buffer, 0, bufferCount)
	defer func() {
		for _, buffer := range buffers {
			buffer.Destroy(nil)
		}
	}()
	for i := 0; i < bufferCount; i++ {
		buffer, err := ctx.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc)
		if err != nil {
			return err
		}
		buffers = append(buffers, buffer)

		// Renaming must replace the first name
		handle := driver.VulkanHandle(buffer.Handle())
		ctx.SetName(core1_0.ObjectTypeBuffer, handle, "A buffer")
		ctx.SetName(core1_0.ObjectTypeBuffer, handle, "B for buffer")
	}

	requirements, err := ctx.BufferMemoryRequirements2(buffers[0])
	if err != nil {
		return err
	}

	properties := core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
	memoryTypeIndex, err := ctx.FindMemoryType(requirements.MemoryTypeBits, properties)
	if err != nil {
		return err
	}

	err = compareWithExtension(ctx, buffers[0], requirements, memoryTypeIndex, properties)
	if err != nil {
		return err
	}

	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size * bufferCount,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return err
	}
	defer ctx.FreeMemory(memory)

	err = ctx.BindBufferMemory(buffers, memory, requirements.Size, "")
	if err != nil {
		return err
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
		MaxSets: 50,
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

	err = toolstest.Check(descriptorPool.Reset(0))
	if err != nil {
		return err
	}

	if pool11 := core1_1.PromoteCommandPool(pool); pool11 != nil {
		pool11.TrimCommandPool(0)
	}

	return nil
}

// compareWithExtension checks that the KHR entry point agrees with the core query
func compareWithExtension(ctx *toolstest.Context, buffer core1_0.Buffer, core *core1_0.MemoryRequirements, memoryTypeIndex int, properties core1_0.MemoryPropertyFlags) error {
	extension := khr_get_memory_requirements2.CreateExtensionFromDevice(ctx.Device)
	if extension == nil {
		return errors.New("vkGetBufferMemoryRequirements2KHR is missing")
	}
	shim := khr_get_memory_requirements2_shim.NewShim(extension, ctx.Device)

	var out core1_1.MemoryRequirements2
	err := shim.BufferMemoryRequirements2(core1_1.BufferMemoryRequirementsInfo2{
		Buffer: buffer,
	}, &out)
	if err != nil {
		return err
	}

	if out.MemoryRequirements.MemoryTypeBits != core.MemoryTypeBits {
		return errors.Newf("KHR memory type bits 0x%x differ from core 0x%x", out.MemoryRequirements.MemoryTypeBits, core.MemoryTypeBits)
	}

	khrMemoryTypeIndex, err := ctx.FindMemoryType(out.MemoryRequirements.MemoryTypeBits, properties)
	if err != nil {
		return err
	}
	if khrMemoryTypeIndex != memoryTypeIndex {
		return errors.Newf("KHR requirements select memory type %d, core selects %d", khrMemoryTypeIndex, memoryTypeIndex)
	}
	return nil
}
