// vulkan_memory_2_1 places buffers of many different usages side by side in shared memory pools
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
	"golang.org/x/exp/slog"
)

const bufferSize = 1024 * 1024

var raytracingExtensions = []string{
	"VK_KHR_shader_float_controls",
	"VK_KHR_spirv_1_4",
	"VK_KHR_buffer_device_address",
	"VK_EXT_descriptor_indexing",
	vkext.DeferredHostOperationsExtensionName,
	vkext.AccelerationStructureExtensionName,
	"VK_KHR_ray_tracing_pipeline",
}

type bufferSpec struct {
	name       string
	usage      core1_0.BufferUsageFlags
	properties core1_0.MemoryPropertyFlags
}

func bufferSpecs(raytracing, deviceAddress bool) []bufferSpec {
	var specs []bufferSpec
	if raytracing {
		specs = append(specs,
			bufferSpec{"Acceleration structure", vkext.BufferUsageAccelerationStructureStorage, core1_0.MemoryPropertyHostVisible},
			bufferSpec{"Shader Binding Table", vkext.BufferUsageShaderBindingTable, core1_0.MemoryPropertyHostVisible},
		)
	}
	if deviceAddress {
		specs = append(specs, bufferSpec{"Storage + Buffer Device Address", core1_0.BufferUsageStorageBuffer | core1_2.BufferUsageShaderDeviceAddress, core1_0.MemoryPropertyHostVisible})
	}
	return append(specs,
		bufferSpec{"Transfer source", core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible},
		bufferSpec{"Transfer destination", core1_0.BufferUsageTransferDst, core1_0.MemoryPropertyHostVisible},
		bufferSpec{"Uniform texel", core1_0.BufferUsageUniformTexelBuffer, core1_0.MemoryPropertyHostVisible},
		bufferSpec{"Storage texel", core1_0.BufferUsageStorageTexelBuffer, core1_0.MemoryPropertyHostVisible},
		bufferSpec{"Uniform", core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible},
		bufferSpec{"Storage", core1_0.BufferUsageStorageBuffer, core1_0.MemoryPropertyHostVisible},
		bufferSpec{"Index", core1_0.BufferUsageIndexBuffer, core1_0.MemoryPropertyHostVisible},
		bufferSpec{"Vertex", core1_0.BufferUsageVertexBuffer, core1_0.MemoryPropertyHostVisible},
		bufferSpec{"Indirect GPU", core1_0.BufferUsageIndirectBuffer, core1_0.MemoryPropertyDeviceLocal},
	)
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_memory_2_1", pflag.ContinueOnError)
	offset := flags.IntP("offset", "O", 0, "Add an offset to the buffer")
	raytracing := flags.BoolP("raytracing", "R", false, "Add raytracing to the test")
	deviceAddress := flags.BoolP("dev-address", "A", false, "Add device addresses to the test")

	reqs := &toolstest.Requirements{
		APIVersion: common.Vulkan1_1,
		Flags:      flags,
	}
	reqs.Validate = func() error {
		if *offset < 0 {
			return errors.Newf("offset %d is negative", *offset)
		}
		if *raytracing {
			reqs.DeviceExtensions = append(reqs.DeviceExtensions, raytracingExtensions...)
		}
		if *deviceAddress {
			reqs.DeviceExtensions = append(reqs.DeviceExtensions, "VK_EXT_buffer_device_address")
		}
		return nil
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_memory_2_1", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	specs := bufferSpecs(*raytracing, *deviceAddress)
	buffers := make([]core1_0.Buffer, 0, len(specs))
	defer func() {
		for _, buffer := range buffers {
			buffer.Destroy(nil)
		}
	}()

	requirements := make([]bufferRequirement, 0, len(specs))
	for _, spec := range specs {
		buffer, err := ctx.CreateBuffer(bufferSize, spec.usage)
		if err != nil {
			return errors.Wrapf(err, "creating %s buffer", spec.name)
		}
		buffers = append(buffers, buffer)

		memoryRequirements := buffer.MemoryRequirements()
		memoryType, err := ctx.FindMemoryType(memoryRequirements.MemoryTypeBits, spec.properties)
		if err != nil {
			return errors.Wrapf(err, "%s buffer", spec.name)
		}
		ctx.Logger.Info("Creating buffer",
			slog.String("name", spec.name),
			slog.Int("memoryType", memoryType),
			slog.Int("alignment", memoryRequirements.Alignment))

		requirements = append(requirements, bufferRequirement{
			memoryType: memoryType,
			size:       memoryRequirements.Size,
			alignment:  memoryRequirements.Alignment,
		})
	}

	offsets, plan := planPools(*offset, requirements)
	ctx.Logger.Info("Created memory pools", slog.Int("count", len(plan)))

	pools := map[int]core1_0.DeviceMemory{}
	defer func() {
		for _, memory := range pools {
			ctx.FreeMemory(memory)
		}
	}()

	total := 0
	for _, pool := range plan {
		memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
			AllocationSize:  pool.size,
			MemoryTypeIndex: pool.memoryType,
		})
		if err != nil {
			return err
		}
		pools[pool.memoryType] = memory
		total += pool.size
	}
	ctx.Logger.Info("Total memory consumption", slog.Int("bytes", total))

	for i, buffer := range buffers {
		err = ctx.BindBuffer(buffer, pools[requirements[i].memoryType], offsets[i], nil)
		if err != nil {
			return errors.Wrapf(err, "binding %s buffer", specs[i].name)
		}
	}

	return ctx.QueueBuffer(ctx.Queue(0), buffers)
}
