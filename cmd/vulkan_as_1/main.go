// vulkan_as_1 creates an empty top level acceleration structure on a buffer and asks for its
// device address
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/core1_2"
)

const bufferSize = 1024 * 1024

func printFeatures(w io.Writer, title string, names []string, values []bool) {
	fmt.Fprintf(w, "%s:\n", title)
	for i, name := range names {
		fmt.Fprintf(w, "\t%s = %t\n", name, values[i])
	}
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:          common.Vulkan1_2,
		DeviceExtensions:    []string{vkext.AccelerationStructureExtensionName, vkext.DeferredHostOperationsExtensionName},
		BufferDeviceAddress: true,
		ExtensionFeatures: vkext.BoolFeatures{
			StructureType: vkext.StructureTypeAccelerationStructureFeatures,
			Values:        []bool{true, false, false, false, false},
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_as_1", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	physicalDevice := core1_1.PromoteInstanceScopedPhysicalDevice(ctx.PhysicalDevice)
	if physicalDevice == nil {
		return toolstest.Skip("vkGetPhysicalDeviceFeatures2 is not available")
	}

	features := vkext.BoolFeatures{
		StructureType: vkext.StructureTypeAccelerationStructureFeatures,
		Values:        make([]bool, len(vkext.AccelerationStructureFeatureNames)),
	}
	err = physicalDevice.Features2(&core1_1.PhysicalDeviceFeatures2{
		NextOutData: common.NextOutData{Next: &features},
	})
	if err != nil {
		return err
	}
	printFeatures(os.Stdout, "Acceleration structure features", vkext.AccelerationStructureFeatureNames, features.Values)

	structures, err := vkext.LoadAccelerationStructures(ctx.Device)
	if err != nil {
		return err
	}

	buffer, err := ctx.CreateBuffer(bufferSize, core1_0.BufferUsageTransferDst|vkext.BufferUsageAccelerationStructureStorage|core1_2.BufferUsageShaderDeviceAddress)
	if err != nil {
		return err
	}
	defer buffer.Destroy(nil)

	requirements := buffer.MemoryRequirements()
	memoryType, err := ctx.FindMemoryType(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return err
	}

	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryType,
		NextOptions: common.NextOptions{Next: core1_1.MemoryAllocateFlagsInfo{
			Flags: core1_2.MemoryAllocateDeviceAddress,
		}},
	})
	if err != nil {
		return err
	}
	defer ctx.FreeMemory(memory)

	err = ctx.BindBuffer(buffer, memory, 0, nil)
	if err != nil {
		return err
	}

	structure, res := structures.Create(vkext.AccelerationStructureCreateInfo{
		Buffer: buffer,
		Type:   vkext.AccelerationStructureTopLevel,
	})
	if err := toolstest.Check(res, nil); err != nil {
		return err
	}
	defer structures.Destroy(structure)

	// the address itself is not used
	structures.DeviceAddress(structure)

	return ctx.QueueBuffer(ctx.Queue(0), []core1_0.Buffer{buffer})
}
