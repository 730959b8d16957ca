// vulkan_mesh_1 prints the VK_EXT_mesh_shader features and limits of the device
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_1"
)

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:    common.Vulkan1_1,
		MinAPIVersion: common.Vulkan1_1,
		// VK_EXT_mesh_shader depends on VK_KHR_spirv_1_4
		DeviceExtensions: []string{"VK_KHR_spirv_1_4", meshShaderExtensionName},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_mesh_1", reqs)
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
		StructureType: structureTypeMeshFeatures,
		Values:        make([]bool, len(meshFeatureNames)),
	}
	err = physicalDevice.Features2(&core1_1.PhysicalDeviceFeatures2{
		NextOutData: common.NextOutData{Next: &features},
	})
	if err != nil {
		return err
	}
	printMeshFeatures(os.Stdout, features.Values)

	var properties MeshShaderProperties
	err = physicalDevice.Properties2(&core1_1.PhysicalDeviceProperties2{
		NextOutData: common.NextOutData{Next: &properties},
	})
	if err != nil {
		return err
	}
	printMeshLimits(os.Stdout, properties.Limits)
	return nil
}
