// vulkan_maintenance7 lists the layered APIs VK_KHR_maintenance7 reports for the device
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_1"
)

func printLayeredAPIs(w io.Writer, layered []vkext.LayeredAPIProperties) {
	if len(layered) == 0 {
		fmt.Fprintln(w, "No layered APIs found!")
		return
	}
	for i, api := range layered {
		fmt.Fprintf(w, "API layer %d: vendor=%d device=%d name=%s\n", i, api.VendorID, api.DeviceID, api.DeviceName)
	}
}

// layeredAPIs queries the count first, then the entries
func layeredAPIs(physicalDevice core1_1.InstanceScopedPhysicalDevice) ([]vkext.LayeredAPIProperties, error) {
	var list vkext.LayeredAPIPropertiesList
	err := physicalDevice.Properties2(&core1_1.PhysicalDeviceProperties2{
		NextOutData: common.NextOutData{Next: &list},
	})
	if err != nil || list.Count == 0 {
		return nil, err
	}

	list.Properties = make([]vkext.LayeredAPIProperties, list.Count)
	err = physicalDevice.Properties2(&core1_1.PhysicalDeviceProperties2{
		NextOutData: common.NextOutData{Next: &list},
	})
	if err != nil {
		return nil, err
	}
	return list.Properties, nil
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:       common.Vulkan1_1,
		MinAPIVersion:    common.Vulkan1_1,
		DeviceExtensions: []string{vkext.Maintenance7ExtensionName},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_maintenance7", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	physicalDevice := core1_1.PromoteInstanceScopedPhysicalDevice(ctx.PhysicalDevice)
	if physicalDevice == nil {
		return toolstest.Skip("vkGetPhysicalDeviceProperties2 is not available")
	}

	ctx.Bench.StartIteration()

	layered, err := layeredAPIs(physicalDevice)
	if err != nil {
		return err
	}
	printLayeredAPIs(os.Stdout, layered)

	ctx.Bench.StopIteration()
	return nil
}
