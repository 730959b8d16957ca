package main

import (
	"fmt"
	"os"
	"unsafe"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_1"
)

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{}

	first, err := toolstest.Init(os.Args[1:], "vulkan_multidevice", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, first.Done())
	}()

	reqs.Instance = first.Instance
	second, err := toolstest.Init(os.Args[1:], "vulkan_multidevice", reqs)
	if err != nil {
		return err
	}
	// Shares the first instance, so it has to finish first
	defer func() {
		err = errors.CombineErrors(err, second.Done())
	}()

	if first.APIVersion < common.Vulkan1_1 {
		return nil
	}

	instance11 := core1_1.PromoteInstance(first.Instance)
	if instance11 == nil {
		return toolstest.Skip("instance does not support Vulkan 1.1")
	}

	groups, res, err := instance11.EnumeratePhysicalDeviceGroups(nil)
	if err := toolstest.Check(res, err); err != nil {
		return err
	}

	fmt.Printf("Found %d physical device groups:\n", len(groups))
	for _, group := range groups {
		fmt.Printf("\t%d devices (subsetAllocation=%t):", len(group.PhysicalDevices), group.SubsetAllocation)
		for _, physicalDevice := range group.PhysicalDevices {
			fmt.Printf(" 0x%x,", uintptr(unsafe.Pointer(physicalDevice.Handle())))
		}
		fmt.Println()
	}

	return nil
}
