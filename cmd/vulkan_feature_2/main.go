// vulkan_feature_2 behaves like an application that copies everything the driver offers into
// what it requests
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
)

func main() {
	toolstest.Main(run)
}

func run() error {
	reqs := &toolstest.Requirements{}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_feature_2_init", reqs)
	if err != nil {
		return err
	}

	reqs.InstanceExtensions = append(reqs.InstanceExtensions, ctx.InstanceExtensions...)
	reqs.DeviceExtensions = append(reqs.DeviceExtensions, ctx.AvailableDeviceExtensions...)

	features := *ctx.Features
	reqs.Features = &features
	if ctx.Features12 != nil {
		reqs.BufferDeviceAddress = ctx.Features12.BufferDeviceAddress
		reqs.TimelineSemaphore = ctx.Features12.TimelineSemaphore
	}

	err = ctx.Done()
	if err != nil {
		return err
	}

	fmt.Printf("Requesting %d instance and %d device extensions\n", len(reqs.InstanceExtensions), len(reqs.DeviceExtensions))

	ctx, err = toolstest.Init(os.Args[1:], "vulkan_feature_2_main", reqs)
	if err != nil {
		return err
	}
	return errors.Wrap(ctx.Done(), "second pass")
}
