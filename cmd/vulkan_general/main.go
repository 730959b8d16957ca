package main

import (
	"math"
	"os"
	"time"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_general", pflag.ContinueOnError)
	fenceVariant := flags.IntP("fence-variant", "f", 0, "Set fence variant")

	reqs := &toolstest.Requirements{
		Flags: flags,
		Usage: "\t0 - normal run\n\t1 - expect induced fence delay",
		Validate: func() error {
			if *fenceVariant < 0 || *fenceVariant > 1 {
				return errors.Newf("fence variant %d is not 0 or 1", *fenceVariant)
			}
			return nil
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_general", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	err = checkProcLookups(ctx)
	if err != nil {
		return err
	}

	return checkFences(ctx, *fenceVariant)
}

type procLookup struct {
	name     string
	scope    string
	expected bool
}

var procLookups = []procLookup{
	{name: "vkNonsense", scope: "global", expected: false},
	{name: "vkNonsense", scope: "instance", expected: false},
	{name: "vkNonsense", scope: "device", expected: false},
	{name: "vkCreateInstance", scope: "global", expected: true},
	{name: "vkEnumerateInstanceLayerProperties", scope: "global", expected: true},
	{name: "vkEnumerateInstanceVersion", scope: "global", expected: true},
	{name: "vkEnumerateInstanceExtensionProperties", scope: "global", expected: true},
	// valid starting with Vulkan 1.2
	{name: "vkGetInstanceProcAddr", scope: "global", expected: true},
	{name: "vkGetInstanceProcAddr", scope: "instance", expected: true},
}

// checkProcLookups makes sure a tool in the call chain does not resolve names it should not know
func checkProcLookups(ctx *toolstest.Context) error {
	for _, lookup := range procLookups {
		has := ctx.HasGlobalProc
		switch lookup.scope {
		case "instance":
			has = ctx.HasInstanceProc
		case "device":
			has = ctx.HasDeviceProc
		}

		found, err := has(lookup.name)
		if err != nil {
			return err
		}
		if found != lookup.expected {
			return errors.Newf("%s lookup of %s returned found=%t", lookup.scope, lookup.name, found)
		}
	}

	return nil
}

func checkFences(ctx *toolstest.Context, fenceVariant int) error {
	fence1, res, err := ctx.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer fence1.Destroy(nil)

	fence2, res, err := ctx.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer fence2.Destroy(nil)

	// An empty submit is the easiest way to signal a fence
	queue := ctx.Queue(0)
	res, err = queue.Submit(fence1, nil)
	if err := toolstest.Check(res, err); err != nil {
		return err
	}

	signaled := core1_0.VKSuccess
	if fenceVariant == 1 {
		signaled = core1_0.VKTimeout
	}

	res, err = ctx.Device.WaitForFences(true, time.Duration(math.MaxUint32-1), []core1_0.Fence{fence1})
	if err := toolstest.CheckResult(signaled, res, err); err != nil {
		return errors.Wrap(err, "waiting on the submitted fence")
	}

	// One signaled fence and one that never will be
	fences := []core1_0.Fence{fence1, fence2}
	res, err = ctx.Device.WaitForFences(true, 10*time.Nanosecond, fences)
	if err := toolstest.CheckResult(core1_0.VKTimeout, res, err); err != nil {
		return errors.Wrap(err, "waiting on both fences")
	}

	status := core1_0.VKSuccess
	if fenceVariant == 1 {
		status = core1_0.VKNotReady
	}
	err = expectStatus(fence1, status, "submitted fence")
	if err != nil {
		return err
	}

	err = expectStatus(fence2, core1_0.VKNotReady, "unsubmitted fence")
	if err != nil {
		return err
	}

	res, err = ctx.Device.ResetFences(fences)
	if err := toolstest.Check(res, err); err != nil {
		return err
	}

	return expectStatus(fence1, core1_0.VKNotReady, "reset fence")
}

func expectStatus(fence core1_0.Fence, expected common.VkResult, what string) error {
	res, err := fence.Status()
	if err := toolstest.CheckResult(expected, res, err); err != nil {
		return errors.Wrapf(err, "status of %s", what)
	}
	return nil
}
