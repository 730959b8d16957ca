// vulkan_stress_1 hammers a single cheap entry point and reports the process CPU time it took
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"golang.org/x/sys/unix"
)

type stressCase struct {
	name string
	run  func(ctx *toolstest.Context, loops int) error
}

var stressCases = []stressCase{
	{name: "vkEnumeratePhysicalDeviceGroups", run: enumerateGroups},
	{name: "vkGetFenceStatus", run: fenceStatus},
}

func enumerateGroups(ctx *toolstest.Context, loops int) error {
	instance := core1_1.PromoteInstance(ctx.Instance)
	if instance == nil {
		return toolstest.Skip("instance does not support Vulkan 1.1")
	}

	for i := 0; i < loops; i++ {
		_, res, err := instance.EnumeratePhysicalDeviceGroups(nil)
		if err := toolstest.Check(res, err); err != nil {
			return err
		}
	}
	return nil
}

func fenceStatus(ctx *toolstest.Context, loops int) error {
	fence, res, err := ctx.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer fence.Destroy(nil)

	for i := 0; i < loops; i++ {
		// The fence is never submitted, so this is always NOT_READY
		_, _ = fence.Status()
	}
	return nil
}

func cpuTime() (uint64, error) {
	var ts unix.Timespec
	err := unix.ClockGettime(unix.CLOCK_PROCESS_CPUTIME_ID, &ts)
	if err != nil {
		return 0, errors.Wrap(err, "reading process cpu time")
	}
	return uint64(ts.Sec)*1000000000 + uint64(ts.Nsec), nil
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_stress_1", pflag.ContinueOnError)
	variant := flags.IntP("case", "c", 1, "Choose test case")
	loops := flags.IntP("loops", "l", 250000, "Number of loops to run")

	reqs := &toolstest.Requirements{
		Flags: flags,
		Usage: "\t1 - vkEnumeratePhysicalDeviceGroups\n\t2 - vkGetFenceStatus\n",
		Validate: func() error {
			if *variant < 1 || *variant > len(stressCases) {
				return errors.Newf("no test case %d", *variant)
			}
			if *loops < 0 {
				return errors.Newf("loop count %d is negative", *loops)
			}
			return nil
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_stress_1", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	stress := stressCases[*variant-1]
	ctx.Bench.SetScene(fmt.Sprintf("case %d : %s", *variant, stress.name))

	// Warmup
	err = stress.run(ctx, *loops)
	if err != nil {
		return err
	}

	before, err := cpuTime()
	if err != nil {
		return err
	}

	ctx.Bench.StartIteration()
	err = stress.run(ctx, *loops)
	if err != nil {
		return err
	}
	ctx.Bench.StopIteration()

	after, err := cpuTime()
	if err != nil {
		return err
	}

	fmt.Printf("Test case %d - %s, %d iterations: %d\n", *variant, stress.name, *loops, after-before)
	return nil
}
