// vulkan_fence_delay checks fence results against a capture tool that reports fences late. With
// no delay it is a plain fence test.
package main

import (
	"os"
	"time"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const usage = `-f/--fence-delay <N>            If set, assume that the capture tool is introducing a fence delay of N calls. (Default 0).
-u/--fence-delay-unit <unit>    Specify what unit is used for the fence delay. Accepted values are (calls, frames). (Default calls).
-t/--fence-delay-threshold <N>  Specify the timeout threshold in nanoseconds under which a vkWaitForFences call is delayed. (Default 0).`

const sleepDuration = time.Millisecond

type deviceFences struct {
	ctx     *toolstest.Context
	queue   core1_0.Queue
	fences  [2]core1_0.Fence
	frameID uint64
}

func (d *deviceFences) Status(fence int) (common.VkResult, error) {
	return d.fences[fence].Status()
}

func (d *deviceFences) Wait(fences []int, timeout time.Duration) (common.VkResult, error) {
	waited := make([]core1_0.Fence, 0, len(fences))
	for _, fence := range fences {
		waited = append(waited, d.fences[fence])
	}
	return d.ctx.Device.WaitForFences(true, timeout, waited)
}

func (d *deviceFences) Resubmit(fence int) error {
	err := toolstest.Check(d.ctx.Device.ResetFences(d.fences[fence : fence+1]))
	if err != nil {
		return err
	}

	err = toolstest.Check(d.queue.Submit(d.fences[fence], nil))
	if err != nil {
		return err
	}

	time.Sleep(sleepDuration)
	return nil
}

func (d *deviceFences) SubmitFrame() error {
	d.frameID++
	err := toolstest.Check(d.queue.Submit(nil, []core1_0.SubmitInfo{
		{
			NextOptions: common.NextOptions{Next: vkext.FrameBoundary{
				Flags:   vkext.FrameBoundaryFrameEnd,
				FrameID: d.frameID,
			}},
		},
	}))
	if err != nil {
		return err
	}

	time.Sleep(sleepDuration)
	return nil
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	var delay int
	var unitName string
	var threshold uint64
	flags := pflag.NewFlagSet("vulkan_fence_delay", pflag.ContinueOnError)
	flags.IntVarP(&delay, "fence-delay", "f", 0, "Fence delay introduced by the capture tool")
	flags.StringVarP(&unitName, "fence-delay-unit", "u", "calls", "Unit of the fence delay")
	flags.Uint64VarP(&threshold, "fence-delay-threshold", "t", 0, "Timeout in nanoseconds under which waits are delayed")

	reqs := &toolstest.Requirements{
		DeviceExtensions: []string{vkext.FrameBoundaryExtensionName},
		Flags:            flags,
		Usage:            usage,
	}
	reqs.Validate = func() error {
		if delay < 0 {
			return errors.Newf("fence delay %d is negative", delay)
		}
		if _, ok := delayUnits[unitName]; !ok {
			return errors.Newf("unknown fence delay unit %q", unitName)
		}
		return nil
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_fence_delay", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	ctx.Bench.StartIteration()

	fences := &deviceFences{ctx: ctx, queue: ctx.Queue(0)}
	for i := range fences.fences {
		fence, res, err := ctx.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
		if err := toolstest.Check(res, err); err != nil {
			return err
		}
		defer fence.Destroy(nil)
		fences.fences[i] = fence
	}

	s := &scenario{
		ops:       fences,
		delay:     delay,
		unit:      delayUnits[unitName],
		threshold: time.Duration(threshold),
	}
	err = s.run()
	if err != nil {
		return err
	}

	ctx.Bench.StopIteration()
	return nil
}
