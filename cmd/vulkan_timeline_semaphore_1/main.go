// vulkan_timeline_semaphore_1 signals and waits on timeline semaphores from the host and from a
// queue submission
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/core1_2"
)

type timeline struct {
	ctx *toolstest.Context
}

func (t *timeline) create(initialValue uint64) (core1_0.Semaphore, error) {
	semaphore, res, err := t.ctx.Device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{
		NextOptions: common.NextOptions{Next: core1_2.SemaphoreTypeCreateInfo{
			SemaphoreType: core1_2.SemaphoreTypeTimeline,
			InitialValue:  initialValue,
		}},
	})
	if err := toolstest.Check(res, err); err != nil {
		return nil, errors.Wrap(err, "creating timeline semaphore")
	}
	return semaphore, nil
}

func (t *timeline) expectValue(semaphore core1_0.Semaphore, expected uint64) error {
	value, res, err := core1_2.PromoteSemaphore(semaphore).CounterValue()
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	if value != expected {
		return errors.Newf("semaphore counter is %d, expected %d", value, expected)
	}
	return nil
}

// wait waits on semaphores reaching values and checks the result
func (t *timeline) wait(expected common.VkResult, flags core1_2.SemaphoreWaitFlags, semaphores []core1_0.Semaphore, values []uint64, infinite bool) error {
	timeout := toolstest.NoTimeout
	if !infinite {
		timeout = 0
	}

	res, err := t.ctx.Device12.WaitSemaphores(timeout, core1_2.SemaphoreWaitInfo{
		Flags:      flags,
		Semaphores: semaphores,
		Values:     append([]uint64{}, values...),
	})
	return errors.Wrapf(toolstest.CheckResult(expected, res, err), "waiting for %v", values)
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:        common.Vulkan1_2,
		MinAPIVersion:     common.Vulkan1_2,
		TimelineSemaphore: true,
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_timeline_semaphore_1", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	if ctx.Device12 == nil {
		return toolstest.NeedsVulkan12("timeline semaphores need Vulkan 1.2")
	}

	ctx.Bench.StartIteration()
	err = exercise(ctx)
	if err != nil {
		return err
	}
	ctx.Bench.StopIteration()

	return nil
}

func exercise(ctx *toolstest.Context) error {
	var timelineProperties core1_2.PhysicalDeviceTimelineSemaphoreProperties
	properties := core1_1.PhysicalDeviceProperties2{
		NextOutData: common.NextOutData{Next: &timelineProperties},
	}
	physicalDevice := core1_1.PromoteInstanceScopedPhysicalDevice(ctx.PhysicalDevice)
	if physicalDevice != nil {
		err := physicalDevice.Properties2(&properties)
		if err != nil {
			return err
		}
		fmt.Printf("Maximum semaphore value difference on this platform is %d\n", timelineProperties.MaxTimelineSemaphoreValueDifference)
	}

	t := &timeline{ctx: ctx}

	semaphore, err := t.create(0)
	if err != nil {
		return err
	}
	defer semaphore.Destroy(nil)

	unusedZero, err := t.create(0)
	if err != nil {
		return err
	}
	defer unusedZero.Destroy(nil)

	unusedOne, err := t.create(1)
	if err != nil {
		return err
	}
	defer unusedOne.Destroy(nil)

	for semaphore, expected := range map[core1_0.Semaphore]uint64{semaphore: 0, unusedZero: 0, unusedOne: 1} {
		err = t.expectValue(semaphore, expected)
		if err != nil {
			return err
		}
	}

	res, err := ctx.Device12.SignalSemaphore(core1_2.SemaphoreSignalInfo{
		Semaphore: semaphore,
		Value:     2,
	})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	err = t.expectValue(semaphore, 2)
	if err != nil {
		return err
	}

	single := []core1_0.Semaphore{semaphore}
	err = t.wait(core1_0.VKSuccess, 0, single, []uint64{2}, true)
	if err != nil {
		return err
	}
	err = t.wait(core1_0.VKTimeout, 0, single, []uint64{4}, false)
	if err != nil {
		return err
	}

	semaphores := []core1_0.Semaphore{semaphore, unusedZero, unusedOne}
	err = t.wait(core1_0.VKSuccess, core1_2.SemaphoreWaitAny, semaphores, []uint64{4, 3, 1}, true)
	if err != nil {
		return err
	}
	err = t.wait(core1_0.VKTimeout, core1_2.SemaphoreWaitAny, semaphores, []uint64{4, 3, 2}, false)
	if err != nil {
		return err
	}

	waitValues := []uint64{2, 0, 1}
	err = t.wait(core1_0.VKSuccess, 0, semaphores, waitValues, true)
	if err != nil {
		return err
	}

	signalValues := []uint64{4, 3, 2}
	stages := []core1_0.PipelineStageFlags{core1_0.PipelineStageTopOfPipe, core1_0.PipelineStageTopOfPipe, core1_0.PipelineStageTopOfPipe}
	err = ctx.SubmitAndWait(ctx.Queue(0), []core1_0.SubmitInfo{
		{
			WaitSemaphores:   semaphores,
			WaitDstStageMask: stages,
			SignalSemaphores: semaphores,
			NextOptions: common.NextOptions{Next: core1_2.TimelineSemaphoreSubmitInfo{
				WaitSemaphoreValues:   waitValues,
				SignalSemaphoreValues: signalValues,
			}},
		},
	})
	if err != nil {
		return errors.Wrap(err, "submitting timeline semaphore operations")
	}

	for index, semaphore := range semaphores {
		err = t.expectValue(semaphore, signalValues[index])
		if err != nil {
			return err
		}
	}

	return nil
}
