// vulkan_thread_3 records command buffers across goroutines. Tracers must allow parallel
// recording but still serialize the calls that need it.
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/core1_0"
)

type recorder struct {
	ctx   *toolstest.Context
	pool1 core1_0.CommandPool
	pool2 core1_0.CommandPool

	cmd1      core1_0.CommandBuffer
	cmd2      core1_0.CommandBuffer
	secondary core1_0.CommandBuffer
}

func dummy(commandBuffer core1_0.CommandBuffer) {
	commandBuffer.CmdPipelineBarrier(core1_0.PipelineStageTransfer, core1_0.PipelineStageTransfer, 0,
		[]core1_0.MemoryBarrier{
			{
				SrcAccessMask: core1_0.AccessTransferWrite,
				DstAccessMask: core1_0.AccessTransferRead,
			},
		}, nil, nil)
}

func dummies(commandBuffer core1_0.CommandBuffer, count int) {
	for i := 0; i < count; i++ {
		dummy(commandBuffer)
	}
}

// inGoroutine runs fn on its own goroutine and waits for it
func inGoroutine(fn func() error) error {
	result := make(chan error, 1)
	go func() {
		result <- fn()
	}()
	return <-result
}

func resetPools(pools ...core1_0.CommandPool) error {
	for _, pool := range pools {
		err := toolstest.Check(pool.Reset(0))
		if err != nil {
			return err
		}
	}
	return nil
}

// Dummy (single thread)
func (r *recorder) case1() error {
	err := toolstest.Begin(r.cmd1)
	if err != nil {
		return err
	}
	dummies(r.cmd1, 3)
	err = toolstest.End(r.cmd1)
	if err != nil {
		return err
	}
	return resetPools(r.pool1)
}

// Start here, finish in thread
func (r *recorder) case2() error {
	err := toolstest.Begin(r.cmd1)
	if err != nil {
		return err
	}
	dummy(r.cmd1)

	err = inGoroutine(func() error {
		dummies(r.cmd1, 2)
		return toolstest.End(r.cmd1)
	})
	if err != nil {
		return err
	}
	return resetPools(r.pool1)
}

// Start in thread, finish here
func (r *recorder) case3() error {
	err := inGoroutine(func() error {
		err := toolstest.Begin(r.cmd1)
		if err != nil {
			return err
		}
		dummies(r.cmd1, 3)
		return nil
	})
	if err != nil {
		return err
	}

	dummy(r.cmd1)
	err = toolstest.End(r.cmd1)
	if err != nil {
		return err
	}
	return resetPools(r.pool1)
}

// Start here, work a bit here, work rest in thread, work a bit here, then finish here
func (r *recorder) case4() error {
	err := toolstest.Begin(r.cmd1)
	if err != nil {
		return err
	}
	dummy(r.cmd1)

	err = inGoroutine(func() error {
		dummies(r.cmd1, 5)
		return nil
	})
	if err != nil {
		return err
	}

	dummy(r.cmd1)
	err = toolstest.End(r.cmd1)
	if err != nil {
		return err
	}
	return resetPools(r.pool1)
}

// Two racing threads
func (r *recorder) case5() error {
	err := toolstest.Begin(r.cmd1)
	if err != nil {
		return err
	}
	err = toolstest.Begin(r.cmd2)
	if err != nil {
		return err
	}
	dummy(r.cmd1)
	dummy(r.cmd2)

	done := make(chan struct{})
	go func() {
		defer close(done)
		dummies(r.cmd2, 500)
	}()
	dummies(r.cmd1, 500)
	<-done

	dummy(r.cmd1)
	dummy(r.cmd2)
	err = toolstest.End(r.cmd1)
	if err != nil {
		return err
	}
	err = toolstest.End(r.cmd2)
	if err != nil {
		return err
	}
	return resetPools(r.pool1, r.pool2)
}

// vkCmdExecuteCommands waiting for other thread
func (r *recorder) case6() error {
	err := toolstest.Begin(r.cmd1)
	if err != nil {
		return err
	}

	res, err := r.secondary.Begin(core1_0.CommandBufferBeginInfo{
		Flags:           core1_0.CommandBufferUsageOneTimeSubmit | core1_0.CommandBufferUsageSimultaneousUse,
		InheritanceInfo: &core1_0.CommandBufferInheritanceInfo{},
	})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	dummies(r.cmd1, 2)

	ready := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ready
		r.cmd1.CmdExecuteCommands([]core1_0.CommandBuffer{r.secondary})
		dummies(r.cmd1, 50)
	}()

	dummies(r.secondary, 2)
	err = toolstest.End(r.secondary)
	if err != nil {
		return err
	}
	close(ready)
	<-done

	dummies(r.cmd1, 51)
	err = toolstest.End(r.cmd1)
	if err != nil {
		return err
	}
	return resetPools(r.pool1, r.pool2)
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_thread_3", pflag.ContinueOnError)
	chosen := flags.IntP("case", "c", 0, "Choose test case (1-6, zero means all)")
	loops := flags.IntP("loops", "l", 1, "Number of loops to run")
	quiet := flags.BoolP("quiet", "q", false, "Do less logging")

	reqs := &toolstest.Requirements{
		Flags: flags,
		Validate: func() error {
			if *chosen < 0 || *chosen > 6 {
				return errors.Newf("case %d is not between 1 and 6", *chosen)
			}
			if *loops < 1 {
				return errors.Newf("loop count %d must be positive", *loops)
			}
			return nil
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_thread_3", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	r := &recorder{ctx: ctx}
	r.pool1, err = ctx.CreateCommandPool(core1_0.CommandPoolCreateTransient, "Pool 1")
	if err != nil {
		return err
	}
	defer r.pool1.Destroy(nil)

	r.pool2, err = ctx.CreateCommandPool(core1_0.CommandPoolCreateTransient, "Pool 2")
	if err != nil {
		return err
	}
	defer r.pool2.Destroy(nil)

	primary1, err := ctx.AllocateCommandBuffers(r.pool1, core1_0.CommandBufferLevelPrimary, 1)
	if err != nil {
		return err
	}
	defer ctx.Device.FreeCommandBuffers(primary1)
	r.cmd1 = primary1[0]

	primary2, err := ctx.AllocateCommandBuffers(r.pool2, core1_0.CommandBufferLevelPrimary, 1)
	if err != nil {
		return err
	}
	defer ctx.Device.FreeCommandBuffers(primary2)
	r.cmd2 = primary2[0]

	secondary, err := ctx.AllocateCommandBuffers(r.pool2, core1_0.CommandBufferLevelSecondary, 1)
	if err != nil {
		return err
	}
	defer ctx.Device.FreeCommandBuffers(secondary)
	r.secondary = secondary[0]

	cases := []struct {
		title string
		run   func() error
	}{
		{"Dummy (single thread)", r.case1},
		{"Start here, finish in thread", r.case2},
		{"Start in thread, finish here", r.case3},
		{"Start here, work a bit here, work rest in thread, work a bit here, then finish here", r.case4},
		{"Two racing threads", r.case5},
		{"vkCmdExecuteCommands waiting for other thread", r.case6},
	}

	for index, testCase := range cases {
		number := index + 1
		if *chosen != 0 && *chosen != number {
			continue
		}

		for i := 0; i < *loops; i++ {
			if !*quiet {
				fmt.Printf("Case %d: %s\n", number, testCase.title)
			}

			err = testCase.run()
			if err != nil {
				return errors.Wrapf(err, "case %d", number)
			}
		}
	}

	return nil
}
