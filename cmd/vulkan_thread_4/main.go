// vulkan_thread_4 creates buffers on one goroutine while another records commands using them
package main

import (
	"os"
	"sync/atomic"
	"time"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	maxBuffers = 100
	bufferSize = 100
)

const bufferUsage = core1_0.BufferUsageTransferSrc | core1_0.BufferUsageTransferDst |
	core1_0.BufferUsageIndexBuffer | core1_0.BufferUsageVertexBuffer

// bufferSet is filled by one producer goroutine. Buffers below next are safe to read.
type bufferSet struct {
	ctx         *toolstest.Context
	memory      core1_0.DeviceMemory
	alignedSize int
	sleep       time.Duration

	buffers [maxBuffers]core1_0.Buffer
	next    atomic.Int32
	failed  atomic.Bool
}

func (s *bufferSet) create(index int) (core1_0.Buffer, error) {
	buffer, err := s.ctx.CreateBuffer(bufferSize, bufferUsage)
	if err != nil {
		return nil, err
	}

	err = s.ctx.BindBuffer(buffer, s.memory, index*s.alignedSize, nil)
	if err != nil {
		buffer.Destroy(nil)
		return nil, err
	}
	return buffer, nil
}

// produce creates every buffer in order, optionally pausing between them
func (s *bufferSet) produce(pause bool) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		for i := 0; i < maxBuffers; i++ {
			buffer, err := s.create(i)
			if err != nil {
				s.failed.Store(true)
				done <- err
				return
			}
			s.buffers[i] = buffer
			s.next.Add(1)

			if pause && s.sleep > 0 {
				time.Sleep(s.sleep)
			}
		}
	}()
	return done
}

// await spins until more than index buffers exist and returns how many do, or -1 when the
// producer gave up
func (s *bufferSet) await(index int) int {
	for {
		available := int(s.next.Load())
		if available > index {
			return available
		}
		if s.failed.Load() {
			return -1
		}
		time.Sleep(s.sleep)
	}
}

func (s *bufferSet) reset() {
	for i := range s.buffers {
		if s.buffers[i] != nil {
			s.buffers[i].Destroy(nil)
			s.buffers[i] = nil
		}
	}
	s.next.Store(0)
	s.failed.Store(false)
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_thread_4", pflag.ContinueOnError)
	sleepTime := flags.IntP("sleep-time", "S", 10, "Thread synchronization sleep time in microseconds")

	reqs := &toolstest.Requirements{
		APIVersion:    common.Vulkan1_1,
		MinAPIVersion: common.Vulkan1_1,
		Flags:         flags,
		Validate: func() error {
			if *sleepTime < 0 {
				return errors.Newf("sleep time %d is negative", *sleepTime)
			}
			return nil
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_thread_4", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	sizing, err := ctx.CreateBuffer(bufferSize, bufferUsage)
	if err != nil {
		return err
	}
	requirements := sizing.MemoryRequirements()
	sizing.Destroy(nil)

	memoryTypeIndex, err := ctx.FindMemoryType(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return err
	}

	set := &bufferSet{
		ctx:         ctx,
		alignedSize: memutils.AlignedSize(requirements.Size, requirements.Alignment),
		sleep:       time.Duration(*sleepTime) * time.Microsecond,
	}

	set.memory, err = ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  set.alignedSize * maxBuffers,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return err
	}
	defer ctx.FreeMemory(set.memory)
	defer set.reset()

	pool, err := ctx.CreateCommandPool(core1_0.CommandPoolCreateTransient|core1_0.CommandPoolCreateResetBuffer, "Pool")
	if err != nil {
		return err
	}
	defer pool.Destroy(nil)

	commandBuffers, err := ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, 1)
	if err != nil {
		return err
	}
	defer ctx.Device.FreeCommandBuffers(commandBuffers)
	cmd := commandBuffers[0]

	phases := []func(cmd core1_0.CommandBuffer, set *bufferSet) error{
		serialized,
		threadedIndexBuffers,
		threadedFill,
		threadedVertexBuffers,
	}

	for _, phase := range phases {
		err = toolstest.Begin(cmd)
		if err != nil {
			return err
		}

		err = phase(cmd, set)
		if err != nil {
			return err
		}

		err = toolstest.End(cmd)
		if err != nil {
			return err
		}

		err = toolstest.Check(pool.Reset(0))
		if err != nil {
			return err
		}
		set.reset()
	}

	return nil
}

func serialized(cmd core1_0.CommandBuffer, set *bufferSet) error {
	for i := 0; i < maxBuffers; i++ {
		buffer, err := set.create(i)
		if err != nil {
			return err
		}
		cmd.CmdBindIndexBuffer(buffer, 0, core1_0.IndexTypeUInt32)
		set.buffers[i] = buffer
	}
	return nil
}

// threadedIndexBuffers uses each buffer as soon as the producer has made it
func threadedIndexBuffers(cmd core1_0.CommandBuffer, set *bufferSet) error {
	done := set.produce(true)
	for i := 0; i < maxBuffers; i++ {
		if set.await(i) < 0 {
			break
		}
		cmd.CmdBindIndexBuffer(set.buffers[i], 0, core1_0.IndexTypeUInt32)
	}
	return <-done
}

// threadedFill waits for the producer to finish before touching any buffer
func threadedFill(cmd core1_0.CommandBuffer, set *bufferSet) error {
	done := set.produce(true)
	if set.await(maxBuffers-1) < 0 {
		return <-done
	}
	for i := 0; i < maxBuffers; i++ {
		cmd.CmdFillBuffer(set.buffers[i], 0, bufferSize, 0xdeadbeef)
	}
	return <-done
}

// threadedVertexBuffers binds whatever batch of buffers is ready, at most as many as the
// device has vertex input bindings
func threadedVertexBuffers(cmd core1_0.CommandBuffer, set *bufferSet) error {
	maxBindings := set.ctx.DeviceProperties.Limits.MaxVertexInputBindings
	offsets := make([]int, maxBuffers)

	done := set.produce(false)
	for i := 0; i < maxBuffers; {
		available := set.await(i)
		if available < 0 {
			break
		}

		count := available - i
		if count > maxBindings {
			count = maxBindings
		}

		cmd.CmdBindVertexBuffers(0, set.buffers[i:i+count], offsets[:count])
		i += count
	}
	return <-done
}
