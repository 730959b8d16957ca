// vulkan_copying_1 tries out combinations of GPU memory copying and synchronization with
// host-side memory mapping
package main

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/ARM-software/tracetooltests-sub000/memutils/layout"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const usage = `-f/--fence-variant:
	0 - use vkWaitForFences
	1 - use vkGetFenceStatus
-q/--queue-variant:
	0 - many commandbuffers, many queue submit calls, many flushes
	1 - many commandbuffers, one queue submit call with many submits, one flush
	2 - many commandbuffers, one queue submit, one flush
	3 - one commandbuffer, one queue submit, no flush
	4 - many commandbuffers, many queue submit calls, no flush
	5 - many commandbuffers, many queue submit calls, no flush, two queues
-m/--map-variant:
	0 - memory map kept open
	1 - memory map unmapped before submit
	2 - memory map remapped to tiny area before submit`

// The tiny mapping of map variant 2
const (
	tinyOffset = 10
	tinySize   = 20
)

type options struct {
	bufferSize   int
	bufferCount  int
	fenceVariant int
	queueVariant int
	mapVariant   int
}

type copier struct {
	ctx     *toolstest.Context
	options options

	queue1 core1_0.Queue
	queue2 core1_0.Queue

	originMemory core1_0.DeviceMemory
	alignedSize  int
	mapped       bool
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	var opts options
	flags := pflag.NewFlagSet("vulkan_copying_1", pflag.ContinueOnError)
	flags.IntVarP(&opts.bufferSize, "buffer-size", "b", 32*1024, "Set buffer size")
	flags.IntVarP(&opts.bufferCount, "buffer-count", "c", 10, "Set buffer count")
	flags.IntVarP(&opts.fenceVariant, "fence-variant", "f", 0, "Set fence variant")
	flags.IntVarP(&opts.queueVariant, "queue-variant", "q", 0, "Set queue variant")
	flags.IntVarP(&opts.mapVariant, "map-variant", "m", 0, "Set map variant")

	reqs := &toolstest.Requirements{
		Flags: flags,
		Usage: usage,
	}
	reqs.Validate = func() error {
		switch {
		case opts.bufferSize < tinyOffset+tinySize:
			return errors.Newf("buffer size %d is too small", opts.bufferSize)
		case opts.bufferCount < 1:
			return errors.Newf("buffer count %d must be positive", opts.bufferCount)
		case opts.fenceVariant < 0 || opts.fenceVariant > 1:
			return errors.Newf("fence variant %d is not 0 or 1", opts.fenceVariant)
		case opts.queueVariant < 0 || opts.queueVariant > 5:
			return errors.Newf("queue variant %d is not between 0 and 5", opts.queueVariant)
		case opts.mapVariant < 0 || opts.mapVariant > 2:
			return errors.Newf("map variant %d is not between 0 and 2", opts.mapVariant)
		}

		if opts.queueVariant == 5 {
			reqs.Queues = 2
		}
		return nil
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_copying_1", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	fmt.Printf("Running with queue variant %d, map variant %d, fence variant %d\n", opts.queueVariant, opts.mapVariant, opts.fenceVariant)

	c := &copier{
		ctx:     ctx,
		options: opts,
		queue1:  ctx.Queue(0),
		queue2:  ctx.Queue(0),
	}
	if opts.queueVariant == 5 {
		c.queue2 = ctx.Queue(1)
	}

	return c.run()
}

func (c *copier) createBuffers(usage core1_0.BufferUsageFlags) ([]core1_0.Buffer, error) {
	buffers := make([]core1_0.Buffer, 0, c.options.bufferCount)
	for i := 0; i < c.options.bufferCount; i++ {
		buffer, err := c.ctx.CreateBuffer(c.options.bufferSize, usage)
		if err != nil {
			destroyBuffers(buffers)
			return nil, err
		}
		buffers = append(buffers, buffer)
	}
	return buffers, nil
}

func destroyBuffers(buffers []core1_0.Buffer) {
	for _, buffer := range buffers {
		buffer.Destroy(nil)
	}
}

func (c *copier) run() error {
	origin, err := c.createBuffers(core1_0.BufferUsageTransferSrc)
	if err != nil {
		return err
	}
	defer destroyBuffers(origin)

	target, err := c.createBuffers(core1_0.BufferUsageTransferDst)
	if err != nil {
		return err
	}
	defer destroyBuffers(target)

	requirements := origin[0].MemoryRequirements()
	memoryTypeIndex, err := c.ctx.FindMemoryType(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return err
	}

	packer, err := layout.NewPacker(0, 1)
	if err != nil {
		return err
	}
	offsets := make([]int, c.options.bufferCount)
	for i := range offsets {
		offsets[i], err = packer.Place(fmt.Sprintf("buffer_%d", i), layout.KindBuffer, requirements.Size, uint(requirements.Alignment))
		if err != nil {
			return err
		}
	}
	c.alignedSize = memutils.AlignedSize(requirements.Size, requirements.Alignment)

	allocateInfo := core1_0.MemoryAllocateInfo{
		AllocationSize:  packer.RequiredSize(),
		MemoryTypeIndex: memoryTypeIndex,
	}

	c.originMemory, err = c.ctx.AllocateMemory(allocateInfo)
	if err != nil {
		return err
	}
	defer c.ctx.FreeMemory(c.originMemory)

	targetMemory, err := c.ctx.AllocateMemory(allocateInfo)
	if err != nil {
		return err
	}
	defer c.ctx.FreeMemory(targetMemory)

	for i, offset := range offsets {
		err = c.ctx.BindBuffer(origin[i], c.originMemory, offset, nil)
		if err != nil {
			return err
		}
		err = c.ctx.BindBuffer(target[i], targetMemory, offset, nil)
		if err != nil {
			return err
		}
	}

	err = c.fillOrigin(offsets)
	if err != nil {
		return err
	}
	defer c.unmap()

	pool, err := c.ctx.CreateCommandPool(core1_0.CommandPoolCreateResetBuffer, "")
	if err != nil {
		return err
	}
	defer pool.Destroy(nil)

	commandBuffers, err := c.ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, c.options.bufferCount+1)
	if err != nil {
		return err
	}
	defer c.ctx.Device.FreeCommandBuffers(commandBuffers)

	// One copy per command buffer, then all copies in the last one
	for i := 0; i < c.options.bufferCount; i++ {
		err = c.record(commandBuffers[i], origin[i:i+1], target[i:i+1])
		if err != nil {
			return err
		}
	}
	err = c.record(commandBuffers[c.options.bufferCount], origin, target)
	if err != nil {
		return err
	}

	err = c.submit(commandBuffers, offsets)
	if err != nil {
		return err
	}

	for i := range origin {
		originChecksum, err := c.ctx.AssertBuffer(origin[i], 0, toolstest.WholeSize, "origin buffer")
		if err != nil {
			return err
		}
		err = c.ctx.AssertBufferChecksum(target[i], 0, toolstest.WholeSize, "target buffer", originChecksum)
		if err != nil {
			return err
		}
	}

	return nil
}

// fillOrigin writes the byte i into every origin buffer i and leaves the mapping the way the
// map variant asks for
func (c *copier) fillOrigin(offsets []int) error {
	size := len(offsets) * c.alignedSize
	data, err := c.ctx.MapBytes(c.originMemory, 0, size)
	if err != nil {
		return err
	}
	c.mapped = true

	for i, offset := range offsets {
		for j := offset; j < offset+c.alignedSize && j < size; j++ {
			data[j] = byte(i)
		}
	}

	if c.options.mapVariant == 0 {
		return nil
	}

	err = c.unmap()
	if err != nil {
		return err
	}

	if c.options.mapVariant == 2 {
		_, err = c.ctx.MapMemory(c.originMemory, tinyOffset, tinySize)
		if err != nil {
			return err
		}
		c.mapped = true
	}
	return nil
}

func (c *copier) unmap() error {
	if !c.mapped {
		return nil
	}
	c.mapped = false
	return c.ctx.UnmapMemory(c.originMemory)
}

// flushAll flushes whatever part of the origin memory is mapped
func (c *copier) flushAll() error {
	switch c.options.mapVariant {
	case 0:
		return c.ctx.FlushMemory(c.originMemory, 0, toolstest.WholeSize, true)
	case 2:
		return c.ctx.FlushMemory(c.originMemory, tinyOffset, tinySize, true)
	}
	return nil
}

func (c *copier) record(commandBuffer core1_0.CommandBuffer, origin, target []core1_0.Buffer) error {
	err := toolstest.Begin(commandBuffer)
	if err != nil {
		return err
	}

	err = c.ctx.CmdCopyBuffer(commandBuffer, origin, target, c.options.bufferSize)
	if err != nil {
		return err
	}

	return toolstest.End(commandBuffer)
}

func (c *copier) submit(commandBuffers []core1_0.CommandBuffer, offsets []int) error {
	count := c.options.bufferCount

	switch c.options.queueVariant {
	case 0, 4, 5:
		fences := make([]core1_0.Fence, 0, count)
		defer func() {
			for _, fence := range fences {
				fence.Destroy(nil)
			}
		}()
		for i := 0; i < count; i++ {
			fence, res, err := c.ctx.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
			if err := toolstest.Check(res, err); err != nil {
				return err
			}
			fences = append(fences, fence)
		}

		for i := 0; i < count; i++ {
			if c.options.queueVariant == 0 && c.options.mapVariant == 0 {
				err := c.ctx.FlushMemory(c.originMemory, offsets[i], c.alignedSize, true)
				if err != nil {
					return err
				}
			}

			queue := c.queue1
			if i%2 == 1 {
				queue = c.queue2
			}
			res, err := queue.Submit(fences[i], []core1_0.SubmitInfo{
				{
					CommandBuffers: commandBuffers[i : i+1],
				},
			})
			if err := toolstest.Check(res, err); err != nil {
				return err
			}

			if c.options.queueVariant == 0 {
				err = c.wait(fences[i])
				if err != nil {
					return err
				}
			}
		}

		if c.options.queueVariant != 0 {
			err := toolstest.Check(c.ctx.Device.WaitForFences(true, toolstest.NoTimeout, fences))
			if err != nil {
				return err
			}
		}

		return toolstest.Check(c.ctx.Device.ResetFences(fences))

	case 1:
		submits := make([]core1_0.SubmitInfo, 0, count)
		for i := 0; i < count; i++ {
			submits = append(submits, core1_0.SubmitInfo{
				CommandBuffers: commandBuffers[i : i+1],
			})
		}
		return c.submitOnce(submits, true)

	case 2:
		// Serialize all the copies, but still one command buffer per copy
		return c.submitOnce([]core1_0.SubmitInfo{
			{
				CommandBuffers: commandBuffers[:count],
			},
		}, true)

	default:
		// All copy commands in one command buffer
		return c.submitOnce([]core1_0.SubmitInfo{
			{
				CommandBuffers: commandBuffers[count:],
			},
		}, false)
	}
}

func (c *copier) submitOnce(submits []core1_0.SubmitInfo, flush bool) error {
	if flush {
		err := c.flushAll()
		if err != nil {
			return err
		}
	}

	fence, res, err := c.ctx.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer fence.Destroy(nil)

	res, err = c.queue1.Submit(fence, submits)
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	return c.wait(fence)
}

func (c *copier) wait(fence core1_0.Fence) error {
	if c.options.fenceVariant == 0 {
		return toolstest.Check(c.ctx.Device.WaitForFences(true, time.Duration(math.MaxUint32), []core1_0.Fence{fence}))
	}

	for {
		res, err := fence.Status()
		if res == core1_0.VKSuccess {
			return nil
		}
		if res != core1_0.VKNotReady {
			return toolstest.Check(res, err)
		}
		time.Sleep(10 * time.Microsecond)
	}
}
