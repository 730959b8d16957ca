// vulkan_copying_2 chains buffer copies across one or two queues with semaphores and marks the
// end of each frame with a frame boundary when the driver offers it
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const usage = `-q/--queue-variant:
	0 - use two queues, alternating between them
	1 - use one queue
-f/--fence-variant:
	0 - use vkWaitForFences
-F/--flush-variant:
	0 - use coherent memory and flush only where host updates happen
	1 - use non-coherent memory and always flush
-m/--map-variant:
	0 - memory map kept open
	1 - memory map unmapped before submit
	2 - memory map remapped to tiny area before submit`

const (
	tinyOffset = 10
	tinySize   = 20
)

type options struct {
	bufferSize   int
	bufferCount  int
	times        int
	queueVariant int
	fenceVariant int
	flushVariant int
	mapVariant   int
}

type chain struct {
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
	flags := pflag.NewFlagSet("vulkan_copying_2", pflag.ContinueOnError)
	flags.IntVarP(&opts.bufferSize, "buffer-size", "b", 32*1024, "Set buffer size")
	flags.IntVarP(&opts.bufferCount, "buffer-count", "c", 10, "Set buffer count")
	flags.IntVarP(&opts.times, "times", "t", 1, "Times to repeat")
	flags.IntVarP(&opts.queueVariant, "queue-variant", "q", 0, "Set queue variant")
	flags.IntVarP(&opts.fenceVariant, "fence-variant", "f", 0, "Set fence variant")
	flags.IntVarP(&opts.flushVariant, "flush-variant", "F", 0, "Set flush variant")
	flags.IntVarP(&opts.mapVariant, "map-variant", "m", 0, "Set map variant")

	reqs := &toolstest.Requirements{
		Queues:                   2,
		OptionalDeviceExtensions: []string{vkext.FrameBoundaryExtensionName},
		Flags:                    flags,
		Usage:                    usage,
	}
	reqs.Validate = func() error {
		switch {
		case opts.bufferSize < tinyOffset+tinySize:
			return errors.Newf("buffer size %d is too small", opts.bufferSize)
		case opts.bufferCount < 1:
			return errors.Newf("buffer count %d must be positive", opts.bufferCount)
		case opts.times < 1:
			return errors.Newf("times %d must be positive", opts.times)
		case opts.queueVariant < 0 || opts.queueVariant > 1:
			return errors.Newf("queue variant %d is not 0 or 1", opts.queueVariant)
		case opts.fenceVariant != 0:
			return errors.Newf("fence variant %d is not 0", opts.fenceVariant)
		case opts.flushVariant < 0 || opts.flushVariant > 1:
			return errors.Newf("flush variant %d is not 0 or 1", opts.flushVariant)
		case opts.mapVariant < 0 || opts.mapVariant > 2:
			return errors.Newf("map variant %d is not between 0 and 2", opts.mapVariant)
		}

		if opts.queueVariant == 1 {
			reqs.Queues = 1
		}
		return nil
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_copying_2", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	if !flags.Changed("times") {
		opts.times = ctx.Repeats()
	}

	fmt.Printf("Running with queue variant %d, map variant %d, flush variant %d\n", opts.queueVariant, opts.mapVariant, opts.flushVariant)

	c := &chain{
		ctx:     ctx,
		options: opts,
		queue1:  ctx.Queue(0),
		queue2:  ctx.Queue(0),
	}
	if opts.queueVariant == 0 {
		c.queue2 = ctx.Queue(1)
	}

	return c.run()
}

// queueFor alternates between the queues on odd submits
func (c *chain) queueFor(i int) core1_0.Queue {
	if c.options.queueVariant == 0 && i%2 == 1 {
		return c.queue2
	}
	return c.queue1
}

// hostUpdates is whether the host writes memory between submits
func (c *chain) hostUpdates() bool {
	return c.options.mapVariant == 0
}

func (c *chain) createBuffers(usage core1_0.BufferUsageFlags) ([]core1_0.Buffer, error) {
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

func (c *chain) memoryProperties() core1_0.MemoryPropertyFlags {
	if c.options.flushVariant == 0 {
		return core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent
	}
	return core1_0.MemoryPropertyHostVisible
}

func (c *chain) run() error {
	count := c.options.bufferCount

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
	memoryTypeIndex, err := c.ctx.FindMemoryType(requirements.MemoryTypeBits, c.memoryProperties())
	if err != nil {
		return err
	}
	c.alignedSize = memutils.AlignedSize(requirements.Size, requirements.Alignment)

	allocateInfo := core1_0.MemoryAllocateInfo{
		AllocationSize:  c.alignedSize * count,
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

	err = c.ctx.BindBufferMemory(origin, c.originMemory, c.alignedSize, "origin")
	if err != nil {
		return err
	}
	err = c.ctx.BindBufferMemory(target, targetMemory, c.alignedSize, "target")
	if err != nil {
		return err
	}

	err = c.fillOrigin()
	if err != nil {
		return err
	}
	defer c.unmap()

	pool, err := c.ctx.CreateCommandPool(core1_0.CommandPoolCreateResetBuffer, "")
	if err != nil {
		return err
	}
	defer pool.Destroy(nil)

	commandBuffers, err := c.ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, count)
	if err != nil {
		return err
	}
	defer c.ctx.Device.FreeCommandBuffers(commandBuffers)

	for i := range commandBuffers {
		err = c.record(commandBuffers[i], origin[i], target[i])
		if err != nil {
			return err
		}
	}

	semaphores := make([]core1_0.Semaphore, 0, count)
	fences := make([]core1_0.Fence, 0, count)
	defer func() {
		for _, semaphore := range semaphores {
			semaphore.Destroy(nil)
		}
		for _, fence := range fences {
			fence.Destroy(nil)
		}
	}()
	for i := 0; i < count; i++ {
		semaphore, res, err := c.ctx.Device.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err := toolstest.Check(res, err); err != nil {
			return err
		}
		semaphores = append(semaphores, semaphore)

		fence, res, err := c.ctx.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
		if err := toolstest.Check(res, err); err != nil {
			return err
		}
		fences = append(fences, fence)
	}

	for frame := 0; frame < c.options.times; frame++ {
		c.ctx.Bench.StartIteration()
		err = c.submitFrame(uint64(frame), commandBuffers, semaphores, fences)
		if err != nil {
			return err
		}
		c.ctx.Bench.StopIteration()
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

// submitInfos builds one submit per command buffer, each waiting on the semaphore of the submit
// before it. The last one carries the frame boundary.
func (c *chain) submitInfos(frame uint64, commandBuffers []core1_0.CommandBuffer, semaphores []core1_0.Semaphore, frameBoundary bool) []core1_0.SubmitInfo {
	last := len(commandBuffers) - 1
	submits := make([]core1_0.SubmitInfo, len(commandBuffers))
	for i := range commandBuffers {
		submits[i].CommandBuffers = commandBuffers[i : i+1]
		if i > 0 {
			submits[i].WaitSemaphores = semaphores[i-1 : i]
			submits[i].WaitDstStageMask = []core1_0.PipelineStageFlags{core1_0.PipelineStageTransfer}
		}
		if i != last {
			submits[i].SignalSemaphores = semaphores[i : i+1]
		} else if frameBoundary {
			submits[i].NextOptions = common.NextOptions{Next: vkext.FrameBoundary{
				Flags:   vkext.FrameBoundaryFrameEnd,
				FrameID: frame,
			}}
		}
	}
	return submits
}

func (c *chain) submitFrame(frame uint64, commandBuffers []core1_0.CommandBuffer, semaphores []core1_0.Semaphore, fences []core1_0.Fence) error {
	submits := c.submitInfos(frame, commandBuffers, semaphores, c.ctx.HasDeviceExtension(vkext.FrameBoundaryExtensionName))
	for i, submit := range submits {
		if c.hostUpdates() {
			err := c.ctx.FlushMemory(c.originMemory, i*c.alignedSize, c.alignedSize, c.options.flushVariant != 1)
			if err != nil {
				return err
			}
		}

		res, err := c.queueFor(i).Submit(fences[i], []core1_0.SubmitInfo{submit})
		if err := toolstest.Check(res, err); err != nil {
			return err
		}
	}

	err := toolstest.Check(c.ctx.Device.WaitForFences(true, toolstest.NoTimeout, fences))
	if err != nil {
		return err
	}
	return toolstest.Check(c.ctx.Device.ResetFences(fences))
}

// fillOrigin writes the byte i into every origin buffer i
func (c *chain) fillOrigin() error {
	size := c.options.bufferCount * c.alignedSize
	data, err := c.ctx.MapBytes(c.originMemory, 0, size)
	if err != nil {
		return err
	}
	c.mapped = true

	for i := 0; i < c.options.bufferCount; i++ {
		offset := i * c.alignedSize
		for j := offset; j < offset+c.alignedSize; j++ {
			data[j] = byte(i)
		}
	}

	if c.options.flushVariant == 1 || c.hostUpdates() {
		err = c.ctx.FlushMemory(c.originMemory, 0, toolstest.WholeSize, c.options.flushVariant != 1)
		if err != nil {
			return err
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

func (c *chain) unmap() error {
	if !c.mapped {
		return nil
	}
	c.mapped = false
	return c.ctx.UnmapMemory(c.originMemory)
}

func (c *chain) record(commandBuffer core1_0.CommandBuffer, origin, target core1_0.Buffer) error {
	err := toolstest.Begin(commandBuffer)
	if err != nil {
		return err
	}

	err = c.ctx.CmdCopyBuffer(commandBuffer, []core1_0.Buffer{origin}, []core1_0.Buffer{target}, c.options.bufferSize)
	if err != nil {
		return err
	}

	return toolstest.End(commandBuffer)
}
