package toolstest

import (
	"math"
	"time"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
)

// NoTimeout waits on fences and semaphores forever
const NoTimeout = time.Duration(math.MaxInt64)

// WholeSize selects the remainder of a buffer or memory object from the given offset
const WholeSize = memutils.WholeSize

// CmdCopyBuffer records a full copy of size bytes from each origin buffer to the target buffer
// with the same index, followed by a transfer barrier
func (c *Context) CmdCopyBuffer(commandBuffer core1_0.CommandBuffer, origin, target []core1_0.Buffer, size int) error {
	if len(origin) != len(target) {
		return errors.Newf("copying %d buffers into %d buffers", len(origin), len(target))
	}

	for index := range origin {
		err := commandBuffer.CmdCopyBuffer(origin[index], target[index], []core1_0.BufferCopy{
			{
				SrcOffset: 0,
				DstOffset: 0,
				Size:      size,
			},
		})
		if err != nil {
			return errors.Wrapf(err, "copying buffer %d", index)
		}
	}

	return commandBuffer.CmdPipelineBarrier(core1_0.PipelineStageTransfer, core1_0.PipelineStageTransfer, 0,
		[]core1_0.MemoryBarrier{
			{
				SrcAccessMask: core1_0.AccessTransferWrite,
				DstAccessMask: core1_0.AccessTransferRead,
			},
		}, nil, nil)
}

// QueueBuffer submits a command buffer holding nothing but a barrier on each of buffers and
// waits for it, so that tracing tools see the buffers being used on the device
func (c *Context) QueueBuffer(queue core1_0.Queue, buffers []core1_0.Buffer) error {
	return c.SubmitOnce(queue, func(commandBuffer core1_0.CommandBuffer) error {
		barriers := make([]core1_0.BufferMemoryBarrier, 0, len(buffers))
		for _, buffer := range buffers {
			barriers = append(barriers, core1_0.BufferMemoryBarrier{
				SrcAccessMask:       core1_0.AccessHostWrite,
				DstAccessMask:       core1_0.AccessTransferRead | core1_0.AccessShaderRead,
				SrcQueueFamilyIndex: 0,
				DstQueueFamilyIndex: 0,
				Buffer:              buffer,
				Offset:              0,
				Size:                WholeSize,
			})
		}

		return commandBuffer.CmdPipelineBarrier(core1_0.PipelineStageHost, core1_0.PipelineStageAllCommands, 0, nil, barriers, nil)
	})
}

// CopyBuffer copies size bytes from origin into target on queue and waits for the copy
func (c *Context) CopyBuffer(queue core1_0.Queue, target, origin core1_0.Buffer, size int) error {
	return c.SubmitOnce(queue, func(commandBuffer core1_0.CommandBuffer) error {
		return c.CmdCopyBuffer(commandBuffer, []core1_0.Buffer{origin}, []core1_0.Buffer{target}, size)
	})
}

// CreateCommandPool creates a command pool on queue family 0, named when name is not empty
func (c *Context) CreateCommandPool(flags core1_0.CommandPoolCreateFlags, name string) (core1_0.CommandPool, error) {
	pool, res, err := c.Device.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		Flags:            flags,
		QueueFamilyIndex: 0,
	})
	if err := Check(res, err); err != nil {
		return nil, err
	}

	if name != "" {
		c.SetName(core1_0.ObjectTypeCommandPool, driver.VulkanHandle(pool.Handle()), name)
	}
	return pool, nil
}

func (c *Context) AllocateCommandBuffers(pool core1_0.CommandPool, level core1_0.CommandBufferLevel, count int) ([]core1_0.CommandBuffer, error) {
	commandBuffers, res, err := c.Device.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        pool,
		Level:              level,
		CommandBufferCount: count,
	})
	if err := Check(res, err); err != nil {
		return nil, err
	}
	return commandBuffers, nil
}

// Begin starts recording a one-time-submit command buffer
func Begin(commandBuffer core1_0.CommandBuffer) error {
	return Check(commandBuffer.Begin(core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	}))
}

func End(commandBuffer core1_0.CommandBuffer) error {
	return Check(commandBuffer.End())
}

// CreateBuffer creates an exclusive buffer
func (c *Context) CreateBuffer(size int, usage core1_0.BufferUsageFlags) (core1_0.Buffer, error) {
	buffer, res, err := c.Device.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err := Check(res, err); err != nil {
		return nil, errors.Wrapf(err, "creating buffer of %d bytes", size)
	}
	return buffer, nil
}

// SubmitAndWait submits command buffers to queue with a fresh fence and waits for it
func (c *Context) SubmitAndWait(queue core1_0.Queue, submits []core1_0.SubmitInfo) error {
	fence, res, err := c.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err := Check(res, err); err != nil {
		return err
	}
	defer fence.Destroy(nil)

	res, err = queue.Submit(fence, submits)
	if err := Check(res, err); err != nil {
		return err
	}

	return Check(c.Device.WaitForFences(true, NoTimeout, []core1_0.Fence{fence}))
}

// SubmitOnce records a one-time command buffer on a temporary pool, submits it to queue and waits
// for it to finish
func (c *Context) SubmitOnce(queue core1_0.Queue, record func(commandBuffer core1_0.CommandBuffer) error) error {
	pool, err := c.CreateCommandPool(core1_0.CommandPoolCreateTransient, "")
	if err != nil {
		return err
	}
	defer pool.Destroy(nil)

	commandBuffers, err := c.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, 1)
	if err != nil {
		return err
	}
	defer c.Device.FreeCommandBuffers(commandBuffers)

	err = Begin(commandBuffers[0])
	if err != nil {
		return err
	}

	err = record(commandBuffers[0])
	if err != nil {
		return err
	}

	err = End(commandBuffers[0])
	if err != nil {
		return err
	}

	return c.SubmitAndWait(queue, []core1_0.SubmitInfo{
		{
			CommandBuffers: commandBuffers,
		},
	})
}
