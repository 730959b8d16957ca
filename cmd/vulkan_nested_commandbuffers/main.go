// vulkan_nested_commandbuffers copies a buffer through a secondary command buffer executed from
// another secondary command buffer
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/driver"
)

const bufferSize = 4096

type allocatedBuffer struct {
	buffer core1_0.Buffer
	memory core1_0.DeviceMemory
}

func createBuffer(ctx *toolstest.Context, usage core1_0.BufferUsageFlags, name string) (*allocatedBuffer, error) {
	buffer, err := ctx.CreateBuffer(bufferSize, usage)
	if err != nil {
		return nil, err
	}

	memories, _, err := ctx.AllocateBufferMemory([]core1_0.Buffer{buffer}, toolstest.BufferMemoryOptions{})
	if err != nil {
		buffer.Destroy(nil)
		return nil, err
	}

	ctx.SetName(core1_0.ObjectTypeBuffer, driver.VulkanHandle(buffer.Handle()), name)
	return &allocatedBuffer{buffer: buffer, memory: memories[0]}, nil
}

func (b *allocatedBuffer) destroy(ctx *toolstest.Context) {
	b.buffer.Destroy(nil)
	ctx.FreeMemory(b.memory)
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:       common.Vulkan1_1,
		MinAPIVersion:    common.Vulkan1_1,
		DeviceExtensions: []string{nestedCommandBufferExtensionName},
		ExtensionFeatures: NestedCommandBufferFeatures{
			NestedCommandBuffer: true,
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_nested_commandbuffers", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	physicalDevice := core1_1.PromoteInstanceScopedPhysicalDevice(ctx.PhysicalDevice)
	if physicalDevice == nil {
		return toolstest.Skip("physical device properties 2 are not available")
	}

	var nestedProperties NestedCommandBufferProperties
	err = physicalDevice.Properties2(&core1_1.PhysicalDeviceProperties2{
		NextOutData: common.NextOutData{Next: &nestedProperties},
	})
	if err != nil {
		return err
	}
	if nestedProperties.MaxCommandBufferNestingLevel < 2 {
		fmt.Printf("Nested command buffer nesting level too small (%d)\n", nestedProperties.MaxCommandBufferNestingLevel)
		return toolstest.Skip("nesting level %d is below 2", nestedProperties.MaxCommandBufferNestingLevel)
	}

	queue := ctx.Queue(0)

	var buffers []*allocatedBuffer
	defer func() {
		for _, buffer := range buffers {
			buffer.destroy(ctx)
		}
	}()
	for _, b := range []struct {
		usage core1_0.BufferUsageFlags
		name  string
	}{
		{usage: core1_0.BufferUsageTransferSrc, name: "nested_src"},
		{usage: core1_0.BufferUsageTransferSrc | core1_0.BufferUsageTransferDst, name: "nested_mid"},
		{usage: core1_0.BufferUsageTransferDst, name: "nested_dst"},
	} {
		buffer, err := createBuffer(ctx, b.usage, b.name)
		if err != nil {
			return err
		}
		buffers = append(buffers, buffer)
	}
	src, mid, dst := buffers[0], buffers[1], buffers[2]

	data, err := ctx.MapBytes(src.memory, 0, bufferSize)
	if err != nil {
		return err
	}
	for i := range data {
		data[i] = byte((i * 13) & 0xff)
	}
	expected := toolstest.Adler32(data)
	err = errors.CombineErrors(ctx.FlushMemory(src.memory, 0, bufferSize, true), ctx.UnmapMemory(src.memory))
	if err != nil {
		return err
	}

	pool, err := ctx.CreateCommandPool(core1_0.CommandPoolCreateResetBuffer, "")
	if err != nil {
		return err
	}
	defer pool.Destroy(nil)

	primary, err := ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, 1)
	if err != nil {
		return err
	}
	defer ctx.Device.FreeCommandBuffers(primary)

	secondaries, err := ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelSecondary, 2)
	if err != nil {
		return err
	}
	defer ctx.Device.FreeCommandBuffers(secondaries)
	parent, child := secondaries[0], secondaries[1]

	secondaryBegin := core1_0.CommandBufferBeginInfo{
		Flags:           core1_0.CommandBufferUsageOneTimeSubmit,
		InheritanceInfo: &core1_0.CommandBufferInheritanceInfo{},
	}

	_, err = child.Begin(secondaryBegin)
	if err != nil {
		return errors.Wrap(err, "beginning child command buffer")
	}
	err = ctx.CmdCopyBuffer(child, []core1_0.Buffer{src.buffer}, []core1_0.Buffer{mid.buffer}, bufferSize)
	if err != nil {
		return err
	}
	err = toolstest.End(child)
	if err != nil {
		return err
	}

	_, err = parent.Begin(secondaryBegin)
	if err != nil {
		return errors.Wrap(err, "beginning parent command buffer")
	}
	parent.CmdExecuteCommands([]core1_0.CommandBuffer{child})
	err = ctx.CmdCopyBuffer(parent, []core1_0.Buffer{mid.buffer}, []core1_0.Buffer{dst.buffer}, bufferSize)
	if err != nil {
		return err
	}
	err = toolstest.End(parent)
	if err != nil {
		return err
	}

	err = toolstest.Begin(primary[0])
	if err != nil {
		return err
	}
	primary[0].CmdExecuteCommands([]core1_0.CommandBuffer{parent})
	err = toolstest.End(primary[0])
	if err != nil {
		return err
	}

	ctx.Bench.StartIteration()
	err = ctx.SubmitAndWait(queue, []core1_0.SubmitInfo{{CommandBuffers: primary}})
	if err != nil {
		return err
	}
	ctx.Bench.StopIteration()

	err = ctx.AssertBufferChecksum(mid.buffer, 0, toolstest.WholeSize, "nested mid buffer", expected)
	if err != nil {
		return err
	}
	return ctx.AssertBufferChecksum(dst.buffer, 0, toolstest.WholeSize, "nested dst buffer", expected)
}
