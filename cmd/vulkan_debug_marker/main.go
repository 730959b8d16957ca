// vulkan_debug_marker names objects and records markers through VK_EXT_debug_marker
package main

import (
	"bytes"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const tagName = 42

var white = [4]float32{1, 1, 1, 1}

type namedObject struct {
	objectType vkext.DebugReportObjectType
	handle     uint64
	name       string
}

// globalNames lists the objects that exist before the program creates anything
func globalNames(ctx *toolstest.Context, queue core1_0.Queue) []namedObject {
	return []namedObject{
		{vkext.DebugReportObjectTypeDevice, uint64(ctx.Device.Handle()), "Our device"},
		{vkext.DebugReportObjectTypeInstance, uint64(ctx.Instance.Handle()), "Our instance"},
		{vkext.DebugReportObjectTypePhysicalDevice, uint64(ctx.PhysicalDevice.Handle()), "Our physical device"},
		{vkext.DebugReportObjectTypeQueue, uint64(queue.Handle()), "Our queue"},
	}
}

func setNames(marker *vkext.DebugMarker, objects ...namedObject) error {
	for _, object := range objects {
		err := toolstest.Check(marker.SetObjectName(object.objectType, object.handle, object.name), nil)
		if err != nil {
			return errors.Wrapf(err, "naming %q", object.name)
		}
	}
	return nil
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		DeviceExtensions: []string{vkext.DebugMarkerExtensionName},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_debug_marker", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	marker, err := vkext.LoadDebugMarker(ctx.Device)
	if err != nil {
		return err
	}

	queue := ctx.Queue(0)

	payload := bytes.Repeat([]byte{'a'}, 60)
	err = toolstest.Check(marker.SetObjectTag(vkext.DebugReportObjectTypeDevice, uint64(ctx.Device.Handle()), tagName, payload), nil)
	if err != nil {
		return err
	}

	err = setNames(marker, globalNames(ctx, queue)...)
	if err != nil {
		return err
	}

	fence, res, err := ctx.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer fence.Destroy(nil)

	pool, err := ctx.CreateCommandPool(core1_0.CommandPoolCreateResetBuffer, "")
	if err != nil {
		return err
	}
	defer pool.Destroy(nil)

	commandBuffers, err := ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, 1)
	if err != nil {
		return err
	}
	defer ctx.Device.FreeCommandBuffers(commandBuffers)
	commandBuffer := commandBuffers[0]

	err = setNames(marker,
		namedObject{vkext.DebugReportObjectTypeFence, uint64(fence.Handle()), "Our fence"},
		namedObject{vkext.DebugReportObjectTypeCommandPool, uint64(pool.Handle()), "Our cmd pool"},
		namedObject{vkext.DebugReportObjectTypeCommandBuffer, uint64(commandBuffer.Handle()), "Our commandbuffer"},
	)
	if err != nil {
		return err
	}

	err = toolstest.Begin(commandBuffer)
	if err != nil {
		return err
	}
	marker.CmdBegin(commandBuffer, "begin marker", white)
	marker.CmdInsert(commandBuffer, "insert marker", white)
	marker.CmdEnd(commandBuffer)
	err = toolstest.End(commandBuffer)
	if err != nil {
		return err
	}

	err = toolstest.Check(queue.Submit(fence, []core1_0.SubmitInfo{{CommandBuffers: commandBuffers}}))
	if err != nil {
		return err
	}
	return toolstest.Check(ctx.Device.WaitForFences(true, toolstest.NoTimeout, []core1_0.Fence{fence}))
}
