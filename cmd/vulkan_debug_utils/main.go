// vulkan_debug_utils drives every VK_EXT_debug_utils entry point once
package main

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"os"
	"sync/atomic"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
)

const (
	messageID = "vulkan_debug_utils"
	tagValue  = 0xfeedf00d
)

var (
	queueLabel = ext_debug_utils.DebugUtilsLabel{
		LabelName: "queue label",
		Color:     color.RGBA{R: 0, G: 153, B: 255, A: 255},
	}
	commandLabel = ext_debug_utils.DebugUtilsLabel{
		LabelName: "command label",
		Color:     color.RGBA{R: 255, G: 77, B: 0, A: 255},
	}
)

// receiver is the state shared with the messenger callback
type receiver struct {
	received atomic.Int32
}

func (r *receiver) callback(_ ext_debug_utils.DebugUtilsMessageTypeFlags, _ ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	id := data.MessageIDName
	if id == "" {
		id = messageID
	}
	if id == messageID {
		r.received.Add(1)
	}
	fmt.Printf("output from %s: %s\n", id, data.Message)
	return true
}

type messenger struct {
	ctx *toolstest.Context
	// sent counts messages submitted with messageID
	sent int32
}

func (m *messenger) submit(objectType core1_0.ObjectType, handle driver.VulkanHandle, message string) error {
	err := m.ctx.DebugUtils.SubmitDebugUtilsMessage(m.ctx.Instance, ext_debug_utils.SeverityVerbose, ext_debug_utils.TypeGeneral, ext_debug_utils.DebugUtilsMessengerCallbackData{
		MessageIDName: messageID,
		Message:       message,
		Objects: []ext_debug_utils.DebugUtilsObjectNameInfo{
			{ObjectType: objectType, ObjectHandle: handle},
		},
	})
	if err != nil {
		return errors.Wrapf(err, "submitting %q", message)
	}
	m.sent++
	return nil
}

func (m *messenger) name(objectType core1_0.ObjectType, handle driver.VulkanHandle, name string) error {
	_, err := m.ctx.DebugUtils.SetDebugUtilsObjectName(m.ctx.Device, ext_debug_utils.DebugUtilsObjectNameInfo{
		ObjectType:   objectType,
		ObjectHandle: handle,
		ObjectName:   name,
	})
	return errors.Wrapf(err, "naming %q", name)
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		InstanceExtensions: []string{ext_debug_utils.ExtensionName},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_debug_utils", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	if ctx.DebugUtils == nil {
		return toolstest.Skip("%s is not enabled", ext_debug_utils.ExtensionName)
	}

	r := &receiver{}
	handle, _, err := ctx.DebugUtils.CreateDebugUtilsMessenger(ctx.Instance, nil, ext_debug_utils.DebugUtilsMessengerCreateInfo{
		MessageSeverity: ext_debug_utils.SeverityVerbose | ext_debug_utils.SeverityInfo | ext_debug_utils.SeverityWarning | ext_debug_utils.SeverityError,
		MessageType:     ext_debug_utils.TypeGeneral | ext_debug_utils.TypeValidation | ext_debug_utils.TypePerformance,
		UserCallback:    r.callback,
	})
	if err != nil {
		return errors.Wrap(err, "creating debug messenger")
	}
	defer handle.Destroy(nil)

	m := &messenger{ctx: ctx}
	err = m.submit(core1_0.ObjectTypeInstance, driver.VulkanHandle(ctx.Instance.Handle()), "instance test")
	if err != nil {
		return err
	}
	err = m.submit(core1_0.ObjectTypeDevice, driver.VulkanHandle(ctx.Device.Handle()), "device test")
	if err != nil {
		return err
	}
	err = m.submit(core1_0.ObjectTypePhysicalDevice, driver.VulkanHandle(ctx.PhysicalDevice.Handle()), "physical device test")
	if err != nil {
		return err
	}

	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  1024,
		MemoryTypeIndex: 0,
	})
	if err != nil {
		return err
	}
	memoryHandle := driver.VulkanHandle(memory.Handle())

	err = m.name(core1_0.ObjectTypeDeviceMemory, memoryHandle, "debug utils memory")
	if err != nil {
		ctx.FreeMemory(memory)
		return err
	}

	tag := binary.LittleEndian.AppendUint64(nil, tagValue)
	_, err = ctx.DebugUtils.SetDebugUtilsObjectTag(ctx.Device, ext_debug_utils.DebugUtilsObjectTagInfo{
		ObjectType:   core1_0.ObjectTypeDeviceMemory,
		ObjectHandle: memoryHandle,
		TagName:      1,
		Tag:          tag,
	})
	if err != nil {
		ctx.FreeMemory(memory)
		return errors.Wrap(err, "tagging memory")
	}

	err = m.submit(core1_0.ObjectTypeDeviceMemory, memoryHandle, "memory test")
	ctx.FreeMemory(memory)
	if err != nil {
		return err
	}

	queue := ctx.Queue(0)
	queueHandle := driver.VulkanHandle(queue.Handle())
	err = m.name(core1_0.ObjectTypeQueue, queueHandle, "debug utils queue")
	if err != nil {
		return err
	}
	err = m.submit(core1_0.ObjectTypeQueue, queueHandle, "queue test")
	if err != nil {
		return err
	}

	err = ctx.DebugUtils.QueueBeginDebugUtilsLabel(queue, queueLabel)
	if err != nil {
		return errors.Wrap(err, "beginning queue label")
	}
	err = ctx.DebugUtils.QueueInsertDebugUtilsLabel(queue, queueLabel)
	if err != nil {
		return errors.Wrap(err, "inserting queue label")
	}
	ctx.DebugUtils.QueueEndDebugUtilsLabel(queue)

	pool, err := ctx.CreateCommandPool(core1_0.CommandPoolCreateResetBuffer, "")
	if err != nil {
		return err
	}
	defer pool.Destroy(nil)

	commandBuffers, err := ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, 1)
	if err != nil {
		return err
	}

	_, err = commandBuffers[0].Begin(core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return errors.Wrap(err, "beginning command buffer")
	}
	err = ctx.DebugUtils.CmdBeginDebugUtilsLabel(commandBuffers[0], commandLabel)
	if err != nil {
		return errors.Wrap(err, "beginning command label")
	}
	err = ctx.DebugUtils.CmdInsertDebugUtilsLabel(commandBuffers[0], commandLabel)
	if err != nil {
		return errors.Wrap(err, "inserting command label")
	}
	ctx.DebugUtils.CmdEndDebugUtilsLabel(commandBuffers[0])
	err = toolstest.End(commandBuffers[0])
	if err != nil {
		return err
	}

	if got := r.received.Load(); got < m.sent {
		return errors.Newf("submitted %d messages but the messenger only saw %d", m.sent, got)
	}

	return nil
}
