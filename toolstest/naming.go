package toolstest

import (
	"image/color"

	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"golang.org/x/exp/slog"
)

// SetName attaches a debug name to an object. It does nothing unless debug utils are enabled.
func (c *Context) SetName(objectType core1_0.ObjectType, handle driver.VulkanHandle, name string) {
	if c.DebugUtils == nil || c.Device == nil {
		return
	}

	_, err := c.DebugUtils.SetDebugUtilsObjectName(c.Device, ext_debug_utils.DebugUtilsObjectNameInfo{
		ObjectType:   objectType,
		ObjectHandle: handle,
		ObjectName:   name,
	})
	if err != nil {
		c.Logger.Warn("could not name object", slog.String("name", name), slog.Any("error", err))
	}
}

// Marker inserts a label into a command buffer
func (c *Context) Marker(commandBuffer core1_0.CommandBuffer, name string) {
	if c.DebugUtils == nil {
		return
	}

	err := c.DebugUtils.CmdInsertDebugUtilsLabel(commandBuffer, ext_debug_utils.DebugUtilsLabel{
		LabelName: name,
		Color:     color.Black,
	})
	if err != nil {
		c.Logger.Warn("could not insert label", slog.String("name", name), slog.Any("error", err))
	}
}
