// vulkan_pnext_chain rebinds an image many times through vkBindImageMemory2 with a device group
// struct in the chain, handing over a fresh device index slice every time
package main

import (
	"image/color"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
)

const frameEndLabel = "vr-marker,frame_end,type,application"

var imageCreateInfo = core1_0.ImageCreateInfo{
	ImageType:          core1_0.ImageType2D,
	Format:             core1_0.FormatR8G8B8A8UnsignedNormalized,
	Extent:             core1_0.Extent3D{Width: 192, Height: 108, Depth: 1},
	MipLevels:          1,
	ArrayLayers:        1,
	Samples:            core1_0.Samples1,
	Tiling:             core1_0.ImageTilingOptimal,
	Usage:              core1_0.ImageUsageTransferDst | core1_0.ImageUsageTransferSrc,
	SharingMode:        core1_0.SharingModeExclusive,
	QueueFamilyIndices: []uint32{0},
	InitialLayout:      core1_0.ImageLayoutUndefined,
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_pnext_chain", pflag.ContinueOnError)
	loops := flags.IntP("loops", "l", 10000, "Number of submit and rebind rounds")

	reqs := &toolstest.Requirements{
		APIVersion:         common.Vulkan1_1,
		MinAPIVersion:      common.Vulkan1_1,
		InstanceExtensions: []string{ext_debug_utils.ExtensionName},
		Flags:              flags,
		Validate: func() error {
			if *loops < 1 {
				return errors.Newf("need at least one loop, got %d", *loops)
			}
			return nil
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_pnext_chain", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	if ctx.Device11 == nil {
		return toolstest.Skip("device does not support Vulkan 1.1")
	}

	queue := ctx.Queue(0)

	pool, err := ctx.CreateCommandPool(0, "")
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
	if ctx.DebugUtils != nil {
		err = ctx.DebugUtils.CmdInsertDebugUtilsLabel(commandBuffers[0], ext_debug_utils.DebugUtilsLabel{
			LabelName: frameEndLabel,
			Color:     color.RGBA{R: 255, A: 255},
		})
		if err != nil {
			return errors.Wrap(err, "inserting frame end label")
		}
	}
	err = toolstest.End(commandBuffers[0])
	if err != nil {
		return err
	}

	fence, res, err := ctx.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer fence.Destroy(nil)

	image, _, err := ctx.Device.CreateImage(nil, imageCreateInfo)
	if err != nil {
		return errors.Wrap(err, "creating image")
	}
	destroyImage := func() {
		if image != nil {
			image.Destroy(nil)
			image = nil
		}
	}
	defer destroyImage()

	requirements := image.MemoryRequirements()
	memoryTypeIndex, err := ctx.FindMemoryType(requirements.MemoryTypeBits, 0)
	if err != nil {
		return err
	}

	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return err
	}
	// The image has to go before its memory
	defer ctx.FreeMemory(memory)
	defer destroyImage()

	for i := 0; i < *loops; i++ {
		res, err = ctx.Device.ResetFences([]core1_0.Fence{fence})
		if err := toolstest.Check(res, err); err != nil {
			return err
		}

		res, err = queue.Submit(fence, []core1_0.SubmitInfo{{CommandBuffers: commandBuffers}})
		if err := toolstest.Check(res, err); err != nil {
			return err
		}

		res, err = ctx.Device.WaitForFences(true, toolstest.NoTimeout, []core1_0.Fence{fence})
		if err := toolstest.Check(res, err); err != nil {
			return err
		}

		// A fresh slice every round, so a tool holding on to the previous one reads stale memory
		res, err = ctx.Device11.BindImageMemory2([]core1_1.BindImageMemoryInfo{
			{
				Image:        image,
				Memory:       memory,
				MemoryOffset: 0,
				NextOptions: common.NextOptions{Next: core1_1.BindImageMemoryDeviceGroupInfo{
					DeviceIndices: []int{0},
				}},
			},
		})
		if err := toolstest.Check(res, err); err != nil {
			return errors.Wrapf(err, "binding image in round %d", i)
		}

		destroyImage()
		image, _, err = ctx.Device.CreateImage(nil, imageCreateInfo)
		if err != nil {
			return errors.Wrap(err, "recreating image")
		}
	}

	return nil
}
