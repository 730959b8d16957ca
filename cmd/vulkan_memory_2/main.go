// vulkan_memory_2 intermixes linear and opaque content in the same memory object
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/ARM-software/tracetooltests-sub000/memutils/layout"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

const (
	imageWidth  = 192
	imageHeight = 108
)

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_memory_2", pflag.ContinueOnError)
	offset := flags.IntP("offset", "O", 0, "Add an offset to the buffer")
	optimalImage := flags.BoolP("optimal-image", "I", false, "Request an optimal image instead of linear (only works on some GPUs)")

	reqs := &toolstest.Requirements{
		APIVersion: common.Vulkan1_1,
		Flags:      flags,
		Validate: func() error {
			if *offset < 0 {
				return errors.Newf("offset %d is negative", *offset)
			}
			return nil
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_memory_2", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	queue := ctx.Queue(0)

	pool, err := ctx.CreateCommandPool(0, "")
	if err != nil {
		return err
	}
	defer pool.Destroy(nil)

	commandBuffers, err := ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, 10)
	if err != nil {
		return err
	}
	defer ctx.Device.FreeCommandBuffers(commandBuffers)

	buffer, err := ctx.CreateBuffer(1024*1024, core1_0.BufferUsageTransferSrc)
	if err != nil {
		return err
	}
	defer buffer.Destroy(nil)

	bufferRequirements := buffer.MemoryRequirements()
	bufferMemoryTypeIndex, err := ctx.FindMemoryType(bufferRequirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible)
	if err != nil {
		return err
	}

	tiling := core1_0.ImageTilingLinear
	imageKind := layout.KindImageLinear
	if *optimalImage {
		tiling = core1_0.ImageTilingOptimal
		imageKind = layout.KindImageOptimal
	}

	image, res, err := ctx.Device.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Format:    core1_0.FormatR8G8B8A8UnsignedNormalized,
		Extent: core1_0.Extent3D{
			Width:  imageWidth,
			Height: imageHeight,
			Depth:  1,
		},
		MipLevels:          1,
		ArrayLayers:        1,
		Samples:            core1_0.Samples1,
		Tiling:             tiling,
		Usage:              core1_0.ImageUsageTransferDst | core1_0.ImageUsageTransferSrc,
		SharingMode:        core1_0.SharingModeExclusive,
		QueueFamilyIndices: []uint32{0},
		InitialLayout:      core1_0.ImageLayoutUndefined,
	})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer image.Destroy(nil)

	imageRequirements := image.MemoryRequirements()
	imageMemoryTypeIndex, err := ctx.FindMemoryType(imageRequirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible)
	if err != nil {
		return err
	}

	if imageMemoryTypeIndex != bufferMemoryTypeIndex {
		fmt.Println("We could not place an opaque image into our host-side buffer")
		return toolstest.Skip("image needs memory type %d, buffer needs %d", imageMemoryTypeIndex, bufferMemoryTypeIndex)
	}

	packer, err := layout.NewPacker(0, ctx.BufferImageGranularity())
	if err != nil {
		return err
	}

	if *offset > 0 {
		err = packer.PlaceAt("offset", layout.KindFree, 0, *offset)
		if err != nil {
			return err
		}
	}

	bufferStart, err := packer.Place("buffer", layout.KindBuffer, bufferRequirements.Size, uint(bufferRequirements.Alignment))
	if err != nil {
		return err
	}

	// Guard bytes between the buffer and the image, only present in debug_mem_utils builds
	canaryStart := -1
	if memutils.DebugMargin > 0 {
		canaryStart, err = packer.Place("canary", layout.KindFree, memutils.DebugMargin, 1)
		if err != nil {
			return err
		}
	}

	imageStart, err := packer.Place("image", imageKind, imageRequirements.Size, uint(imageRequirements.Alignment))
	if err != nil {
		return err
	}

	err = packer.Validate()
	if err != nil {
		return err
	}

	allocationSize := packer.RequiredSize()
	ctx.Logger.Info("Allocating memory for a buffer and an image",
		slog.Int("size", allocationSize),
		slog.Int("alignmentOverhead", allocationSize-bufferRequirements.Size-imageRequirements.Size-*offset),
		slog.Int("offset", *offset),
		slog.Int("bufferStart", bufferStart),
		slog.Int("bufferSize", bufferRequirements.Size),
		slog.Int("bufferAlignment", bufferRequirements.Alignment),
		slog.Int("imageStart", imageStart),
		slog.Int("imageSize", imageRequirements.Size),
		slog.Int("imageAlignment", imageRequirements.Alignment))

	var layoutStats memutils.LayoutStatistics
	layoutStats.Reset()
	packer.Statistics(&layoutStats)
	ctx.Logger.Debug("memory layout", slog.Any("layout", layoutStats))

	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  allocationSize,
		MemoryTypeIndex: bufferMemoryTypeIndex,
	})
	if err != nil {
		return err
	}
	defer ctx.FreeMemory(memory)

	err = ctx.BindImage(image, memory, imageStart, nil)
	if err != nil {
		return err
	}

	err = ctx.BindBuffer(buffer, memory, bufferStart, nil)
	if err != nil {
		return err
	}

	if canaryStart >= 0 {
		data, err := ctx.MapMemory(memory, 0, allocationSize)
		if err != nil {
			return err
		}
		memutils.WriteMagicValue(data, canaryStart)
		err = ctx.UnmapMemory(memory)
		if err != nil {
			return err
		}
	}

	// Some dummy workload
	err = ctx.QueueBuffer(queue, []core1_0.Buffer{buffer})
	if err != nil {
		return err
	}

	if canaryStart >= 0 {
		data, err := ctx.MapMemory(memory, 0, allocationSize)
		if err != nil {
			return err
		}
		intact := memutils.ValidateMagicValue(data, canaryStart)
		err = ctx.UnmapMemory(memory)
		if err != nil {
			return err
		}
		if !intact {
			return errors.Newf("guard bytes at offset %d between buffer and image were overwritten", canaryStart)
		}
	}

	return nil
}
