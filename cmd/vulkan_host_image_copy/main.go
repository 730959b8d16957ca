// vulkan_host_image_copy uploads, copies and reads back a small image entirely from the host
// with VK_EXT_host_image_copy
package main

import (
	"bytes"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	width  = 4
	height = 4
)

var (
	extent = core1_0.Extent3D{Width: width, Height: height, Depth: 1}

	colorLayers = core1_0.ImageSubresourceLayers{
		AspectMask: core1_0.ImageAspectColor,
		LayerCount: 1,
	}
	colorRange = core1_0.ImageSubresourceRange{
		AspectMask: core1_0.ImageAspectColor,
		LevelCount: 1,
		LayerCount: 1,
	}
)

// texels is an RGBA8 gradient: red counts up, green counts down
func texels(count int) []byte {
	data := make([]byte, 0, count*4)
	for i := 0; i < count; i++ {
		data = append(data, byte(i), byte(255-i), 42, 255)
	}
	return data
}

type hostImages struct {
	ctx  *toolstest.Context
	copy *vkext.HostImageCopy
}

// create makes a linear image in host visible memory and moves it to the general layout from
// the host
func (h *hostImages) create() (core1_0.Image, core1_0.DeviceMemory, error) {
	image, res, err := h.ctx.Device.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType:     core1_0.ImageType2D,
		Format:        core1_0.FormatR8G8B8A8UnsignedNormalized,
		Extent:        extent,
		MipLevels:     1,
		ArrayLayers:   1,
		Samples:       core1_0.Samples1,
		Tiling:        core1_0.ImageTilingLinear,
		Usage:         core1_0.ImageUsageTransferSrc | core1_0.ImageUsageTransferDst | vkext.ImageUsageHostTransfer,
		SharingMode:   core1_0.SharingModeExclusive,
		InitialLayout: core1_0.ImageLayoutUndefined,
	})
	if err := toolstest.Check(res, err); err != nil {
		return nil, nil, err
	}

	requirements := image.MemoryRequirements()
	memoryTypeIndex, err := h.ctx.FindMemoryType(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		image.Destroy(nil)
		return nil, nil, err
	}
	memory, err := h.ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		image.Destroy(nil)
		return nil, nil, err
	}

	err = h.ctx.BindImage(image, memory, 0, nil)
	if err == nil {
		err = toolstest.Check(h.copy.TransitionImageLayout(image, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutGeneral, colorRange), nil)
	}
	if err != nil {
		image.Destroy(nil)
		h.ctx.FreeMemory(memory)
		return nil, nil, err
	}
	return image, memory, nil
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:       toolstest.Vulkan13,
		DeviceExtensions: []string{vkext.HostImageCopyExtensionName},
		ExtensionFeatures: vkext.BoolFeatures{
			StructureType: vkext.StructureTypeHostImageCopyFeatures,
			Values:        []bool{true},
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_host_image_copy", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	hostCopy, err := vkext.LoadHostImageCopy(ctx.Device)
	if err != nil {
		return err
	}
	h := &hostImages{ctx: ctx, copy: hostCopy}

	ctx.Bench.StartIteration()

	image, memory, err := h.create()
	if err != nil {
		return err
	}
	defer ctx.FreeMemory(memory)
	defer image.Destroy(nil)

	imageCopy, memoryCopy, err := h.create()
	if err != nil {
		return err
	}
	defer ctx.FreeMemory(memoryCopy)
	defer imageCopy.Destroy(nil)

	subresource := core1_0.ImageSubresource{AspectMask: core1_0.ImageAspectColor}
	for _, img := range []core1_0.Image{image, imageCopy} {
		layout := hostCopy.SubresourceLayout(img, subresource)
		ctx.Logger.Debug("image subresource layout", "offset", layout.Offset, "size", layout.Size, "rowPitch", layout.RowPitch)
	}

	data := texels(width * height)
	err = toolstest.Check(hostCopy.CopyMemoryToImage(image, core1_0.ImageLayoutGeneral, colorLayers, extent, data), nil)
	if err != nil {
		return err
	}

	err = toolstest.Check(hostCopy.CopyImageToImage(image, core1_0.ImageLayoutGeneral, imageCopy, core1_0.ImageLayoutGeneral, colorLayers, extent), nil)
	if err != nil {
		return err
	}

	readback := make([]byte, len(data))
	err = toolstest.Check(hostCopy.CopyImageToMemory(imageCopy, core1_0.ImageLayoutGeneral, colorLayers, extent, readback), nil)
	if err != nil {
		return err
	}

	if !bytes.Equal(readback, data) {
		return errors.Newf("read back %v, expected %v", readback, data)
	}

	ctx.Bench.StopIteration()
	return nil
}
