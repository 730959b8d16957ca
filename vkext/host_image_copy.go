package vkext

/*
#include <stdint.h>
#include <stdlib.h>
#include <string.h>

#define MEMORY_TO_IMAGE_COPY 1000270002
#define IMAGE_TO_MEMORY_COPY 1000270003
#define COPY_IMAGE_TO_MEMORY_INFO 1000270004
#define COPY_MEMORY_TO_IMAGE_INFO 1000270005
#define HOST_IMAGE_LAYOUT_TRANSITION_INFO 1000270006
#define COPY_IMAGE_TO_IMAGE_INFO 1000270007
#define IMAGE_COPY_2 1000337007
#define SUBRESOURCE_LAYOUT_2 1000338002
#define IMAGE_SUBRESOURCE_2 1000338003

typedef struct Subresource {
	uint32_t aspectMask;
	uint32_t mipLevel;
	uint32_t arrayLayer;
} Subresource;

typedef struct SubresourceLayers {
	uint32_t aspectMask;
	uint32_t mipLevel;
	uint32_t baseArrayLayer;
	uint32_t layerCount;
} SubresourceLayers;

typedef struct SubresourceRange {
	uint32_t aspectMask;
	uint32_t baseMipLevel;
	uint32_t levelCount;
	uint32_t baseArrayLayer;
	uint32_t layerCount;
} SubresourceRange;

typedef struct Offset3D {
	int32_t x, y, z;
} Offset3D;

typedef struct Extent3D {
	uint32_t width, height, depth;
} Extent3D;

typedef struct HostImageLayoutTransitionInfo {
	int32_t sType;
	const void* pNext;
	uint64_t image;
	int32_t oldLayout;
	int32_t newLayout;
	SubresourceRange subresourceRange;
} HostImageLayoutTransitionInfo;

typedef struct HostMemoryImageCopy {
	int32_t sType;
	const void* pNext;
	void* pHostPointer;
	uint32_t memoryRowLength;
	uint32_t memoryImageHeight;
	SubresourceLayers imageSubresource;
	Offset3D imageOffset;
	Extent3D imageExtent;
} HostMemoryImageCopy;

typedef struct CopyMemoryImageInfo {
	int32_t sType;
	const void* pNext;
	uint32_t flags;
	uint64_t image;
	int32_t imageLayout;
	uint32_t regionCount;
	const HostMemoryImageCopy* pRegions;
} CopyMemoryImageInfo;

typedef struct ImageCopy2 {
	int32_t sType;
	const void* pNext;
	SubresourceLayers srcSubresource;
	Offset3D srcOffset;
	SubresourceLayers dstSubresource;
	Offset3D dstOffset;
	Extent3D extent;
} ImageCopy2;

typedef struct CopyImageToImageInfo {
	int32_t sType;
	const void* pNext;
	uint32_t flags;
	uint64_t srcImage;
	int32_t srcImageLayout;
	uint64_t dstImage;
	int32_t dstImageLayout;
	uint32_t regionCount;
	const ImageCopy2* pRegions;
} CopyImageToImageInfo;

typedef struct ImageSubresource2 {
	int32_t sType;
	void* pNext;
	Subresource imageSubresource;
} ImageSubresource2;

typedef struct SubresourceLayout2 {
	int32_t sType;
	void* pNext;
	uint64_t offset;
	uint64_t size;
	uint64_t rowPitch;
	uint64_t arrayPitch;
	uint64_t depthPitch;
} SubresourceLayout2;

typedef int32_t (*PFN_transitionImageLayout)(void* device, uint32_t count, const HostImageLayoutTransitionInfo* transitions);
typedef int32_t (*PFN_copyMemoryImage)(void* device, const CopyMemoryImageInfo* info);
typedef int32_t (*PFN_copyImageToImage)(void* device, const CopyImageToImageInfo* info);
typedef void (*PFN_getImageSubresourceLayout2)(void* device, uint64_t image, const ImageSubresource2* subresource, SubresourceLayout2* layout);

static int32_t callTransitionImageLayout(void* fn, void* device, HostImageLayoutTransitionInfo* transition) {
	transition->sType = HOST_IMAGE_LAYOUT_TRANSITION_INFO;
	transition->pNext = NULL;
	return ((PFN_transitionImageLayout)fn)(device, 1, transition);
}

// callCopyMemoryImage serves both directions, toImage picks which structure types to use
static int32_t callCopyMemoryImage(void* fn, void* device, int toImage, uint64_t image, int32_t layout, HostMemoryImageCopy* region) {
	CopyMemoryImageInfo info;
	memset(&info, 0, sizeof(info));
	info.sType = toImage ? COPY_MEMORY_TO_IMAGE_INFO : COPY_IMAGE_TO_MEMORY_INFO;
	info.image = image;
	info.imageLayout = layout;
	info.regionCount = 1;
	info.pRegions = region;
	region->sType = toImage ? MEMORY_TO_IMAGE_COPY : IMAGE_TO_MEMORY_COPY;
	region->pNext = NULL;
	return ((PFN_copyMemoryImage)fn)(device, &info);
}

static int32_t callCopyImageToImage(void* fn, void* device, uint64_t src, int32_t srcLayout, uint64_t dst, int32_t dstLayout, ImageCopy2* region) {
	CopyImageToImageInfo info;
	memset(&info, 0, sizeof(info));
	info.sType = COPY_IMAGE_TO_IMAGE_INFO;
	info.srcImage = src;
	info.srcImageLayout = srcLayout;
	info.dstImage = dst;
	info.dstImageLayout = dstLayout;
	info.regionCount = 1;
	info.pRegions = region;
	region->sType = IMAGE_COPY_2;
	region->pNext = NULL;
	return ((PFN_copyImageToImage)fn)(device, &info);
}

static void callGetImageSubresourceLayout2(void* fn, void* device, uint64_t image, Subresource subresource, SubresourceLayout2* layout) {
	ImageSubresource2 info = { IMAGE_SUBRESOURCE_2, NULL, subresource };
	layout->sType = SUBRESOURCE_LAYOUT_2;
	layout->pNext = NULL;
	((PFN_getImageSubresourceLayout2)fn)(device, image, &info, layout);
}
*/
import "C"
import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	HostImageCopyExtensionName = "VK_EXT_host_image_copy"

	// StructureTypeHostImageCopyFeatures chains a one-member BoolFeatures enabling hostImageCopy
	StructureTypeHostImageCopyFeatures int32 = 1000270000

	// ImageUsageHostTransfer allows an image to be the source or destination of host copies
	ImageUsageHostTransfer core1_0.ImageUsageFlags = 0x00400000
)

// HostImageCopy calls the VK_EXT_host_image_copy entry points of one device
type HostImageCopy struct {
	device unsafe.Pointer

	copyMemoryToImage          unsafe.Pointer
	copyImageToMemory          unsafe.Pointer
	transitionImageLayout      unsafe.Pointer
	copyImageToImage           unsafe.Pointer
	getImageSubresourceLayout2 unsafe.Pointer
}

func LoadHostImageCopy(device core1_0.Device) (*HostImageCopy, error) {
	procs, err := loadProcs(device.Driver(),
		"vkCopyMemoryToImageEXT",
		"vkCopyImageToMemoryEXT",
		"vkTransitionImageLayoutEXT",
		"vkCopyImageToImageEXT",
		"vkGetImageSubresourceLayout2EXT",
	)
	if err != nil {
		return nil, err
	}

	return &HostImageCopy{
		device:                     deviceHandle(device),
		copyMemoryToImage:          procs[0],
		copyImageToMemory:          procs[1],
		transitionImageLayout:      procs[2],
		copyImageToImage:           procs[3],
		getImageSubresourceLayout2: procs[4],
	}, nil
}

func subresourceLayers(layers core1_0.ImageSubresourceLayers) C.SubresourceLayers {
	return C.SubresourceLayers{
		aspectMask:     C.uint32_t(layers.AspectMask),
		mipLevel:       C.uint32_t(layers.MipLevel),
		baseArrayLayer: C.uint32_t(layers.BaseArrayLayer),
		layerCount:     C.uint32_t(layers.LayerCount),
	}
}

func extent3D(extent core1_0.Extent3D) C.Extent3D {
	return C.Extent3D{
		width:  C.uint32_t(extent.Width),
		height: C.uint32_t(extent.Height),
		depth:  C.uint32_t(extent.Depth),
	}
}

func imageHandle(image core1_0.Image) C.uint64_t {
	return C.uint64_t(image.Handle())
}

func (h *HostImageCopy) TransitionImageLayout(image core1_0.Image, oldLayout, newLayout core1_0.ImageLayout, subresources core1_0.ImageSubresourceRange) common.VkResult {
	transition := (*C.HostImageLayoutTransitionInfo)(C.calloc(1, C.size_t(unsafe.Sizeof(C.HostImageLayoutTransitionInfo{}))))
	defer C.free(unsafe.Pointer(transition))

	transition.image = imageHandle(image)
	transition.oldLayout = C.int32_t(oldLayout)
	transition.newLayout = C.int32_t(newLayout)
	transition.subresourceRange = C.SubresourceRange{
		aspectMask:     C.uint32_t(subresources.AspectMask),
		baseMipLevel:   C.uint32_t(subresources.BaseMipLevel),
		levelCount:     C.uint32_t(subresources.LevelCount),
		baseArrayLayer: C.uint32_t(subresources.BaseArrayLayer),
		layerCount:     C.uint32_t(subresources.LayerCount),
	}
	return common.VkResult(C.callTransitionImageLayout(h.transitionImageLayout, h.device, transition))
}

func (h *HostImageCopy) copyMemory(fn unsafe.Pointer, toImage bool, image core1_0.Image, layout core1_0.ImageLayout, subresource core1_0.ImageSubresourceLayers, extent core1_0.Extent3D, host unsafe.Pointer) common.VkResult {
	region := (*C.HostMemoryImageCopy)(C.calloc(1, C.size_t(unsafe.Sizeof(C.HostMemoryImageCopy{}))))
	defer C.free(unsafe.Pointer(region))

	region.pHostPointer = host
	region.imageSubresource = subresourceLayers(subresource)
	region.imageExtent = extent3D(extent)

	direction := C.int(0)
	if toImage {
		direction = 1
	}
	return common.VkResult(C.callCopyMemoryImage(fn, h.device, direction, imageHandle(image), C.int32_t(layout), region))
}

// CopyMemoryToImage writes tightly packed texels from data into the image
func (h *HostImageCopy) CopyMemoryToImage(image core1_0.Image, layout core1_0.ImageLayout, subresource core1_0.ImageSubresourceLayers, extent core1_0.Extent3D, data []byte) common.VkResult {
	host := C.CBytes(data)
	defer C.free(host)

	return h.copyMemory(h.copyMemoryToImage, true, image, layout, subresource, extent, host)
}

// CopyImageToMemory reads the image into data as tightly packed texels
func (h *HostImageCopy) CopyImageToMemory(image core1_0.Image, layout core1_0.ImageLayout, subresource core1_0.ImageSubresourceLayers, extent core1_0.Extent3D, data []byte) common.VkResult {
	host := C.calloc(1, C.size_t(len(data)))
	defer C.free(host)

	res := h.copyMemory(h.copyImageToMemory, false, image, layout, subresource, extent, host)
	copy(data, unsafe.Slice((*byte)(host), len(data)))
	return res
}

func (h *HostImageCopy) CopyImageToImage(src core1_0.Image, srcLayout core1_0.ImageLayout, dst core1_0.Image, dstLayout core1_0.ImageLayout, subresource core1_0.ImageSubresourceLayers, extent core1_0.Extent3D) common.VkResult {
	region := (*C.ImageCopy2)(C.calloc(1, C.size_t(unsafe.Sizeof(C.ImageCopy2{}))))
	defer C.free(unsafe.Pointer(region))

	region.srcSubresource = subresourceLayers(subresource)
	region.dstSubresource = subresourceLayers(subresource)
	region.extent = extent3D(extent)
	return common.VkResult(C.callCopyImageToImage(h.copyImageToImage, h.device, imageHandle(src), C.int32_t(srcLayout), imageHandle(dst), C.int32_t(dstLayout), region))
}

func (h *HostImageCopy) SubresourceLayout(image core1_0.Image, subresource core1_0.ImageSubresource) core1_0.SubresourceLayout {
	layout := (*C.SubresourceLayout2)(C.calloc(1, C.size_t(unsafe.Sizeof(C.SubresourceLayout2{}))))
	defer C.free(unsafe.Pointer(layout))

	C.callGetImageSubresourceLayout2(h.getImageSubresourceLayout2, h.device, imageHandle(image), C.Subresource{
		aspectMask: C.uint32_t(subresource.AspectMask),
		mipLevel:   C.uint32_t(subresource.MipLevel),
		arrayLayer: C.uint32_t(subresource.ArrayLayer),
	}, layout)

	return core1_0.SubresourceLayout{
		Offset:     int(layout.offset),
		Size:       int(layout.size),
		RowPitch:   int(layout.rowPitch),
		ArrayPitch: int(layout.arrayPitch),
		DepthPitch: int(layout.depthPitch),
	}
}
