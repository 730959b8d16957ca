package vkext

import (
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/vkngwrapper/core/v2/common"
	"golang.org/x/sys/unix"
)

const (
	Maintenance7ExtensionName = "VK_KHR_maintenance7"

	StructureTypeLayeredAPIPropertiesList int32 = 1000562002
	StructureTypeLayeredAPIProperties     int32 = 1000562003
)

// LayeredAPI is a VkPhysicalDeviceLayeredApiKHR
type LayeredAPI int32

const (
	LayeredAPIVulkan   LayeredAPI = 0
	LayeredAPID3D12    LayeredAPI = 1
	LayeredAPIMetal    LayeredAPI = 2
	LayeredAPIOpenGL   LayeredAPI = 3
	LayeredAPIOpenGLES LayeredAPI = 4
)

type cLayeredAPIPropertiesList struct {
	sType       int32
	next        unsafe.Pointer
	count       uint32
	layeredAPIs unsafe.Pointer
}

type cLayeredAPIProperties struct {
	sType      int32
	next       unsafe.Pointer
	vendorID   uint32
	deviceID   uint32
	layeredAPI int32
	deviceName [256]byte
}

// LayeredAPIProperties describes one API the Vulkan implementation is layered on top of
type LayeredAPIProperties struct {
	VendorID   uint32
	DeviceID   uint32
	LayeredAPI LayeredAPI
	DeviceName string
}

// LayeredAPIPropertiesList reads the layered APIs through vkGetPhysicalDeviceProperties2. The
// query fills at most len(Properties) entries and always sets Count, so query once with no
// Properties, size Properties to Count, and query again.
type LayeredAPIPropertiesList struct {
	Count      int
	Properties []LayeredAPIProperties

	common.NextOutData
}

var _ common.OutData = &LayeredAPIPropertiesList{}

func (o *LayeredAPIPropertiesList) PopulateHeader(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	if preallocated == nil {
		preallocated = allocator.Malloc(int(unsafe.Sizeof(cLayeredAPIPropertiesList{})))
	}

	var entries unsafe.Pointer
	if len(o.Properties) > 0 {
		entries = allocator.Malloc(len(o.Properties) * int(unsafe.Sizeof(cLayeredAPIProperties{})))
		cEntries := unsafe.Slice((*cLayeredAPIProperties)(entries), len(o.Properties))
		for i := range cEntries {
			cEntries[i] = cLayeredAPIProperties{sType: StructureTypeLayeredAPIProperties}
		}
	}

	*(*cLayeredAPIPropertiesList)(preallocated) = cLayeredAPIPropertiesList{
		sType:       StructureTypeLayeredAPIPropertiesList,
		next:        next,
		count:       uint32(len(o.Properties)),
		layeredAPIs: entries,
	}
	return preallocated, nil
}

func (o *LayeredAPIPropertiesList) PopulateOutData(cDataPointer unsafe.Pointer, helpers ...any) (next unsafe.Pointer, err error) {
	list := (*cLayeredAPIPropertiesList)(cDataPointer)
	o.Count = int(list.count)

	if list.layeredAPIs != nil {
		filled := o.Count
		if filled > len(o.Properties) {
			filled = len(o.Properties)
		}
		o.Properties = o.Properties[:filled]
		for i, entry := range unsafe.Slice((*cLayeredAPIProperties)(list.layeredAPIs), filled) {
			o.Properties[i] = LayeredAPIProperties{
				VendorID:   entry.vendorID,
				DeviceID:   entry.deviceID,
				LayeredAPI: LayeredAPI(entry.layeredAPI),
				DeviceName: unix.ByteSliceToString(entry.deviceName[:]),
			}
		}
	}
	return list.next, nil
}
