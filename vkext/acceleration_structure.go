package vkext

/*
#include <stdint.h>
#include <stddef.h>

typedef struct AccelerationStructureCreateInfo {
	int32_t sType;
	const void* pNext;
	uint32_t createFlags;
	uint64_t buffer;
	uint64_t offset;
	uint64_t size;
	int32_t type;
	uint64_t deviceAddress;
} AccelerationStructureCreateInfo;

typedef struct AccelerationStructureDeviceAddressInfo {
	int32_t sType;
	const void* pNext;
	uint64_t accelerationStructure;
} AccelerationStructureDeviceAddressInfo;

typedef int32_t (*PFN_createAccelerationStructure)(void* device, const AccelerationStructureCreateInfo* info, const void* allocator, uint64_t* structure);
typedef uint64_t (*PFN_accelerationStructureAddress)(void* device, const AccelerationStructureDeviceAddressInfo* info);
typedef void (*PFN_destroyAccelerationStructure)(void* device, uint64_t structure, const void* allocator);

static int32_t callCreateAccelerationStructure(void* fn, void* device, AccelerationStructureCreateInfo* info, uint64_t* structure) {
	info->sType = 1000150017;
	info->pNext = NULL;
	return ((PFN_createAccelerationStructure)fn)(device, info, NULL, structure);
}

static uint64_t callAccelerationStructureAddress(void* fn, void* device, uint64_t structure) {
	AccelerationStructureDeviceAddressInfo info = { 1000150002, NULL, structure };
	return ((PFN_accelerationStructureAddress)fn)(device, &info);
}

static void callDestroyAccelerationStructure(void* fn, void* device, uint64_t structure) {
	((PFN_destroyAccelerationStructure)fn)(device, structure, NULL);
}
*/
import "C"
import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	AccelerationStructureExtensionName = "VK_KHR_acceleration_structure"

	StructureTypeAccelerationStructureFeatures int32 = 1000150013

	// BufferUsageAccelerationStructureStorage lets a buffer back an acceleration structure
	BufferUsageAccelerationStructureStorage core1_0.BufferUsageFlags = 0x00100000
	// BufferUsageShaderBindingTable lets a buffer hold a ray tracing shader binding table
	BufferUsageShaderBindingTable core1_0.BufferUsageFlags = 0x00000400
)

// AccelerationStructureFeatureNames lists the VkPhysicalDeviceAccelerationStructureFeaturesKHR
// members in declaration order
var AccelerationStructureFeatureNames = []string{
	"accelerationStructure",
	"accelerationStructureCaptureReplay",
	"accelerationStructureIndirectBuild",
	"accelerationStructureHostCommands",
	"descriptorBindingAccelerationStructureUpdateAfterBind",
}

type AccelerationStructureType int32

const (
	AccelerationStructureTopLevel    AccelerationStructureType = 0
	AccelerationStructureBottomLevel AccelerationStructureType = 1
	AccelerationStructureGeneric     AccelerationStructureType = 2
)

// AccelerationStructure is a VkAccelerationStructureKHR handle
type AccelerationStructure uint64

type AccelerationStructureCreateInfo struct {
	Buffer core1_0.Buffer
	// Offset must be a multiple of 256
	Offset        int
	Size          int
	Type          AccelerationStructureType
	DeviceAddress uint64
}

// AccelerationStructures calls the VK_KHR_acceleration_structure object entry points of one
// device. Builds are not wrapped.
type AccelerationStructures struct {
	device unsafe.Pointer

	create  unsafe.Pointer
	address unsafe.Pointer
	destroy unsafe.Pointer
}

func LoadAccelerationStructures(device core1_0.Device) (*AccelerationStructures, error) {
	procs, err := loadProcs(device.Driver(),
		"vkCreateAccelerationStructureKHR",
		"vkGetAccelerationStructureDeviceAddressKHR",
		"vkDestroyAccelerationStructureKHR",
	)
	if err != nil {
		return nil, err
	}

	return &AccelerationStructures{
		device:  deviceHandle(device),
		create:  procs[0],
		address: procs[1],
		destroy: procs[2],
	}, nil
}

func (a *AccelerationStructures) Create(info AccelerationStructureCreateInfo) (AccelerationStructure, common.VkResult) {
	cInfo := C.AccelerationStructureCreateInfo{
		buffer:        C.uint64_t(info.Buffer.Handle()),
		offset:        C.uint64_t(info.Offset),
		size:          C.uint64_t(info.Size),
		_type:         C.int32_t(info.Type),
		deviceAddress: C.uint64_t(info.DeviceAddress),
	}

	var structure C.uint64_t
	res := C.callCreateAccelerationStructure(a.create, a.device, &cInfo, &structure)
	return AccelerationStructure(structure), common.VkResult(res)
}

func (a *AccelerationStructures) DeviceAddress(structure AccelerationStructure) uint64 {
	return uint64(C.callAccelerationStructureAddress(a.address, a.device, C.uint64_t(structure)))
}

func (a *AccelerationStructures) Destroy(structure AccelerationStructure) {
	C.callDestroyAccelerationStructure(a.destroy, a.device, C.uint64_t(structure))
}
