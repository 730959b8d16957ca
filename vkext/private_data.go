package vkext

/*
#include <stdint.h>
#include <stddef.h>

#define PRIVATE_DATA_SLOT_CREATE_INFO 1000295002

typedef struct PrivateDataSlotCreateInfo {
	int32_t sType;
	const void* pNext;
	uint32_t flags;
} PrivateDataSlotCreateInfo;

typedef int32_t (*PFN_createPrivateDataSlot)(void* device, const PrivateDataSlotCreateInfo* info, const void* allocator, uint64_t* slot);
typedef void (*PFN_destroyPrivateDataSlot)(void* device, uint64_t slot, const void* allocator);
typedef int32_t (*PFN_setPrivateData)(void* device, int32_t objectType, uint64_t handle, uint64_t slot, uint64_t data);
typedef void (*PFN_getPrivateData)(void* device, int32_t objectType, uint64_t handle, uint64_t slot, uint64_t* data);

static int32_t callCreatePrivateDataSlot(void* fn, void* device, uint64_t* slot) {
	PrivateDataSlotCreateInfo info = { PRIVATE_DATA_SLOT_CREATE_INFO, NULL, 0 };
	return ((PFN_createPrivateDataSlot)fn)(device, &info, NULL, slot);
}

static void callDestroyPrivateDataSlot(void* fn, void* device, uint64_t slot) {
	((PFN_destroyPrivateDataSlot)fn)(device, slot, NULL);
}

static int32_t callSetPrivateData(void* fn, void* device, int32_t objectType, uint64_t handle, uint64_t slot, uint64_t data) {
	return ((PFN_setPrivateData)fn)(device, objectType, handle, slot, data);
}

static void callGetPrivateData(void* fn, void* device, int32_t objectType, uint64_t handle, uint64_t slot, uint64_t* data) {
	((PFN_getPrivateData)fn)(device, objectType, handle, slot, data);
}
*/
import "C"
import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	PrivateDataExtensionName = "VK_EXT_private_data"

	// StructureTypePrivateDataFeatures chains a one-member BoolFeatures enabling privateData
	StructureTypePrivateDataFeatures int32 = 1000295000
)

// PrivateDataSlot is a VkPrivateDataSlot handle
type PrivateDataSlot uint64

// PrivateData calls the private data entry points, either the Vulkan 1.3 core ones or the
// VK_EXT_private_data ones
type PrivateData struct {
	device unsafe.Pointer

	create  unsafe.Pointer
	destroy unsafe.Pointer
	set     unsafe.Pointer
	get     unsafe.Pointer
}

// LoadPrivateData resolves the entry points with suffix appended to their names, "" for the
// core functions and "EXT" for the extension
func LoadPrivateData(device core1_0.Device, suffix string) (*PrivateData, error) {
	procs, err := loadProcs(device.Driver(),
		"vkCreatePrivateDataSlot"+suffix,
		"vkDestroyPrivateDataSlot"+suffix,
		"vkSetPrivateData"+suffix,
		"vkGetPrivateData"+suffix,
	)
	if err != nil {
		return nil, err
	}

	return &PrivateData{
		device:  deviceHandle(device),
		create:  procs[0],
		destroy: procs[1],
		set:     procs[2],
		get:     procs[3],
	}, nil
}

func (p *PrivateData) CreateSlot() (PrivateDataSlot, common.VkResult) {
	var slot C.uint64_t
	res := C.callCreatePrivateDataSlot(p.create, p.device, &slot)
	return PrivateDataSlot(slot), common.VkResult(res)
}

func (p *PrivateData) DestroySlot(slot PrivateDataSlot) {
	C.callDestroyPrivateDataSlot(p.destroy, p.device, C.uint64_t(slot))
}

func (p *PrivateData) Set(objectType core1_0.ObjectType, handle uint64, slot PrivateDataSlot, data uint64) common.VkResult {
	return common.VkResult(C.callSetPrivateData(p.set, p.device, C.int32_t(objectType), C.uint64_t(handle), C.uint64_t(slot), C.uint64_t(data)))
}

func (p *PrivateData) Get(objectType core1_0.ObjectType, handle uint64, slot PrivateDataSlot) uint64 {
	var data C.uint64_t
	C.callGetPrivateData(p.get, p.device, C.int32_t(objectType), C.uint64_t(handle), C.uint64_t(slot), &data)
	return uint64(data)
}
