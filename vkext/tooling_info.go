package vkext

/*
#include <stdint.h>
#include <stdlib.h>

#define PHYSICAL_DEVICE_TOOL_PROPERTIES 1000245000

typedef struct PhysicalDeviceToolProperties {
	int32_t sType;
	void* pNext;
	char name[256];
	char version[256];
	uint32_t purposes;
	char description[256];
	char layer[256];
} PhysicalDeviceToolProperties;

typedef int32_t (*PFN_getPhysicalDeviceToolProperties)(void* physicalDevice, uint32_t* count, PhysicalDeviceToolProperties* properties);

static int32_t callGetPhysicalDeviceToolProperties(void* fn, void* physicalDevice, uint32_t* count, PhysicalDeviceToolProperties* properties) {
	for (uint32_t i = 0; properties != NULL && i < *count; i++) {
		properties[i].sType = PHYSICAL_DEVICE_TOOL_PROPERTIES;
		properties[i].pNext = NULL;
	}
	return ((PFN_getPhysicalDeviceToolProperties)fn)(physicalDevice, count, properties);
}
*/
import "C"
import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const ToolingInfoExtensionName = "VK_EXT_tooling_info"

// ToolPurposeFlags is a VkToolPurposeFlags
type ToolPurposeFlags uint32

// ToolProperties describes one tool active on a physical device
type ToolProperties struct {
	Name        string
	Version     string
	Purposes    ToolPurposeFlags
	Description string
	Layer       string
}

// ToolingInfo calls vkGetPhysicalDeviceToolPropertiesEXT for one physical device
type ToolingInfo struct {
	physicalDevice unsafe.Pointer
	getProperties  unsafe.Pointer
}

func LoadToolingInfo(instance core1_0.Instance, physicalDevice core1_0.PhysicalDevice) (*ToolingInfo, error) {
	procs, err := loadProcs(instance.Driver(), "vkGetPhysicalDeviceToolPropertiesEXT")
	if err != nil {
		return nil, err
	}

	return &ToolingInfo{
		physicalDevice: unsafe.Pointer(physicalDevice.Handle()),
		getProperties:  procs[0],
	}, nil
}

// Tools asks for the count, then for the tool list
func (t *ToolingInfo) Tools() ([]ToolProperties, common.VkResult) {
	var count C.uint32_t
	res := common.VkResult(C.callGetPhysicalDeviceToolProperties(t.getProperties, t.physicalDevice, &count, nil))
	if res != core1_0.VKSuccess || count == 0 {
		return nil, res
	}

	cProperties := (*C.PhysicalDeviceToolProperties)(C.calloc(C.size_t(count), C.size_t(unsafe.Sizeof(C.PhysicalDeviceToolProperties{}))))
	defer C.free(unsafe.Pointer(cProperties))

	res = common.VkResult(C.callGetPhysicalDeviceToolProperties(t.getProperties, t.physicalDevice, &count, cProperties))
	if res != core1_0.VKSuccess && res != core1_0.VKIncomplete {
		return nil, res
	}

	tools := make([]ToolProperties, 0, int(count))
	for _, cTool := range unsafe.Slice(cProperties, int(count)) {
		tools = append(tools, ToolProperties{
			Name:        C.GoString(&cTool.name[0]),
			Version:     C.GoString(&cTool.version[0]),
			Purposes:    ToolPurposeFlags(cTool.purposes),
			Description: C.GoString(&cTool.description[0]),
			Layer:       C.GoString(&cTool.layer[0]),
		})
	}
	return tools, res
}
