package vkext

/*
#include <stdint.h>
#include <stdlib.h>

#define DEBUG_MARKER_OBJECT_NAME_INFO 1000022000
#define DEBUG_MARKER_OBJECT_TAG_INFO 1000022001
#define DEBUG_MARKER_MARKER_INFO 1000022002

typedef struct DebugMarkerObjectNameInfo {
	int32_t sType;
	const void* pNext;
	int32_t objectType;
	uint64_t object;
	const char* pObjectName;
} DebugMarkerObjectNameInfo;

typedef struct DebugMarkerObjectTagInfo {
	int32_t sType;
	const void* pNext;
	int32_t objectType;
	uint64_t object;
	uint64_t tagName;
	size_t tagSize;
	const void* pTag;
} DebugMarkerObjectTagInfo;

typedef struct DebugMarkerMarkerInfo {
	int32_t sType;
	const void* pNext;
	const char* pMarkerName;
	float color[4];
} DebugMarkerMarkerInfo;

typedef int32_t (*PFN_debugMarkerSetObjectName)(void* device, const DebugMarkerObjectNameInfo* info);
typedef int32_t (*PFN_debugMarkerSetObjectTag)(void* device, const DebugMarkerObjectTagInfo* info);
typedef void (*PFN_cmdDebugMarker)(void* commandBuffer, const DebugMarkerMarkerInfo* info);
typedef void (*PFN_cmdDebugMarkerEnd)(void* commandBuffer);

static int32_t callDebugMarkerSetObjectName(void* fn, void* device, int32_t objectType, uint64_t object, const char* name) {
	DebugMarkerObjectNameInfo info = { DEBUG_MARKER_OBJECT_NAME_INFO, NULL, objectType, object, name };
	return ((PFN_debugMarkerSetObjectName)fn)(device, &info);
}

static int32_t callDebugMarkerSetObjectTag(void* fn, void* device, int32_t objectType, uint64_t object, uint64_t tagName, size_t tagSize, const void* tag) {
	DebugMarkerObjectTagInfo info = { DEBUG_MARKER_OBJECT_TAG_INFO, NULL, objectType, object, tagName, tagSize, tag };
	return ((PFN_debugMarkerSetObjectTag)fn)(device, &info);
}

static void callCmdDebugMarker(void* fn, void* commandBuffer, const char* name, float r, float g, float b, float a) {
	DebugMarkerMarkerInfo info = { DEBUG_MARKER_MARKER_INFO, NULL, name, { r, g, b, a } };
	((PFN_cmdDebugMarker)fn)(commandBuffer, &info);
}

static void callCmdDebugMarkerEnd(void* fn, void* commandBuffer) {
	((PFN_cmdDebugMarkerEnd)fn)(commandBuffer);
}
*/
import "C"
import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const DebugMarkerExtensionName = "VK_EXT_debug_marker"

// DebugReportObjectType is a VkDebugReportObjectTypeEXT, shared by the debug marker and debug
// report extensions
type DebugReportObjectType int32

const (
	DebugReportObjectTypeUnknown        DebugReportObjectType = 0
	DebugReportObjectTypeInstance       DebugReportObjectType = 1
	DebugReportObjectTypePhysicalDevice DebugReportObjectType = 2
	DebugReportObjectTypeDevice         DebugReportObjectType = 3
	DebugReportObjectTypeQueue          DebugReportObjectType = 4
	DebugReportObjectTypeCommandBuffer  DebugReportObjectType = 6
	DebugReportObjectTypeFence          DebugReportObjectType = 7
	DebugReportObjectTypeBuffer         DebugReportObjectType = 9
	DebugReportObjectTypeCommandPool    DebugReportObjectType = 25
)

// DebugMarker calls the VK_EXT_debug_marker entry points of one device
type DebugMarker struct {
	device unsafe.Pointer

	setObjectTag  unsafe.Pointer
	setObjectName unsafe.Pointer
	cmdBegin      unsafe.Pointer
	cmdEnd        unsafe.Pointer
	cmdInsert     unsafe.Pointer
}

func LoadDebugMarker(device core1_0.Device) (*DebugMarker, error) {
	procs, err := loadProcs(device.Driver(),
		"vkDebugMarkerSetObjectTagEXT",
		"vkDebugMarkerSetObjectNameEXT",
		"vkCmdDebugMarkerBeginEXT",
		"vkCmdDebugMarkerEndEXT",
		"vkCmdDebugMarkerInsertEXT",
	)
	if err != nil {
		return nil, err
	}

	return &DebugMarker{
		device:        deviceHandle(device),
		setObjectTag:  procs[0],
		setObjectName: procs[1],
		cmdBegin:      procs[2],
		cmdEnd:        procs[3],
		cmdInsert:     procs[4],
	}, nil
}

func (m *DebugMarker) SetObjectName(objectType DebugReportObjectType, object uint64, name string) common.VkResult {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	return common.VkResult(C.callDebugMarkerSetObjectName(m.setObjectName, m.device, C.int32_t(objectType), C.uint64_t(object), cName))
}

func (m *DebugMarker) SetObjectTag(objectType DebugReportObjectType, object uint64, tagName uint64, tag []byte) common.VkResult {
	var cTag unsafe.Pointer
	if len(tag) > 0 {
		cTag = C.CBytes(tag)
		defer C.free(cTag)
	}

	return common.VkResult(C.callDebugMarkerSetObjectTag(m.setObjectTag, m.device, C.int32_t(objectType), C.uint64_t(object), C.uint64_t(tagName), C.size_t(len(tag)), cTag))
}

func (m *DebugMarker) cmdMarker(fn unsafe.Pointer, commandBuffer core1_0.CommandBuffer, name string, color [4]float32) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	C.callCmdDebugMarker(fn, commandBufferHandle(commandBuffer), cName, C.float(color[0]), C.float(color[1]), C.float(color[2]), C.float(color[3]))
}

func (m *DebugMarker) CmdBegin(commandBuffer core1_0.CommandBuffer, name string, color [4]float32) {
	m.cmdMarker(m.cmdBegin, commandBuffer, name, color)
}

func (m *DebugMarker) CmdInsert(commandBuffer core1_0.CommandBuffer, name string, color [4]float32) {
	m.cmdMarker(m.cmdInsert, commandBuffer, name, color)
}

func (m *DebugMarker) CmdEnd(commandBuffer core1_0.CommandBuffer) {
	C.callCmdDebugMarkerEnd(m.cmdEnd, commandBufferHandle(commandBuffer))
}
