package vkext

/*
#include <stdint.h>
#include <stdlib.h>

#define DEBUG_REPORT_CALLBACK_CREATE_INFO 1000011000

typedef uint32_t (*PFN_debugReportCallback)(uint32_t flags, int32_t objectType, uint64_t object, size_t location, int32_t messageCode, const char* layerPrefix, const char* message, void* userData);

typedef struct DebugReportCallbackCreateInfo {
	int32_t sType;
	const void* pNext;
	uint32_t flags;
	PFN_debugReportCallback pfnCallback;
	void* pUserData;
} DebugReportCallbackCreateInfo;

typedef int32_t (*PFN_createDebugReportCallback)(void* instance, const DebugReportCallbackCreateInfo* info, const void* allocator, uint64_t* callback);
typedef void (*PFN_destroyDebugReportCallback)(void* instance, uint64_t callback, const void* allocator);
typedef void (*PFN_debugReportMessage)(void* instance, uint32_t flags, int32_t objectType, uint64_t object, size_t location, int32_t messageCode, const char* layerPrefix, const char* message);

extern uint32_t vkextDebugReportCallback(uint32_t, int32_t, uint64_t, size_t, int32_t, char*, char*, uintptr_t);

static int32_t callCreateDebugReportCallback(void* fn, void* instance, uint32_t flags, uintptr_t userData, uint64_t* callback) {
	DebugReportCallbackCreateInfo info = { DEBUG_REPORT_CALLBACK_CREATE_INFO, NULL, flags, (PFN_debugReportCallback)vkextDebugReportCallback, (void*)userData };
	return ((PFN_createDebugReportCallback)fn)(instance, &info, NULL, callback);
}

static void callDestroyDebugReportCallback(void* fn, void* instance, uint64_t callback) {
	((PFN_destroyDebugReportCallback)fn)(instance, callback, NULL);
}

static void callDebugReportMessage(void* fn, void* instance, uint32_t flags, int32_t objectType, uint64_t object, size_t location, int32_t messageCode, const char* layerPrefix, const char* message) {
	((PFN_debugReportMessage)fn)(instance, flags, objectType, object, location, messageCode, layerPrefix, message);
}
*/
import "C"
import (
	"runtime/cgo"
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const DebugReportExtensionName = "VK_EXT_debug_report"

// DebugReportFlags is a VkDebugReportFlagsEXT
type DebugReportFlags uint32

const (
	DebugReportInformation        DebugReportFlags = 0x1
	DebugReportWarning            DebugReportFlags = 0x2
	DebugReportPerformanceWarning DebugReportFlags = 0x4
	DebugReportError              DebugReportFlags = 0x8
	DebugReportDebug              DebugReportFlags = 0x10
)

// DebugReportMessage is one message the driver or a layer sends to a debug report callback
type DebugReportMessage struct {
	Flags       DebugReportFlags
	ObjectType  DebugReportObjectType
	Object      uint64
	Location    uint64
	MessageCode int32
	LayerPrefix string
	Message     string
}

// DebugReportCallback is a registered VkDebugReportCallbackEXT
type DebugReportCallback struct {
	handle   uint64
	userData cgo.Handle
	receive  func(DebugReportMessage) bool
}

// DebugReport calls the VK_EXT_debug_report entry points of one instance
type DebugReport struct {
	instance unsafe.Pointer

	create  unsafe.Pointer
	destroy unsafe.Pointer
	message unsafe.Pointer
}

func LoadDebugReport(instance core1_0.Instance) (*DebugReport, error) {
	procs, err := loadProcs(instance.Driver(),
		"vkCreateDebugReportCallbackEXT",
		"vkDestroyDebugReportCallbackEXT",
		"vkDebugReportMessageEXT",
	)
	if err != nil {
		return nil, err
	}

	return &DebugReport{
		instance: unsafe.Pointer(instance.Handle()),
		create:   procs[0],
		destroy:  procs[1],
		message:  procs[2],
	}, nil
}

// CreateCallback registers receive for every message matching flags. The callback stays alive
// until DestroyCallback.
func (r *DebugReport) CreateCallback(flags DebugReportFlags, receive func(DebugReportMessage) bool) (*DebugReportCallback, common.VkResult) {
	callback := &DebugReportCallback{receive: receive}
	callback.userData = cgo.NewHandle(callback)

	var handle C.uint64_t
	res := common.VkResult(C.callCreateDebugReportCallback(r.create, r.instance, C.uint32_t(flags), C.uintptr_t(callback.userData), &handle))
	if res != core1_0.VKSuccess {
		callback.userData.Delete()
		return nil, res
	}
	callback.handle = uint64(handle)
	return callback, res
}

func (r *DebugReport) DestroyCallback(callback *DebugReportCallback) {
	C.callDestroyDebugReportCallback(r.destroy, r.instance, C.uint64_t(callback.handle))
	callback.userData.Delete()
}

// Message injects a message into the debug report stream
func (r *DebugReport) Message(flags DebugReportFlags, objectType DebugReportObjectType, object uint64, layerPrefix, message string) {
	cPrefix := C.CString(layerPrefix)
	defer C.free(unsafe.Pointer(cPrefix))
	cMessage := C.CString(message)
	defer C.free(unsafe.Pointer(cMessage))

	C.callDebugReportMessage(r.message, r.instance, C.uint32_t(flags), C.int32_t(objectType), C.uint64_t(object), 0, 0, cPrefix, cMessage)
}
