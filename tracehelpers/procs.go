package tracehelpers

/*
#include <stdint.h>
#include <stdlib.h>

#define UPDATE_MEMORY_INFO_STRUCTURE_TYPE 1000998000
#define THREAD_BARRIER_STRUCTURE_TYPE 131322

// The vendor header declares a VkBuffer dstBuffer in the slot after pNext. The buffer is already
// an argument of the update call, so that slot carries UpdateMemoryFlags instead.
typedef struct UpdateMemoryInfo {
	int32_t sType;
	const void* pNext;
	uint32_t flags;
	uint64_t dstOffset;
	uint64_t dataSize;
	const void* pData;
} UpdateMemoryInfo;

typedef struct ThreadBarrierInfo {
	int32_t sType;
	const void* pNext;
	uint32_t count;
	uint32_t* pCallIds;
} ThreadBarrierInfo;

typedef int32_t (*PFN_assertBufferARM)(void* device, void* buffer, uint64_t offset, uint64_t size, uint32_t* checksum, const char* comment);
typedef uint32_t (*PFN_assertBufferTrace)(void* device, void* buffer, uint64_t offset, uint64_t size, const char* comment);
typedef uint64_t (*PFN_objectProperty)(void* device, int32_t objectType, uint64_t handle, int32_t property);
typedef void (*PFN_frameEnd)(void* device);
typedef void (*PFN_updateBuffer)(void* device, void* buffer, UpdateMemoryInfo* info);
typedef void (*PFN_threadBarrier)(const ThreadBarrierInfo* info);

static int32_t callAssertBufferARM(void* fn, void* device, void* buffer, uint64_t offset, uint64_t size, uint32_t* checksum, const char* comment) {
	return ((PFN_assertBufferARM)fn)(device, buffer, offset, size, checksum, comment);
}

static uint32_t callAssertBufferTrace(void* fn, void* device, void* buffer, uint64_t offset, uint64_t size, const char* comment) {
	return ((PFN_assertBufferTrace)fn)(device, buffer, offset, size, comment);
}

static uint64_t callObjectProperty(void* fn, void* device, int32_t objectType, uint64_t handle, int32_t property) {
	return ((PFN_objectProperty)fn)(device, objectType, handle, property);
}

static void callFrameEnd(void* fn, void* device) {
	((PFN_frameEnd)fn)(device);
}

static void callUpdateBuffer(void* fn, void* device, void* buffer, UpdateMemoryInfo* info) {
	info->sType = UPDATE_MEMORY_INFO_STRUCTURE_TYPE;
	info->pNext = NULL;
	((PFN_updateBuffer)fn)(device, buffer, info);
}

static void callThreadBarrier(void* fn, ThreadBarrierInfo* info) {
	if (info != NULL) {
		info->sType = THREAD_BARRIER_STRUCTURE_TYPE;
		info->pNext = NULL;
	}
	((PFN_threadBarrier)fn)(info);
}
*/
import "C"
import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
)

// Load resolves the helper functions of every enabled trace helper extension on the device
func Load(device core1_0.Device, enabledExtensions []string) *DeviceHelpers {
	return newDeviceHelpers(unsafe.Pointer(device.Handle()), enabledExtensions, func(name string) unsafe.Pointer {
		cName := C.CString(name)
		defer C.free(unsafe.Pointer(cName))

		return device.Driver().LoadProcAddr((*driver.Char)(unsafe.Pointer(cName)))
	})
}

func bufferHandle(buffer core1_0.Buffer) unsafe.Pointer {
	if buffer == nil {
		return nil
	}
	return unsafe.Pointer(buffer.Handle())
}

func callAssertBufferARM(fn, device, buffer unsafe.Pointer, offset, size uint64, comment string) (uint32, common.VkResult) {
	cComment := C.CString(comment)
	defer C.free(unsafe.Pointer(cComment))

	checksum := (*C.uint32_t)(C.malloc(C.size_t(unsafe.Sizeof(C.uint32_t(0)))))
	defer C.free(unsafe.Pointer(checksum))
	*checksum = 0

	res := C.callAssertBufferARM(fn, device, buffer, C.uint64_t(offset), C.uint64_t(size), checksum, cComment)
	return uint32(*checksum), common.VkResult(res)
}

func callAssertBufferTrace(fn, device, buffer unsafe.Pointer, offset, size uint64, comment string) uint32 {
	cComment := C.CString(comment)
	defer C.free(unsafe.Pointer(cComment))

	return uint32(C.callAssertBufferTrace(fn, device, buffer, C.uint64_t(offset), C.uint64_t(size), cComment))
}

func callObjectProperty(fn, device unsafe.Pointer, objectType int32, handle uint64, property int32) uint64 {
	return uint64(C.callObjectProperty(fn, device, C.int32_t(objectType), C.uint64_t(handle), C.int32_t(property)))
}

func callFrameEnd(fn, device unsafe.Pointer) {
	C.callFrameEnd(fn, device)
}

// updateMemoryInfoLayout reports where flags and dstOffset sit in the structure passed to the tool
func updateMemoryInfoLayout() (flags, dstOffset uintptr) {
	var info C.UpdateMemoryInfo
	return unsafe.Offsetof(info.flags), unsafe.Offsetof(info.dstOffset)
}

func callUpdateBuffer(fn, device, buffer unsafe.Pointer, info UpdateMemoryInfo) {
	cInfo := (*C.UpdateMemoryInfo)(C.calloc(1, C.size_t(unsafe.Sizeof(C.UpdateMemoryInfo{}))))
	defer C.free(unsafe.Pointer(cInfo))

	var data unsafe.Pointer
	if len(info.Data) > 0 {
		data = C.CBytes(info.Data)
		defer C.free(data)
	}

	cInfo.flags = C.uint32_t(info.Flags)
	cInfo.dstOffset = C.uint64_t(info.DstOffset)
	cInfo.dataSize = C.uint64_t(info.DataSize)
	cInfo.pData = data

	C.callUpdateBuffer(fn, device, buffer, cInfo)
}

func callThreadBarrier(fn unsafe.Pointer, callIDs []uint32) {
	if callIDs == nil {
		C.callThreadBarrier(fn, nil)
		return
	}

	cInfo := (*C.ThreadBarrierInfo)(C.calloc(1, C.size_t(unsafe.Sizeof(C.ThreadBarrierInfo{}))))
	defer C.free(unsafe.Pointer(cInfo))

	if len(callIDs) > 0 {
		ids := C.malloc(C.size_t(len(callIDs)) * C.size_t(unsafe.Sizeof(C.uint32_t(0))))
		defer C.free(ids)

		copy(unsafe.Slice((*uint32)(ids), len(callIDs)), callIDs)
		cInfo.pCallIds = (*C.uint32_t)(ids)
	}
	cInfo.count = C.uint32_t(len(callIDs))

	C.callThreadBarrier(fn, cInfo)
}
