package vkext

/*
#include <stdint.h>
#include <stddef.h>

typedef int32_t (*PFN_createDeferredOperation)(void* device, const void* allocator, uint64_t* operation);
typedef void (*PFN_destroyDeferredOperation)(void* device, uint64_t operation, const void* allocator);
typedef uint32_t (*PFN_deferredOperationMaxConcurrency)(void* device, uint64_t operation);
typedef int32_t (*PFN_deferredOperationCall)(void* device, uint64_t operation);

static int32_t callCreateDeferredOperation(void* fn, void* device, uint64_t* operation) {
	return ((PFN_createDeferredOperation)fn)(device, NULL, operation);
}

static void callDestroyDeferredOperation(void* fn, void* device, uint64_t operation) {
	((PFN_destroyDeferredOperation)fn)(device, operation, NULL);
}

static uint32_t callDeferredOperationMaxConcurrency(void* fn, void* device, uint64_t operation) {
	return ((PFN_deferredOperationMaxConcurrency)fn)(device, operation);
}

static int32_t callDeferredOperation(void* fn, void* device, uint64_t operation) {
	return ((PFN_deferredOperationCall)fn)(device, operation);
}
*/
import "C"
import (
	"unsafe"

	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const DeferredHostOperationsExtensionName = "VK_KHR_deferred_host_operations"

// DeferredOperation is a VkDeferredOperationKHR handle
type DeferredOperation uint64

// DeferredHostOperations calls the VK_KHR_deferred_host_operations entry points of one device
type DeferredHostOperations struct {
	device unsafe.Pointer

	create         unsafe.Pointer
	destroy        unsafe.Pointer
	maxConcurrency unsafe.Pointer
	result         unsafe.Pointer
	join           unsafe.Pointer
}

func LoadDeferredHostOperations(device core1_0.Device) (*DeferredHostOperations, error) {
	procs, err := loadProcs(device.Driver(),
		"vkCreateDeferredOperationKHR",
		"vkDestroyDeferredOperationKHR",
		"vkGetDeferredOperationMaxConcurrencyKHR",
		"vkGetDeferredOperationResultKHR",
		"vkDeferredOperationJoinKHR",
	)
	if err != nil {
		return nil, err
	}

	return &DeferredHostOperations{
		device:         deviceHandle(device),
		create:         procs[0],
		destroy:        procs[1],
		maxConcurrency: procs[2],
		result:         procs[3],
		join:           procs[4],
	}, nil
}

func (d *DeferredHostOperations) Create() (DeferredOperation, common.VkResult) {
	var operation C.uint64_t
	res := C.callCreateDeferredOperation(d.create, d.device, &operation)
	return DeferredOperation(operation), common.VkResult(res)
}

func (d *DeferredHostOperations) Destroy(operation DeferredOperation) {
	C.callDestroyDeferredOperation(d.destroy, d.device, C.uint64_t(operation))
}

func (d *DeferredHostOperations) MaxConcurrency(operation DeferredOperation) uint32 {
	return uint32(C.callDeferredOperationMaxConcurrency(d.maxConcurrency, d.device, C.uint64_t(operation)))
}

// Join lends the calling thread to the operation. VKThreadDone and VKThreadIdle are not errors.
func (d *DeferredHostOperations) Join(operation DeferredOperation) common.VkResult {
	return common.VkResult(C.callDeferredOperation(d.join, d.device, C.uint64_t(operation)))
}

func (d *DeferredHostOperations) Result(operation DeferredOperation) common.VkResult {
	return common.VkResult(C.callDeferredOperation(d.result, d.device, C.uint64_t(operation)))
}
