package vkext

/*
#include <stdint.h>
#include <stddef.h>
*/
import "C"
import (
	"runtime/cgo"
)

//export vkextDebugReportCallback
func vkextDebugReportCallback(flags C.uint32_t, objectType C.int32_t, object C.uint64_t, location C.size_t, messageCode C.int32_t, layerPrefix *C.char, message *C.char, userData C.uintptr_t) C.uint32_t {
	callback, ok := cgo.Handle(userData).Value().(*DebugReportCallback)
	if !ok {
		return 0
	}

	received := DebugReportMessage{
		Flags:       DebugReportFlags(flags),
		ObjectType:  DebugReportObjectType(objectType),
		Object:      uint64(object),
		Location:    uint64(location),
		MessageCode: int32(messageCode),
	}
	if layerPrefix != nil {
		received.LayerPrefix = C.GoString(layerPrefix)
	}
	if message != nil {
		received.Message = C.GoString(message)
	}

	if callback.receive(received) {
		return 1
	}
	return 0
}
