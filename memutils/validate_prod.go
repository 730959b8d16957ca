//go:build !debug_mem_utils

package memutils

import "unsafe"

// DebugMargin is 0 without the debug_mem_utils tag, so no canary ranges are placed
const DebugMargin int = 0

func WriteMagicValue(data unsafe.Pointer, offset int) {}

func ValidateMagicValue(data unsafe.Pointer, offset int) bool {
	return true
}

func DebugValidate(validatable Validatable) {}

func DebugCheckPow2[T Number](value T, name string) {}
