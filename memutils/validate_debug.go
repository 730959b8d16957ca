//go:build debug_mem_utils

package memutils

import "unsafe"

const (
	// DebugMargin is the size of the canary range programs leave between resources that share a
	// memory object
	DebugMargin int = 16

	canaryWord uint32 = 0x7F84E666
)

var canaryWordSize = int(unsafe.Sizeof(canaryWord))

// WriteMagicValue fills DebugMargin bytes at data+offset with the canary pattern
func WriteMagicValue(data unsafe.Pointer, offset int) {
	for i := 0; i < DebugMargin; i += canaryWordSize {
		*(*uint32)(unsafe.Add(data, offset+i)) = canaryWord
	}
}

// ValidateMagicValue reports whether the canary written by WriteMagicValue is untouched
func ValidateMagicValue(data unsafe.Pointer, offset int) bool {
	for i := 0; i < DebugMargin; i += canaryWordSize {
		if *(*uint32)(unsafe.Add(data, offset+i)) != canaryWord {
			return false
		}
	}

	return true
}

// DebugValidate panics when validatable is inconsistent
func DebugValidate(validatable Validatable) {
	if err := validatable.Validate(); err != nil {
		panic(err)
	}
}

// DebugCheckPow2 panics unless value is a power of two
func DebugCheckPow2[T Number](value T, name string) {
	if err := CheckPow2[T](value, name); err != nil {
		panic(err)
	}
}
