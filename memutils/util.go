package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

// WholeSize marks a range that runs to the end of its memory object or buffer, the
// binding's encoding of VK_WHOLE_SIZE
const WholeSize = -1

type Number interface {
	~int | ~uint | ~uint32 | ~uint64
}

func CheckPow2[T Number](number T, name string) error {
	if number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	if alignment == 0 {
		return value
	}
	DebugCheckPow2(alignment, "alignment")
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	if alignment == 0 {
		return value
	}
	DebugCheckPow2(alignment, "alignment")
	return value & int(^(alignment - 1))
}

// AlignedSize rounds size up to the next multiple of alignment. Unlike AlignUp, the alignment
// does not need to be a power of two.
func AlignedSize(size int, alignment int) int {
	if alignment <= 1 {
		return size
	}
	mod := size % alignment
	if mod == 0 {
		return size
	}
	return size + alignment - mod
}

// CheckRange verifies that [offset, offset+size) lies inside an object of objectSize bytes
func CheckRange(offset, size, objectSize int) error {
	if offset < 0 || size < 0 || offset+size > objectSize {
		return cerrors.Wrapf(OutOfRangeError, "offset %d size %d in object of %d bytes", offset, size, objectSize)
	}
	return nil
}
