package tracehelpers

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

const patchHeaderSize = 8

// PatchRun is one changed byte range of a patch stream
type PatchRun struct {
	Offset uint32
	Data   []byte
}

// EncodePatch builds a patch stream that turns previous into next. The stream is a sequence of
// little-endian (uint32 offset, uint32 size) headers each followed by size bytes, terminated by a
// header with both fields zero. Changed runs separated by fewer unchanged bytes than a header
// are merged.
func EncodePatch(previous, next []byte) ([]byte, error) {
	if len(previous) != len(next) {
		return nil, errors.Newf("cannot patch %d bytes into %d bytes", len(previous), len(next))
	}

	if uint64(len(next)) > uint64(^uint32(0)) {
		return nil, errors.Newf("patch target of %d bytes is too large", len(next))
	}

	var runs []PatchRun
	index := 0
	for index < len(next) {
		if previous[index] == next[index] {
			index++
			continue
		}

		start := index
		end := index + 1
		for scan := end; scan < len(next); scan++ {
			if previous[scan] != next[scan] {
				end = scan + 1
			} else if scan-end+1 >= patchHeaderSize {
				break
			}
		}

		runs = append(runs, PatchRun{Offset: uint32(start), Data: next[start:end]})
		index = end
	}

	return EncodeRuns(runs), nil
}

// EncodeRuns serializes runs into a terminated patch stream
func EncodeRuns(runs []PatchRun) []byte {
	size := patchHeaderSize
	for _, run := range runs {
		size += patchHeaderSize + len(run.Data)
	}

	stream := make([]byte, 0, size)
	for _, run := range runs {
		if len(run.Data) == 0 {
			continue
		}
		stream = binary.LittleEndian.AppendUint32(stream, run.Offset)
		stream = binary.LittleEndian.AppendUint32(stream, uint32(len(run.Data)))
		stream = append(stream, run.Data...)
	}

	stream = binary.LittleEndian.AppendUint32(stream, 0)
	stream = binary.LittleEndian.AppendUint32(stream, 0)
	return stream
}

// DecodePatch parses a patch stream into its runs
func DecodePatch(stream []byte) ([]PatchRun, error) {
	var runs []PatchRun

	position := 0
	for {
		if len(stream)-position < patchHeaderSize {
			return nil, errors.Newf("patch stream truncated in header at byte %d", position)
		}

		offset := binary.LittleEndian.Uint32(stream[position:])
		size := binary.LittleEndian.Uint32(stream[position+4:])
		position += patchHeaderSize

		if offset == 0 && size == 0 {
			return runs, nil
		}

		if uint64(len(stream)-position) < uint64(size) {
			return nil, errors.Newf("patch stream truncated in run at offset %d: need %d bytes, have %d", offset, size, len(stream)-position)
		}

		runs = append(runs, PatchRun{Offset: offset, Data: stream[position : position+int(size)]})
		position += int(size)
	}
}

// ApplyPatch writes every run of the patch stream into target
func ApplyPatch(target []byte, stream []byte) error {
	runs, err := DecodePatch(stream)
	if err != nil {
		return err
	}

	for _, run := range runs {
		end := uint64(run.Offset) + uint64(len(run.Data))
		if end > uint64(len(target)) {
			return errors.Newf("patch run at offset %d size %d exceeds target of %d bytes", run.Offset, len(run.Data), len(target))
		}

		copy(target[run.Offset:], run.Data)
	}

	return nil
}
