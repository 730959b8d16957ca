package tracehelpers

import (
	"sort"
	"testing"
	"unsafe"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
)

var loadTestCases = map[string]struct {
	Extensions []string

	ExpectedProcs []string
}{
	"No Extensions": {},
	"Checksum Only": {
		Extensions:    []string{ChecksumValidationExtensionName},
		ExpectedProcs: []string{"vkAssertBufferTRACETOOLTEST"},
	},
	"ARM Trace Helpers": {
		Extensions:    []string{ARMTraceHelpersExtensionName, "VK_KHR_swapchain"},
		ExpectedProcs: []string{"vkAssertBufferARM"},
	},
	"Everything": {
		Extensions: []string{
			ChecksumValidationExtensionName,
			ObjectPropertyExtensionName,
			FrameEndExtensionName,
			TraceHelpers2ExtensionName,
			ARMTraceHelpersExtensionName,
		},
		ExpectedProcs: []string{
			"vkAssertBufferARM",
			"vkAssertBufferTRACETOOLTEST",
			"vkFrameEndTRACETOOLTEST",
			"vkGetDeviceTracingObjectPropertyTRACETOOLTEST",
			"vkThreadBarrierTRACETOOLTEST",
			"vkUpdateBufferTRACETOOLTEST",
		},
	},
}

func TestLoadRequestsEnabledProcs(t *testing.T) {
	for testName, testCase := range loadTestCases {
		t.Run(testName, func(t *testing.T) {
			var requested []string
			helpers := newDeviceHelpers(nil, testCase.Extensions, func(name string) unsafe.Pointer {
				requested = append(requested, name)
				return nil
			})

			sort.Strings(requested)
			require.Equal(t, testCase.ExpectedProcs, requested)
			require.False(t, helpers.Available())

			for _, name := range testCase.Extensions {
				require.True(t, helpers.Has(name))
			}
			require.False(t, helpers.Has(BenchmarkingExtensionName))
		})
	}
}

func TestMissingHelpersReportUnavailable(t *testing.T) {
	helpers := newDeviceHelpers(nil, nil, func(name string) unsafe.Pointer { return nil })

	require.False(t, helpers.CanAssertBuffer())

	checksum, err := helpers.AssertBuffer(nil, 0, memutils.WholeSize, "comment")
	require.True(t, errors.Is(err, ErrUnavailable))
	require.Equal(t, uint32(0), checksum)

	value, err := helpers.ObjectProperty(core1_0.ObjectTypeBuffer, 1, ObjectPropertyIndex)
	require.True(t, errors.Is(err, ErrUnavailable))
	require.Equal(t, uint64(0), value)

	require.True(t, errors.Is(helpers.FrameEnd(), ErrUnavailable))
	require.True(t, errors.Is(helpers.UpdateBuffer(nil, UpdateMemoryInfo{}), ErrUnavailable))
	require.True(t, errors.Is(helpers.ThreadBarrier(nil), ErrUnavailable))
}

func TestAssertBufferRejectsBadRange(t *testing.T) {
	helpers := newDeviceHelpers(nil, nil, func(name string) unsafe.Pointer { return nil })

	_, err := helpers.AssertBuffer(nil, -1, 16, "negative offset")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUnavailable))

	_, err = helpers.AssertBuffer(nil, 0, -5, "negative size")
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrUnavailable))
}

var updateBufferValidationTestCases = map[string]UpdateMemoryInfo{
	"Patch With Data Size": {
		Flags:    UpdateMemoryPatchFormat,
		DataSize: 8,
		Data:     EncodeRuns(nil),
	},
	"Truncated Patch": {
		Flags: UpdateMemoryPatchFormat,
		Data:  []byte{1, 0, 0, 0},
	},
	"Data Too Short": {
		DataSize: 16,
		Data:     make([]byte, 8),
	},
}

func TestUpdateBufferValidation(t *testing.T) {
	marker := 0
	helpers := newDeviceHelpers(nil, []string{TraceHelpers2ExtensionName}, func(name string) unsafe.Pointer {
		return unsafe.Pointer(&marker)
	})
	require.True(t, helpers.Available())

	for testName, info := range updateBufferValidationTestCases {
		t.Run(testName, func(t *testing.T) {
			err := helpers.UpdateBuffer(nil, info)
			require.Error(t, err)
			require.False(t, errors.Is(err, ErrUnavailable))
		})
	}
}

func TestDeviceSize(t *testing.T) {
	require.Equal(t, ^uint64(0), deviceSize(memutils.WholeSize))
	require.Equal(t, uint64(4096), deviceSize(4096))
}

func TestUpdateMemoryInfoLayout(t *testing.T) {
	if unsafe.Sizeof(uintptr(0)) != 8 {
		t.Skip("layout checked on 64-bit targets")
	}

	// flags takes the slot the vendor header gives to dstBuffer
	flags, dstOffset := updateMemoryInfoLayout()
	require.Equal(t, uintptr(16), flags)
	require.Equal(t, uintptr(24), dstOffset)
}
