package vulkan

import (
	"testing"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
)

func testProperties(t *testing.T) *DeviceMemoryProperties {
	props, err := NewDeviceMemoryProperties(false, nil, nil,
		&core1_0.PhysicalDeviceProperties{
			Limits: &core1_0.PhysicalDeviceLimits{
				BufferImageGranularity:   1024,
				NonCoherentAtomSize:      64,
				MaxMemoryAllocationCount: 2,
			},
		},
		&core1_0.PhysicalDeviceMemoryProperties{
			MemoryTypes: []core1_0.MemoryType{
				{PropertyFlags: core1_0.MemoryPropertyDeviceLocal, HeapIndex: 0},
				{PropertyFlags: core1_0.MemoryPropertyHostVisible, HeapIndex: 1},
				{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent, HeapIndex: 1},
				{PropertyFlags: core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent | core1_0.MemoryPropertyHostCached, HeapIndex: 1},
			},
			MemoryHeaps: []core1_0.MemoryHeap{
				{Size: 1 << 30, Flags: core1_0.MemoryHeapDeviceLocal},
				{Size: 1 << 28},
			},
		})
	require.NoError(t, err)
	return props
}

var findMemoryTypeTestCases = map[string]struct {
	TypeBits   uint32
	Properties core1_0.MemoryPropertyFlags

	ExpectedIndex int
	Error         bool
}{
	"Device Local": {
		TypeBits:      0xf,
		Properties:    core1_0.MemoryPropertyDeviceLocal,
		ExpectedIndex: 0,
	},
	"Host Coherent": {
		TypeBits:      0xf,
		Properties:    core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
		ExpectedIndex: 2,
	},
	"Host Coherent Filtered By Bits": {
		TypeBits:      0x8,
		Properties:    core1_0.MemoryPropertyHostVisible | core1_0.MemoryPropertyHostCoherent,
		ExpectedIndex: 3,
	},
	"No Properties Takes First Allowed": {
		TypeBits:      0x6,
		ExpectedIndex: 1,
	},
	"Nothing Matches": {
		TypeBits:   0x1,
		Properties: core1_0.MemoryPropertyHostVisible,
		Error:      true,
	},
}

func TestFindMemoryType(t *testing.T) {
	props := testProperties(t)

	for testName, testCase := range findMemoryTypeTestCases {
		t.Run(testName, func(t *testing.T) {
			index, err := props.FindMemoryType(testCase.TypeBits, testCase.Properties)
			if testCase.Error {
				require.Error(t, err)
				require.Equal(t, -1, index)
				return
			}

			require.NoError(t, err)
			require.Equal(t, testCase.ExpectedIndex, index)
		})
	}
}

func TestHostCoherency(t *testing.T) {
	props := testProperties(t)

	require.False(t, props.IsMemoryTypeHostNonCoherent(0))
	require.True(t, props.IsMemoryTypeHostNonCoherent(1))
	require.False(t, props.IsMemoryTypeHostNonCoherent(2))

	require.False(t, props.IsMemoryTypeHostVisible(0))
	require.True(t, props.IsMemoryTypeHostVisible(3))
}

func TestAllocationCountLimit(t *testing.T) {
	props := testProperties(t)

	_, err := props.reserveAllocation()
	require.NoError(t, err)
	_, err = props.reserveAllocation()
	require.NoError(t, err)

	res, err := props.reserveAllocation()
	require.Error(t, err)
	require.Equal(t, core1_0.VKErrorTooManyObjects, res)
	require.Equal(t, uint32(2), props.AllocationCount())

	props.releaseAllocation()
	require.Equal(t, uint32(1), props.AllocationCount())
}

func TestHeapStatistics(t *testing.T) {
	props := testProperties(t)

	props.addBlockAllocation(1, 4096)
	props.AddAllocation(2, 1024)
	props.AddAllocation(3, 512)

	var stats memutils.Statistics
	props.HeapStatistics(1, &stats)
	require.Equal(t, memutils.Statistics{
		MemoryObjects:  1,
		MemoryBytes:    4096,
		BoundResources: 2,
		BoundBytes:     1536,
	}, stats)

	props.RemoveAllocation(3, 512)
	props.removeBlockAllocation(1, 4096)
	props.HeapStatistics(1, &stats)
	require.Equal(t, memutils.Statistics{BoundResources: 1, BoundBytes: 1024}, stats)
}

func TestAtomAlignedRange(t *testing.T) {
	props := testProperties(t)

	offset, size := props.AtomAlignedRange(100, 50, 4096)
	require.Equal(t, 64, offset)
	require.Equal(t, 128, size)

	offset, size = props.AtomAlignedRange(4000, 90, 4096)
	require.Equal(t, 3968, offset)
	require.Equal(t, 128, size)

	offset, size = props.AtomAlignedRange(10, memutils.WholeSize, 4096)
	require.Equal(t, 0, offset)
	require.Equal(t, memutils.WholeSize, size)
}

func TestRejectsBadGranularity(t *testing.T) {
	_, err := NewDeviceMemoryProperties(false, nil, nil,
		&core1_0.PhysicalDeviceProperties{
			Limits: &core1_0.PhysicalDeviceLimits{
				BufferImageGranularity: 1000,
				NonCoherentAtomSize:    64,
			},
		},
		&core1_0.PhysicalDeviceMemoryProperties{})
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))
}
