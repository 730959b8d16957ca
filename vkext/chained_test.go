package vkext

import (
	"testing"
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/mocks"
)

func TestFrameBoundaryLayout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	alloc := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(alloc)

	first := mocks.EasyMockBuffer(ctrl)
	second := mocks.EasyMockBuffer(ctrl)

	next := alloc.Malloc(8)
	ptr, err := FrameBoundary{
		Flags:   FrameBoundaryFrameEnd,
		FrameID: 7,
		Buffers: []core1_0.Buffer{first, second},
		TagName: 3,
		Tag:     []byte("frame"),
	}.PopulateCPointer(alloc, nil, next)
	require.NoError(t, err)

	boundary := (*cFrameBoundary)(ptr)
	require.Equal(t, StructureTypeFrameBoundary, boundary.sType)
	require.Equal(t, next, boundary.next)
	require.Equal(t, uint32(1), boundary.flags)
	require.Equal(t, uint64(7), boundary.frameID)
	require.Zero(t, boundary.imageCount)
	require.Nil(t, boundary.images)
	require.Equal(t, uint32(2), boundary.bufferCount)
	require.Equal(t, []uint64{uint64(first.Handle()), uint64(second.Handle())}, unsafe.Slice((*uint64)(boundary.buffers), 2))
	require.Equal(t, uint64(3), boundary.tagName)
	require.Equal(t, uintptr(5), boundary.tagSize)
	require.Equal(t, []byte("frame"), unsafe.Slice((*byte)(boundary.tag), 5))
}

func TestFrameBoundaryEmpty(t *testing.T) {
	alloc := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(alloc)

	ptr, err := FrameBoundary{Flags: FrameBoundaryFrameEnd}.PopulateCPointer(alloc, nil, nil)
	require.NoError(t, err)
	require.Equal(t, cFrameBoundary{sType: StructureTypeFrameBoundary, flags: 1}, *(*cFrameBoundary)(ptr))
}

func setDeviceName(entry *cLayeredAPIProperties, name string) {
	copy(entry.deviceName[:], name)
}

func TestLayeredAPIPropertiesList(t *testing.T) {
	testCases := map[string]struct {
		Capacity     int
		Reported     int
		ExpectedSize int
	}{
		"CountOnly": {Capacity: 0, Reported: 2, ExpectedSize: 0},
		"Full":      {Capacity: 2, Reported: 2, ExpectedSize: 2},
		"Truncated": {Capacity: 1, Reported: 2, ExpectedSize: 1},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			alloc := cgoparam.GetAlloc()
			defer cgoparam.ReturnAlloc(alloc)

			list := &LayeredAPIPropertiesList{Properties: make([]LayeredAPIProperties, testCase.Capacity)}
			ptr, err := list.PopulateHeader(alloc, nil, nil)
			require.NoError(t, err)

			cList := (*cLayeredAPIPropertiesList)(ptr)
			require.Equal(t, StructureTypeLayeredAPIPropertiesList, cList.sType)
			require.Equal(t, uint32(testCase.Capacity), cList.count)

			if testCase.Capacity == 0 {
				require.Nil(t, cList.layeredAPIs)
			} else {
				entries := unsafe.Slice((*cLayeredAPIProperties)(cList.layeredAPIs), testCase.Capacity)
				for i := range entries {
					require.Equal(t, StructureTypeLayeredAPIProperties, entries[i].sType)
					entries[i].vendorID = uint32(0x10 + i)
					entries[i].deviceID = uint32(0x20 + i)
					entries[i].layeredAPI = int32(LayeredAPID3D12)
					setDeviceName(&entries[i], "layered")
				}
			}
			cList.count = uint32(testCase.Reported)

			next, err := list.PopulateOutData(ptr)
			require.NoError(t, err)
			require.Nil(t, next)
			require.Equal(t, testCase.Reported, list.Count)
			require.Len(t, list.Properties, testCase.ExpectedSize)
			for i, properties := range list.Properties {
				require.Equal(t, LayeredAPIProperties{
					VendorID:   uint32(0x10 + i),
					DeviceID:   uint32(0x20 + i),
					LayeredAPI: LayeredAPID3D12,
					DeviceName: "layered",
				}, properties)
			}
		})
	}
}
