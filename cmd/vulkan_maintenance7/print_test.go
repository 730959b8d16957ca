package main

import (
	"bytes"
	"testing"

	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/mocks"
)

func TestPrintLayeredAPIs(t *testing.T) {
	tests := map[string]struct {
		layered  []vkext.LayeredAPIProperties
		expected string
	}{
		"None": {expected: "No layered APIs found!\n"},
		"One": {
			layered:  []vkext.LayeredAPIProperties{{VendorID: 0x13b5, DeviceID: 7, LayeredAPI: vkext.LayeredAPIOpenGLES, DeviceName: "Mali"}},
			expected: "API layer 0: vendor=5045 device=7 name=Mali\n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			printLayeredAPIs(&out, test.layered)
			require.Equal(t, test.expected, out.String())
		})
	}
}

func TestLayeredAPIsQueriesTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	physicalDevice := mocks.NewMockInstanceScopedPhysicalDevice(ctrl)
	gomock.InOrder(
		physicalDevice.EXPECT().Properties2(gomock.Any()).DoAndReturn(func(out *core1_1.PhysicalDeviceProperties2) error {
			list := out.Next.(*vkext.LayeredAPIPropertiesList)
			require.Empty(t, list.Properties)
			list.Count = 2
			return nil
		}),
		physicalDevice.EXPECT().Properties2(gomock.Any()).DoAndReturn(func(out *core1_1.PhysicalDeviceProperties2) error {
			list := out.Next.(*vkext.LayeredAPIPropertiesList)
			require.Len(t, list.Properties, 2)
			list.Properties[0].DeviceName = "first"
			list.Properties[1].DeviceName = "second"
			return nil
		}),
	)

	layered, err := layeredAPIs(physicalDevice)
	require.NoError(t, err)
	require.Equal(t, []vkext.LayeredAPIProperties{{DeviceName: "first"}, {DeviceName: "second"}}, layered)
}

func TestLayeredAPIsNone(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	physicalDevice := mocks.NewMockInstanceScopedPhysicalDevice(ctrl)
	physicalDevice.EXPECT().Properties2(gomock.Any()).Return(nil)

	layered, err := layeredAPIs(physicalDevice)
	require.NoError(t, err)
	require.Empty(t, layered)
}
