package toolstest

import (
	"testing"

	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
)

var selectExtensionsTestCases = map[string]struct {
	Available []string
	Auto      []string
	Required  []string
	Optional  []string

	ExpectedEnabled []string
	ExpectedMissing []string
}{
	"Nothing Requested": {
		Available: []string{"VK_A", "VK_B"},
	},
	"Auto Only When Available": {
		Available:       []string{"VK_A", "VK_B"},
		Auto:            []string{"VK_B", "VK_C"},
		ExpectedEnabled: []string{"VK_B"},
	},
	"Required Missing": {
		Available:       []string{"VK_A"},
		Required:        []string{"VK_X", "VK_A", "VK_Y"},
		ExpectedEnabled: []string{"VK_A"},
		ExpectedMissing: []string{"VK_X", "VK_Y"},
	},
	"Duplicates Enabled Once": {
		Available:       []string{"VK_A", "VK_B"},
		Auto:            []string{"VK_A"},
		Required:        []string{"VK_A", "VK_B"},
		Optional:        []string{"VK_B", "VK_A"},
		ExpectedEnabled: []string{"VK_A", "VK_B"},
	},
	"Optional Never Missing": {
		Available:       []string{"VK_A"},
		Optional:        []string{"VK_Z", "VK_A"},
		ExpectedEnabled: []string{"VK_A"},
	},
}

func TestSelectExtensions(t *testing.T) {
	for testName, testCase := range selectExtensionsTestCases {
		t.Run(testName, func(t *testing.T) {
			available := make(map[string]int)
			for _, name := range testCase.Available {
				available[name] = 1
			}

			enabled, missing := selectExtensions(newNameSet(available), testCase.Auto, testCase.Required, testCase.Optional)
			require.Equal(t, testCase.ExpectedEnabled, enabled)
			require.Equal(t, testCase.ExpectedMissing, missing)
		})
	}
}

func TestMissingExtensionsSkips(t *testing.T) {
	err := missingExtensionsError("device", []string{"VK_X", "VK_Y"})
	require.Equal(t, ExitSkip, ExitCode(err))
	require.EqualError(t, err, "Missing required device extensions:\n\tVK_X\n\tVK_Y")
}

func TestDeviceChecks(t *testing.T) {
	require.NoError(t, checkGPUIndex(0, 1))
	require.Equal(t, ExitFailure, ExitCode(checkGPUIndex(1, 1)))
	require.Equal(t, ExitFailure, ExitCode(checkGPUIndex(-1, 1)))


	require.NoError(t, checkQueueCount(2, 2))
	require.Equal(t, ExitSkip, ExitCode(checkQueueCount(1, 2)))
}

var deviceVersionTestCases = map[string]struct {
	Device    common.APIVersion
	Requested common.APIVersion
	Minimum   common.APIVersion
	Expected  int
}{
	"Device Newer":          {Device: common.Vulkan1_2, Requested: common.Vulkan1_1, Minimum: common.Vulkan1_0, Expected: ExitSuccess},
	"Device Equal":          {Device: common.Vulkan1_1, Requested: common.Vulkan1_1, Minimum: common.Vulkan1_1, Expected: ExitSuccess},
	"Requested Too New":     {Device: common.Vulkan1_1, Requested: common.Vulkan1_2, Minimum: common.Vulkan1_0, Expected: ExitSkip},
	"Minimum Too New":       {Device: common.Vulkan1_0, Requested: common.Vulkan1_0, Minimum: common.Vulkan1_1, Expected: ExitSkip},
	"Minimum Above Request": {Device: common.Vulkan1_2, Requested: common.Vulkan1_1, Minimum: Vulkan13, Expected: ExitSkip},
}

func TestDeviceVersion(t *testing.T) {
	for testName, testCase := range deviceVersionTestCases {
		t.Run(testName, func(t *testing.T) {
			err := checkDeviceVersion(1, testCase.Device, testCase.Requested, testCase.Minimum)
			require.Equal(t, testCase.Expected, ExitCode(err))
		})
	}

	err := checkDeviceVersion(1, common.Vulkan1_1, common.Vulkan1_2, common.Vulkan1_0)
	require.EqualError(t, err, "Selected GPU 1 does not support required Vulkan version 1.2.0")
}

var bufferDeviceAddressTestCases = map[string]struct {
	Requested bool
	Version   common.APIVersion
	Expected  int
}{
	"Not Requested": {Requested: false, Version: common.Vulkan1_0, Expected: ExitSuccess},
	"Vulkan 1.1":    {Requested: true, Version: common.Vulkan1_1, Expected: ExitNeedsVulkan12},
	"Vulkan 1.2":    {Requested: true, Version: common.Vulkan1_2, Expected: ExitSuccess},
	"Vulkan 1.3":    {Requested: true, Version: Vulkan13, Expected: ExitSuccess},
}

func TestBufferDeviceAddressVersion(t *testing.T) {
	for testName, testCase := range bufferDeviceAddressTestCases {
		t.Run(testName, func(t *testing.T) {
			reqs := &Requirements{
				APIVersion:          testCase.Version,
				BufferDeviceAddress: testCase.Requested,
			}
			require.Equal(t, testCase.Expected, ExitCode(checkBufferDeviceAddressVersion(reqs)))
		})
	}
}

func TestMissingFeatures(t *testing.T) {
	reqs := &Requirements{
		SamplerAnisotropy:   true,
		BufferDeviceAddress: true,
		TimelineSemaphore:   true,
	}

	require.Equal(t, []string{"samplerAnisotropy", "bufferDeviceAddress", "timelineSemaphore"}, missingFeatures(reqs, deviceFeatures{}))
	require.Equal(t, []string{"bufferDeviceAddress"}, missingFeatures(reqs, deviceFeatures{SamplerAnisotropy: true, TimelineSemaphore: true}))
	require.Empty(t, missingFeatures(&Requirements{}, deviceFeatures{}))
}

func TestMissingFeatures13(t *testing.T) {
	reqs := &Requirements{Features13: &vkext.Vulkan13Features{PrivateData: true, Synchronization2: true}}

	require.Equal(t, []string{"privateData", "synchronization2"}, missingFeatures(reqs, deviceFeatures{}))
	require.Equal(t, []string{"privateData"}, missingFeatures(reqs, deviceFeatures{Features13: vkext.Vulkan13Features{Synchronization2: true}}))
}

func TestQueuePriorities(t *testing.T) {
	require.Equal(t, []float32{1.0}, queuePriorities(1))
	require.Equal(t, []float32{1.0, 0.5}, queuePriorities(2))
	require.Equal(t, []float32{1.0, 0.5, 0.5}, queuePriorities(3))
}

func TestVariants(t *testing.T) {
	for variant, version := range []common.APIVersion{common.Vulkan1_0, common.Vulkan1_1, common.Vulkan1_2, Vulkan13} {
		actual, ok := VariantVersion(variant)
		require.True(t, ok)
		require.Equal(t, version, actual)
		require.Equal(t, variant, VersionVariant(version))
	}

	_, ok := VariantVersion(4)
	require.False(t, ok)
	require.Equal(t, -1, VersionVariant(common.APIVersion(common.CreateVersion(2, 0, 0))))
	require.Equal(t, "1.2.0", VersionString(common.Vulkan1_2))
}
