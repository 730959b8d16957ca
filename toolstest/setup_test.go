package toolstest

import (
	"testing"

	"github.com/ARM-software/tracetooltests-sub000/tracehelpers"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/core1_2"
)

func TestFeatureQueryChain(t *testing.T) {
	var features12 core1_2.PhysicalDeviceVulkan12Features
	var features13 vkext.Vulkan13Features
	var benchmarking tracehelpers.Benchmarking

	chain := featureQueryChain(true, true, true, &features12, &features13, &benchmarking)
	require.Same(t, &features12, chain)
	require.Same(t, &features13, features12.NextOutData.Next)
	require.Same(t, &benchmarking, features13.NextOutData.Next)
	require.Nil(t, benchmarking.NextOutData.Next)
}

func TestFeatureQueryChainSkipsVersions(t *testing.T) {
	var features12 core1_2.PhysicalDeviceVulkan12Features
	var features13 vkext.Vulkan13Features
	var benchmarking tracehelpers.Benchmarking

	require.Nil(t, featureQueryChain(false, false, false, &features12, &features13, &benchmarking))

	chain := featureQueryChain(false, false, true, &features12, &features13, &benchmarking)
	require.Same(t, &benchmarking, chain)

	chain = featureQueryChain(true, false, false, &features12, &features13, &benchmarking)
	require.Same(t, &features12, chain)
	require.Nil(t, features12.NextOutData.Next)
}

var enabledFeatures13TestCases = map[string]struct {
	Requested *vkext.Vulkan13Features
	Offered   *vkext.Vulkan13Features

	Expected vkext.Vulkan13Features
}{
	"Nothing": {},
	"Synchronization2 Offered": {
		Offered:  &vkext.Vulkan13Features{Synchronization2: true, Maintenance4: true},
		Expected: vkext.Vulkan13Features{Synchronization2: true},
	},
	"Requested Kept": {
		Requested: &vkext.Vulkan13Features{PrivateData: true},
		Offered:   &vkext.Vulkan13Features{PrivateData: true},
		Expected:  vkext.Vulkan13Features{PrivateData: true},
	},
	"Both": {
		Requested: &vkext.Vulkan13Features{PrivateData: true},
		Offered:   &vkext.Vulkan13Features{PrivateData: true, Synchronization2: true},
		Expected:  vkext.Vulkan13Features{PrivateData: true, Synchronization2: true},
	},
}

func TestEnabledFeatures13(t *testing.T) {
	for name, testCase := range enabledFeatures13TestCases {
		t.Run(name, func(t *testing.T) {
			reqs := &Requirements{Features13: testCase.Requested}
			require.Equal(t, testCase.Expected, enabledFeatures13(reqs, testCase.Offered))
		})
	}
}
