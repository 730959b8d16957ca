package toolstest

import (
	"fmt"

	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// Vulkan13 is not named by the binding's common package
var Vulkan13 = common.APIVersion(common.CreateVersion(1, 3, 0))

var variantVersions = []common.APIVersion{
	common.Vulkan1_0,
	common.Vulkan1_1,
	common.Vulkan1_2,
	Vulkan13,
}

// Requirements describe what a program needs from the instance and device
type Requirements struct {
	// APIVersion is the requested Vulkan version, 1.1 when unset. -V overrides it.
	APIVersion common.APIVersion
	// MinAPIVersion is the lowest device version the program can run on
	MinAPIVersion common.APIVersion
	// Queues is the number of queues needed from queue family 0, 1 when unset
	Queues int

	InstanceExtensions       []string
	DeviceExtensions         []string
	OptionalDeviceExtensions []string

	// Features enables every core feature set in it, on top of SamplerAnisotropy
	Features            *core1_0.PhysicalDeviceFeatures
	SamplerAnisotropy   bool
	BufferDeviceAddress bool
	TimelineSemaphore   bool
	// Features13 enables Vulkan 1.3 features. The program must ask for Vulkan 1.3.
	Features13 *vkext.Vulkan13Features

	// Instance is reused instead of creating a new one. Done leaves it alive.
	Instance core1_0.Instance
	// ExtensionFeatures is appended to the device feature chain
	ExtensionFeatures common.Options

	Flags *pflag.FlagSet
	Usage string
	// Validate checks the program flags once they are parsed. An error shows the usage.
	Validate func() error
}

func (r *Requirements) setDefaults() {
	if r.APIVersion == 0 {
		r.APIVersion = common.Vulkan1_1
	}
	if r.MinAPIVersion == 0 {
		r.MinAPIVersion = common.Vulkan1_0
	}
	if r.Queues < 1 {
		r.Queues = 1
	}
}

// VariantVersion maps a -V variant to its Vulkan version
func VariantVersion(variant int) (common.APIVersion, bool) {
	if variant < 0 || variant >= len(variantVersions) {
		return 0, false
	}
	return variantVersions[variant], true
}

// VersionVariant maps a Vulkan version to its -V variant, or -1
func VersionVariant(version common.APIVersion) int {
	for variant, variantVersion := range variantVersions {
		if common.Version(variantVersion).Major() == common.Version(version).Major() &&
			common.Version(variantVersion).Minor() == common.Version(version).Minor() {
			return variant
		}
	}
	return -1
}

// VersionString formats a Vulkan version as major.minor.patch
func VersionString(version common.APIVersion) string {
	v := common.Version(version)
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}
