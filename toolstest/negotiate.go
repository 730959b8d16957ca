package toolstest

import (
	"strings"

	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/common"
)

type nameSet = swiss.Map[string, struct{}]

func newNameSet[T any](names map[string]T) *nameSet {
	set := swiss.NewMap[string, struct{}](uint32(len(names)))
	for name := range names {
		set.Put(name, struct{}{})
	}
	return set
}

// selectExtensions picks the extensions to enable from the available set. Auto and optional
// extensions are enabled only when available. Required extensions that are not available are
// returned as missing, in request order.
func selectExtensions(available *nameSet, auto, required, optional []string) (enabled []string, missing []string) {
	chosen := swiss.NewMap[string, struct{}](uint32(len(auto) + len(required) + len(optional)))
	enable := func(name string) {
		if chosen.Has(name) {
			return
		}
		chosen.Put(name, struct{}{})
		enabled = append(enabled, name)
	}

	for _, name := range auto {
		if available.Has(name) {
			enable(name)
		}
	}

	for _, name := range required {
		if !available.Has(name) {
			missing = append(missing, name)
			continue
		}
		enable(name)
	}

	for _, name := range optional {
		if available.Has(name) {
			enable(name)
		}
	}

	return enabled, missing
}

func missingExtensionsError(kind string, missing []string) error {
	return Skip("Missing required %s extensions:\n\t%s", kind, strings.Join(missing, "\n\t"))
}

func checkGPUIndex(gpu, count int) error {
	if gpu < 0 || gpu >= count {
		return BadGPU(gpu)
	}
	return nil
}

// checkDeviceVersion skips the program when the selected device runs an older Vulkan version than
// the one requested on the command line or the program's minimum
func checkDeviceVersion(gpu int, deviceVersion, requested, minVersion common.APIVersion) error {
	required := requested
	if minVersion > required {
		required = minVersion
	}
	if deviceVersion < required {
		return Skip("Selected GPU %d does not support required Vulkan version %s", gpu, VersionString(required))
	}
	return nil
}

func checkQueueCount(available, needed int) error {
	if available < needed {
		return Skip("Vulkan implementation does not have sufficient queues (only %d, need %d) for this test", available, needed)
	}
	return nil
}

func checkBufferDeviceAddressVersion(reqs *Requirements) error {
	if reqs.BufferDeviceAddress && reqs.APIVersion < common.Vulkan1_2 {
		return NeedsVulkan12("Buffer device address feature requires at least Vulkan 1.2 - set the Vulkan version with the -V parameter")
	}
	return nil
}

type deviceFeatures struct {
	SamplerAnisotropy   bool
	BufferDeviceAddress bool
	TimelineSemaphore   bool
	Features13          vkext.Vulkan13Features
}

func missingFeatures(reqs *Requirements, has deviceFeatures) []string {
	var missing []string
	if reqs.SamplerAnisotropy && !has.SamplerAnisotropy {
		missing = append(missing, "samplerAnisotropy")
	}
	if reqs.BufferDeviceAddress && !has.BufferDeviceAddress {
		missing = append(missing, "bufferDeviceAddress")
	}
	if reqs.TimelineSemaphore && !has.TimelineSemaphore {
		missing = append(missing, "timelineSemaphore")
	}
	if reqs.Features13 != nil {
		missing = append(missing, reqs.Features13.Missing(has.Features13)...)
	}
	return missing
}

// queuePriorities returns one priority per requested queue, starting from {1.0, 0.5}
func queuePriorities(queues int) []float32 {
	priorities := make([]float32, queues)
	for i := range priorities {
		switch i {
		case 0:
			priorities[i] = 1.0
		default:
			priorities[i] = 0.5
		}
	}
	return priorities
}
