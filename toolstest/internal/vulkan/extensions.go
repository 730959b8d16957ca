package vulkan

import (
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_1"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v2/khr_bind_memory2"
	khr_bind_memory2_shim "github.com/vkngwrapper/extensions/v2/khr_bind_memory2/shim"
	"github.com/vkngwrapper/extensions/v2/khr_buffer_device_address"
	khr_buffer_device_address_shim "github.com/vkngwrapper/extensions/v2/khr_buffer_device_address/shim"
	"github.com/vkngwrapper/extensions/v2/khr_get_memory_requirements2"
	khr_get_memory_requirements2_shim "github.com/vkngwrapper/extensions/v2/khr_get_memory_requirements2/shim"
	"github.com/vkngwrapper/extensions/v2/khr_get_physical_device_properties2"
	khr_get_physical_device_properties2_shim "github.com/vkngwrapper/extensions/v2/khr_get_physical_device_properties2/shim"
)

// ExtensionData collects the promoted core interfaces or extension shims a program can use
// for functionality that moved into core over time
type ExtensionData struct {
	GetPhysicalDeviceProperties2 khr_get_physical_device_properties2_shim.Shim
	DebugUtils                   ext_debug_utils.Extension

	GetMemoryRequirements khr_get_memory_requirements2_shim.Shim
	BindMemory2           khr_bind_memory2_shim.Shim
	BufferDeviceAddress   khr_buffer_device_address_shim.Shim
	Device11              core1_1.Device
	Device12              core1_2.Device
}

// NewExtensionData fills in the instance-side capabilities. AttachDevice must be called once
// the logical device exists.
func NewExtensionData(instance core1_0.Instance, physicalDevice core1_0.PhysicalDevice) *ExtensionData {
	data := &ExtensionData{}

	physicalDevice11 := core1_1.PromoteInstanceScopedPhysicalDevice(physicalDevice)
	if physicalDevice11 != nil {
		// Core 1.1 active on the instance side - that means we can use khr_get_physical_device_properties2
		data.GetPhysicalDeviceProperties2 = physicalDevice11
	}

	// khr_get_physical_device_properties2 if core 1.1 is not active
	if data.GetPhysicalDeviceProperties2 == nil && instance.IsInstanceExtensionActive(khr_get_physical_device_properties2.ExtensionName) {
		extension := khr_get_physical_device_properties2.CreateExtensionFromInstance(instance)
		data.GetPhysicalDeviceProperties2 = khr_get_physical_device_properties2_shim.NewShim(extension, physicalDevice)
	}

	if instance.IsInstanceExtensionActive(ext_debug_utils.ExtensionName) {
		data.DebugUtils = ext_debug_utils.CreateExtensionFromInstance(instance)
	}

	return data
}

func (d *ExtensionData) AttachDevice(device core1_0.Device) {
	device11 := core1_1.PromoteDevice(device)
	if device11 != nil {
		// Core 1.1 active - that means we can use khr_get_memory_requirements2 and khr_bind_memory2
		d.Device11 = device11
		d.BindMemory2 = device11
		d.GetMemoryRequirements = device11
	}

	device12 := core1_2.PromoteDevice(device)
	if device12 != nil {
		// Core 1.2 active - that means we can use khr_buffer_device_address
		d.Device12 = device12
		d.BufferDeviceAddress = device12
	}

	// khr_bind_memory2 if core 1.1 is not active
	if d.BindMemory2 == nil && device.IsDeviceExtensionActive(khr_bind_memory2.ExtensionName) {
		extension := khr_bind_memory2.CreateExtensionFromDevice(device)
		d.BindMemory2 = khr_bind_memory2_shim.NewShim(device, extension)
	}

	// khr_get_memory_requirements2 if core 1.1 is not active
	if d.GetMemoryRequirements == nil && device.IsDeviceExtensionActive(khr_get_memory_requirements2.ExtensionName) {
		extension := khr_get_memory_requirements2.CreateExtensionFromDevice(device)
		d.GetMemoryRequirements = khr_get_memory_requirements2_shim.NewShim(extension, device)
	}

	// khr_buffer_device_address if core 1.2 is not active
	if d.BufferDeviceAddress == nil && device.IsDeviceExtensionActive(khr_buffer_device_address.ExtensionName) {
		extension := khr_buffer_device_address.CreateExtensionFromDevice(device)
		d.BufferDeviceAddress = khr_buffer_device_address_shim.NewShim(extension, device)
	}
}
