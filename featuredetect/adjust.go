package featuredetect

import (
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/extensions/v2/khr_shader_atomic_int64"
)

const ShaderImageAtomicInt64ExtensionName = "VK_EXT_shader_image_atomic_int64"

type featureBit struct {
	name  string
	value *bool
}

// adjust turns off every requested bit that was never used and returns the names turned off.
// Only bits with detection code behind them are listed by the callers.
func (d *Detector) adjust(scope Scope, bits []featureBit) []string {
	var adjusted []string
	for _, bit := range bits {
		if *bit.value && !d.Used(scope, bit.name) {
			*bit.value = false
			adjusted = append(adjusted, bit.name)
		}
	}
	return adjusted
}

func (d *Detector) AdjustFeatures(features *core1_0.PhysicalDeviceFeatures) []string {
	return d.adjust(Core10, []featureBit{
		{"fullDrawIndexUint32", &features.FullDrawIndexUint32},
		{"dualSrcBlend", &features.DualSrcBlend},
		{"geometryShader", &features.GeometryShader},
		{"tessellationShader", &features.TessellationShader},
		{"sampleRateShading", &features.SampleRateShading},
		{"depthClamp", &features.DepthClamp},
		{"depthBiasClamp", &features.DepthBiasClamp},
		{"wideLines", &features.WideLines},
		{"samplerAnisotropy", &features.SamplerAnisotropy},
		{"fillModeNonSolid", &features.FillModeNonSolid},
		{"depthBounds", &features.DepthBounds},
		{"pipelineStatisticsQuery", &features.PipelineStatisticsQuery},
		{"shaderStorageImageMultisample", &features.ShaderStorageImageMultisample},
		{"logicOp", &features.LogicOp},
		{"alphaToOne", &features.AlphaToOne},
		{"sparseBinding", &features.SparseBinding},
		{"sparseResidencyBuffer", &features.SparseResidencyBuffer},
		{"sparseResidencyImage2D", &features.SparseResidencyImage2D},
		{"sparseResidencyImage3D", &features.SparseResidencyImage3D},
		{"sparseResidency2Samples", &features.SparseResidency2Samples},
		{"sparseResidency4Samples", &features.SparseResidency4Samples},
		{"sparseResidency8Samples", &features.SparseResidency8Samples},
		{"sparseResidency16Samples", &features.SparseResidency16Samples},
		{"sparseResidencyAliased", &features.SparseResidencyAliased},
		{"independentBlend", &features.IndependentBlend},
		{"inheritedQueries", &features.InheritedQueries},
		{"multiViewport", &features.MultiViewport},
		{"imageCubeArray", &features.ImageCubeArray},
		{"shaderImageGatherExtended", &features.ShaderImageGatherExtended},
		{"shaderUniformBufferArrayDynamicIndexing", &features.ShaderUniformBufferArrayDynamicIndexing},
		{"shaderSampledImageArrayDynamicIndexing", &features.ShaderSampledImageArrayDynamicIndexing},
		{"shaderStorageBufferArrayDynamicIndexing", &features.ShaderStorageBufferArrayDynamicIndexing},
		{"shaderStorageImageArrayDynamicIndexing", &features.ShaderStorageImageArrayDynamicIndexing},
		{"shaderClipDistance", &features.ShaderClipDistance},
		{"shaderCullDistance", &features.ShaderCullDistance},
		{"shaderFloat64", &features.ShaderFloat64},
		{"shaderInt64", &features.ShaderInt64},
		{"shaderInt16", &features.ShaderInt16},
		{"shaderResourceMinLod", &features.ShaderResourceMinLod},
		{"shaderResourceResidency", &features.ShaderResourceResidency},
		{"multiDrawIndirect", &features.MultiDrawIndirect},
		{"occlusionQueryPrecise", &features.OcclusionQueryPrecise},
	})
}

func (d *Detector) AdjustVulkan11Features(features *core1_2.PhysicalDeviceVulkan11Features) []string {
	return d.adjust(Core11, []featureBit{
		{"storageBuffer16BitAccess", &features.StorageBuffer16BitAccess},
		{"uniformAndStorageBuffer16BitAccess", &features.UniformAndStorageBuffer16BitAccess},
		{"storagePushConstant16", &features.StoragePushConstant16},
		{"storageInputOutput16", &features.StorageInputOutput16},
		{"variablePointersStorageBuffer", &features.VariablePointersStorageBuffer},
		{"variablePointers", &features.VariablePointers},
		{"shaderDrawParameters", &features.ShaderDrawParameters},
	})
}

func (d *Detector) AdjustVulkan12Features(features *core1_2.PhysicalDeviceVulkan12Features) []string {
	adjusted := d.adjust(Core12, []featureBit{
		{"drawIndirectCount", &features.DrawIndirectCount},
		{"hostQueryReset", &features.HostQueryReset},
		{"samplerMirrorClampToEdge", &features.SamplerMirrorClampToEdge},
		{"bufferDeviceAddress", &features.BufferDeviceAddress},
		{"bufferDeviceAddressCaptureReplay", &features.BufferDeviceAddressCaptureReplay},
		{"timelineSemaphore", &features.TimelineSemaphore},
		{"storageBuffer8BitAccess", &features.StorageBuffer8BitAccess},
		{"uniformAndStorageBuffer8BitAccess", &features.UniformAndStorageBuffer8BitAccess},
		{"storagePushConstant8", &features.StoragePushConstant8},
		{"shaderFloat16", &features.ShaderFloat16},
		{"shaderInt8", &features.ShaderInt8},
		{"shaderInputAttachmentArrayDynamicIndexing", &features.ShaderInputAttachmentArrayDynamicIndexing},
		{"shaderUniformTexelBufferArrayDynamicIndexing", &features.ShaderUniformTexelBufferArrayDynamicIndexing},
		{"shaderStorageTexelBufferArrayDynamicIndexing", &features.ShaderStorageTexelBufferArrayDynamicIndexing},
		{"shaderUniformBufferArrayNonUniformIndexing", &features.ShaderUniformBufferArrayNonUniformIndexing},
		{"shaderSampledImageArrayNonUniformIndexing", &features.ShaderSampledImageArrayNonUniformIndexing},
		{"shaderStorageBufferArrayNonUniformIndexing", &features.ShaderStorageBufferArrayNonUniformIndexing},
		{"shaderStorageImageArrayNonUniformIndexing", &features.ShaderStorageImageArrayNonUniformIndexing},
		{"shaderInputAttachmentArrayNonUniformIndexing", &features.ShaderInputAttachmentArrayNonUniformIndexing},
		{"shaderUniformTexelBufferArrayNonUniformIndexing", &features.ShaderUniformTexelBufferArrayNonUniformIndexing},
		{"shaderStorageTexelBufferArrayNonUniformIndexing", &features.ShaderStorageTexelBufferArrayNonUniformIndexing},
		{"runtimeDescriptorArray", &features.RuntimeDescriptorArray},
		{"vulkanMemoryModel", &features.VulkanMemoryModel},
		{"vulkanMemoryModelDeviceScope", &features.VulkanMemoryModelDeviceScope},
		{"shaderOutputViewportIndex", &features.ShaderOutputViewportIndex},
		{"shaderOutputLayer", &features.ShaderOutputLayer},
	})

	// multi-device addresses depend on plain addresses being used
	if features.BufferDeviceAddressMultiDevice && !d.Used(Core12, "bufferDeviceAddress") {
		features.BufferDeviceAddressMultiDevice = false
		adjusted = append(adjusted, "bufferDeviceAddressMultiDevice")
	}
	return adjusted
}

func (d *Detector) AdjustVulkan13Features(features *vkext.Vulkan13Features) []string {
	return d.adjust(Core13, []featureBit{
		{"dynamicRendering", &features.DynamicRendering},
		{"shaderDemoteToHelperInvocation", &features.ShaderDemoteToHelperInvocation},
		{"shaderIntegerDotProduct", &features.ShaderIntegerDotProduct},
		{"subgroupSizeControl", &features.SubgroupSizeControl},
	})
}

func (d *Detector) extensionUsed() map[string]bool {
	return map[string]bool{
		khr_shader_atomic_int64.ExtensionName: d.ShaderAtomicInt64.Load(),
		ShaderImageAtomicInt64ExtensionName:   d.ShaderImageAtomicInt64.Load(),
		"VK_IMG_filter_cubic":                 d.FilterCubic.Load(),
	}
}

// AdjustDeviceExtensions drops tracked extensions that were never used
func (d *Detector) AdjustDeviceExtensions(extensions []string) (kept []string, removed []string) {
	used := d.extensionUsed()
	kept = make([]string, 0, len(extensions))
	for _, extension := range extensions {
		if inUse, tracked := used[extension]; tracked && !inUse {
			removed = append(removed, extension)
			continue
		}
		kept = append(kept, extension)
	}
	return kept, removed
}

// AdjustDeviceCreateInfo unlinks the feature structs of extensions missing from extensions,
// typically the list AdjustDeviceExtensions kept. It returns the extensions whose structs
// were unlinked.
func (d *Detector) AdjustDeviceCreateInfo(info *core1_0.DeviceCreateInfo, extensions []string) ([]string, error) {
	enabled := make(map[string]bool, len(extensions))
	for _, extension := range extensions {
		enabled[extension] = true
	}

	var unlinked []string
	for _, entry := range []struct {
		extension string
		match     Matcher
	}{
		{khr_shader_atomic_int64.ExtensionName, matchAtomicInt64},
		{ShaderImageAtomicInt64ExtensionName, matchImageAtomicInt64},
	} {
		if enabled[entry.extension] {
			continue
		}

		next, removed, err := Remove(info.Next, entry.match)
		if err != nil {
			return unlinked, err
		}
		if removed {
			info.Next = next
			unlinked = append(unlinked, entry.extension)
		}
	}
	return unlinked, nil
}
