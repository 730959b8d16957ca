package featuredetect

import (
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/extensions/v2/khr_shader_atomic_int64"
)

const (
	// VK_EXT_shader_image_atomic_int64 has no binding; its feature struct travels as a BoolFeatures
	StructureTypeShaderImageAtomicInt64Features int32 = 1000234000

	FilterCubic core1_0.Filter = 1000015000

	PipelineShaderStageCreateAllowVaryingSubgroupSize core1_0.PipelineShaderStageCreateFlags = 0x1
)

var dualSourceFactors = map[core1_0.BlendFactor]bool{
	core1_0.BlendFactorSrc1Color:         true,
	core1_0.BlendFactorOneMinusSrc1Color: true,
	core1_0.BlendFactorSrc1Alpha:         true,
	core1_0.BlendFactorOneMinusSrc1Alpha: true,
}

func matchBoolFeatures(sType int32) Matcher {
	return func(link common.Options) bool {
		switch features := link.(type) {
		case vkext.BoolFeatures:
			return features.StructureType == sType
		case *vkext.BoolFeatures:
			return features.StructureType == sType
		}
		return false
	}
}

var (
	matchAtomicInt64 = AnyOf(
		OfType[core1_2.PhysicalDeviceShaderAtomicInt64Features](),
		OfType[*core1_2.PhysicalDeviceShaderAtomicInt64Features](),
		OfType[khr_shader_atomic_int64.PhysicalDeviceShaderAtomicInt64Features](),
		OfType[*khr_shader_atomic_int64.PhysicalDeviceShaderAtomicInt64Features](),
	)
	matchImageAtomicInt64 = matchBoolFeatures(StructureTypeShaderImageAtomicInt64Features)
	matchSemaphoreType    = AnyOf(
		OfType[core1_2.SemaphoreTypeCreateInfo](),
		OfType[*core1_2.SemaphoreTypeCreateInfo](),
	)
)

func anyTrue(values []bool) bool {
	for _, value := range values {
		if value {
			return true
		}
	}
	return false
}

func (d *Detector) CheckShaderModule(info core1_0.ShaderModuleCreateInfo) {
	d.scanCapabilities(info.Code)
}

func (d *Detector) CheckSemaphore(info core1_0.SemaphoreCreateInfo) {
	var semaphoreType core1_2.SemaphoreType
	switch typeInfo := Find(info.Next, matchSemaphoreType).(type) {
	case core1_2.SemaphoreTypeCreateInfo:
		semaphoreType = typeInfo.SemaphoreType
	case *core1_2.SemaphoreTypeCreateInfo:
		semaphoreType = typeInfo.SemaphoreType
	default:
		return
	}

	if semaphoreType == core1_2.SemaphoreTypeTimeline {
		d.Use(Core12, "timelineSemaphore")
	}
}

func (d *Detector) checkShaderStage(stage core1_0.PipelineShaderStageCreateInfo) {
	switch stage.Stage {
	case core1_0.StageGeometry:
		d.Use(Core10, "geometryShader")
	case core1_0.StageTessellationControl, core1_0.StageTessellationEvaluation:
		d.Use(Core10, "tessellationShader")
	}

	if stage.Flags&PipelineShaderStageCreateAllowVaryingSubgroupSize != 0 {
		d.Use(Core13, "subgroupSizeControl")
	}
}

func (d *Detector) checkBlendAttachment(attachment core1_0.PipelineColorBlendAttachmentState) {
	if dualSourceFactors[attachment.SrcColorBlendFactor] || dualSourceFactors[attachment.DstColorBlendFactor] ||
		dualSourceFactors[attachment.SrcAlphaBlendFactor] || dualSourceFactors[attachment.DstAlphaBlendFactor] {
		d.Use(Core10, "dualSrcBlend")
	}
}

func (d *Detector) checkColorBlend(info *core1_0.PipelineColorBlendStateCreateInfo) {
	if info.LogicOpEnabled {
		d.Use(Core10, "logicOp")
	}

	for i, attachment := range info.Attachments {
		if i > 0 && attachment != info.Attachments[i-1] {
			d.Use(Core10, "independentBlend")
		}
		d.checkBlendAttachment(attachment)
	}
}

func (d *Detector) CheckGraphicsPipelines(infos []core1_0.GraphicsPipelineCreateInfo) {
	for _, info := range infos {
		for _, stage := range info.Stages {
			d.checkShaderStage(stage)
		}

		if info.RasterizationState != nil {
			if info.RasterizationState.DepthBiasClamp != 0 {
				d.Use(Core10, "depthBiasClamp")
			}
			if info.RasterizationState.LineWidth != 1 {
				d.Use(Core10, "wideLines")
			}
			if info.RasterizationState.DepthClampEnable {
				d.Use(Core10, "depthClamp")
			}
			if info.RasterizationState.PolygonMode == core1_0.PolygonModePoint || info.RasterizationState.PolygonMode == core1_0.PolygonModeLine {
				d.Use(Core10, "fillModeNonSolid")
			}
		}
		if info.ColorBlendState != nil {
			d.checkColorBlend(info.ColorBlendState)
		}
		if info.MultisampleState != nil {
			if info.MultisampleState.AlphaToOneEnable {
				d.Use(Core10, "alphaToOne")
			}
			if info.MultisampleState.SampleShadingEnable {
				d.Use(Core10, "sampleRateShading")
			}
		}
		if info.DepthStencilState != nil && info.DepthStencilState.DepthBoundsTestEnable {
			d.Use(Core10, "depthBounds")
		}
		if info.ViewportState != nil && (len(info.ViewportState.Viewports) > 1 || len(info.ViewportState.Scissors) > 1) {
			d.Use(Core10, "multiViewport")
		}
	}
}

func (d *Detector) CheckComputePipelines(infos []core1_0.ComputePipelineCreateInfo) {
	for _, info := range infos {
		d.checkShaderStage(info.Stage)
	}
}

// CheckDevice notes extension feature structs the application chained into device creation
func (d *Detector) CheckDevice(info core1_0.DeviceCreateInfo) {
	switch features := Find(info.Next, matchAtomicInt64).(type) {
	case core1_2.PhysicalDeviceShaderAtomicInt64Features:
		if features.ShaderBufferInt64Atomics || features.ShaderSharedInt64Atomics {
			d.ShaderAtomicInt64.Store(true)
		}
	case *core1_2.PhysicalDeviceShaderAtomicInt64Features:
		if features.ShaderBufferInt64Atomics || features.ShaderSharedInt64Atomics {
			d.ShaderAtomicInt64.Store(true)
		}
	case khr_shader_atomic_int64.PhysicalDeviceShaderAtomicInt64Features:
		if features.ShaderBufferInt64Atomics || features.ShaderSharedInt64Atomics {
			d.ShaderAtomicInt64.Store(true)
		}
	case *khr_shader_atomic_int64.PhysicalDeviceShaderAtomicInt64Features:
		if features.ShaderBufferInt64Atomics || features.ShaderSharedInt64Atomics {
			d.ShaderAtomicInt64.Store(true)
		}
	}

	switch features := Find(info.Next, matchImageAtomicInt64).(type) {
	case vkext.BoolFeatures:
		if anyTrue(features.Values) {
			d.ShaderImageAtomicInt64.Store(true)
		}
	case *vkext.BoolFeatures:
		if anyTrue(features.Values) {
			d.ShaderImageAtomicInt64.Store(true)
		}
	}
}

func (d *Detector) CheckSampler(info core1_0.SamplerCreateInfo) {
	if info.AnisotropyEnable {
		d.Use(Core10, "samplerAnisotropy")
	}
	if info.AddressModeU == core1_2.SamplerAddressModeMirrorClampToEdge ||
		info.AddressModeV == core1_2.SamplerAddressModeMirrorClampToEdge ||
		info.AddressModeW == core1_2.SamplerAddressModeMirrorClampToEdge {
		d.Use(Core12, "samplerMirrorClampToEdge")
	}
	if info.MagFilter == FilterCubic || info.MinFilter == FilterCubic {
		d.FilterCubic.Store(true)
	}
}

func (d *Detector) CheckQueryPool(info core1_0.QueryPoolCreateInfo) {
	if info.QueryType == core1_0.QueryTypePipelineStatistics && info.PipelineStatistics != 0 {
		d.Use(Core10, "pipelineStatisticsQuery")
	}
}

var sparseSampleFeatures = map[core1_0.SampleCountFlags]string{
	core1_0.Samples1:  "sparseResidencyImage2D",
	core1_0.Samples2:  "sparseResidency2Samples",
	core1_0.Samples4:  "sparseResidency4Samples",
	core1_0.Samples8:  "sparseResidency8Samples",
	core1_0.Samples16: "sparseResidency16Samples",
}

func (d *Detector) CheckImage(info core1_0.ImageCreateInfo) {
	if info.Flags&core1_0.ImageCreateSparseResidency != 0 {
		switch info.ImageType {
		case core1_0.ImageType2D:
			if name, ok := sparseSampleFeatures[info.Samples]; ok {
				d.Use(Core10, name)
			}
		case core1_0.ImageType3D:
			d.Use(Core10, "sparseResidencyImage3D")
		}
	}
	if info.Flags&core1_0.ImageCreateSparseBinding != 0 {
		d.Use(Core10, "sparseBinding")
	}
	if info.Flags&core1_0.ImageCreateSparseAliased != 0 {
		d.Use(Core10, "sparseResidencyAliased")
	}
	if info.Usage&core1_0.ImageUsageStorage != 0 && info.Samples != core1_0.Samples1 {
		d.Use(Core10, "shaderStorageImageMultisample")
	}
}

func (d *Detector) CheckBuffer(info core1_0.BufferCreateInfo) {
	if info.Flags&core1_0.BufferCreateSparseBinding != 0 {
		d.Use(Core10, "sparseBinding")
	}
	if info.Flags&core1_0.BufferCreateSparseResidency != 0 {
		d.Use(Core10, "sparseResidencyBuffer")
	}
	if info.Flags&core1_0.BufferCreateSparseAliased != 0 {
		d.Use(Core10, "sparseResidencyAliased")
	}
}

func (d *Detector) CheckImageView(info core1_0.ImageViewCreateInfo) {
	if info.ViewType == core1_0.ImageViewTypeCubeArray {
		d.Use(Core10, "imageCubeArray")
	}
}

// CheckBeginCommandBuffer needs the level because inheritance info is garbage on primaries
func (d *Detector) CheckBeginCommandBuffer(info core1_0.CommandBufferBeginInfo, level core1_0.CommandBufferLevel) {
	if level != core1_0.CommandBufferLevelSecondary || info.InheritanceInfo == nil {
		return
	}
	if info.InheritanceInfo.OcclusionQueryEnable || info.InheritanceInfo.PipelineStatistics != 0 {
		d.Use(Core10, "inheritedQueries")
	}
}

func (d *Detector) GetBufferDeviceAddress() {
	d.Use(Core12, "bufferDeviceAddress")
}

func (d *Detector) GetBufferOpaqueCaptureAddress() {
	d.Use(Core12, "bufferDeviceAddressCaptureReplay")
}

func (d *Detector) CmdSetLineWidth(lineWidth float32) {
	if lineWidth != 1 {
		d.Use(Core10, "wideLines")
	}
}

func (d *Detector) CmdSetDepthBias(depthBiasClamp float32) {
	if depthBiasClamp != 0 {
		d.Use(Core10, "depthBiasClamp")
	}
}

// CmdDrawIndirect covers both the indexed and non-indexed draws
func (d *Detector) CmdDrawIndirect(drawCount int) {
	if drawCount > 1 {
		d.Use(Core10, "multiDrawIndirect")
	}
}

func (d *Detector) CmdBeginQuery(flags core1_0.QueryControlFlags) {
	if flags&core1_0.QueryControlPrecise != 0 {
		d.Use(Core10, "occlusionQueryPrecise")
	}
}

// CmdDrawIndirectCount covers both the indexed and non-indexed draws
func (d *Detector) CmdDrawIndirectCount() {
	d.Use(Core12, "drawIndirectCount")
}

func (d *Detector) CmdBindIndexBuffer(indexType core1_0.IndexType) {
	// 32-bit indices may stay below the limit, but there is no cheap way to tell
	if indexType == core1_0.IndexTypeUInt32 {
		d.Use(Core10, "fullDrawIndexUint32")
	}
}

func (d *Detector) ResetQueryPool() {
	d.Use(Core12, "hostQueryReset")
}

func (d *Detector) CmdBeginRendering() {
	d.Use(Core13, "dynamicRendering")
}

// CmdSetViewport covers scissors as well
func (d *Detector) CmdSetViewport(first, count int) {
	if first != 0 || count != 1 {
		d.Use(Core10, "multiViewport")
	}
}

func (d *Detector) CmdBlitImage(filter core1_0.Filter) {
	if filter == FilterCubic {
		d.FilterCubic.Store(true)
	}
}
