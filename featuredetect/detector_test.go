package featuredetect

import (
	"sync"
	"testing"
	"unsafe"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/CannibalVox/cgoparam"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/extensions/v2/khr_shader_atomic_int64"
)

type chainLink struct {
	ID int

	common.NextOptions
}

func (l chainLink) PopulateCPointer(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	return preallocated, nil
}

func linkID(id int) Matcher {
	return func(link common.Options) bool {
		switch l := link.(type) {
		case chainLink:
			return l.ID == id
		case *chainLink:
			return l.ID == id
		}
		return false
	}
}

func TestLogicOpAdjust(t *testing.T) {
	d := New()

	features := core1_0.PhysicalDeviceFeatures{}
	d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{}}})
	require.Empty(t, d.AdjustFeatures(&features))
	require.False(t, features.LogicOp)

	features.LogicOp = true
	require.Equal(t, []string{"logicOp"}, d.AdjustFeatures(&features))
	require.False(t, features.LogicOp)

	features.LogicOp = true
	d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{LogicOpEnabled: true}}})
	require.Empty(t, d.AdjustFeatures(&features))
	require.True(t, features.LogicOp)
}

func TestDrawIndirectCountAdjust(t *testing.T) {
	d := New()

	features := core1_2.PhysicalDeviceVulkan12Features{}
	require.Empty(t, d.AdjustVulkan12Features(&features))
	require.False(t, features.DrawIndirectCount)
	require.False(t, features.HostQueryReset)

	features.DrawIndirectCount = true
	require.Equal(t, []string{"drawIndirectCount"}, d.AdjustVulkan12Features(&features))
	require.False(t, features.DrawIndirectCount)

	features.DrawIndirectCount = true
	d.CmdDrawIndirectCount()
	require.Empty(t, d.AdjustVulkan12Features(&features))
	require.True(t, features.DrawIndirectCount)
	require.False(t, features.HostQueryReset)
}

func TestBufferDeviceAddressMultiDevice(t *testing.T) {
	d := New()

	features := core1_2.PhysicalDeviceVulkan12Features{BufferDeviceAddress: true, BufferDeviceAddressMultiDevice: true}
	require.Equal(t, []string{"bufferDeviceAddress", "bufferDeviceAddressMultiDevice"}, d.AdjustVulkan12Features(&features))

	features = core1_2.PhysicalDeviceVulkan12Features{BufferDeviceAddress: true, BufferDeviceAddressMultiDevice: true}
	d.GetBufferDeviceAddress()
	require.Empty(t, d.AdjustVulkan12Features(&features))
	require.True(t, features.BufferDeviceAddressMultiDevice)
}

func TestFindInChain(t *testing.T) {
	second := chainLink{ID: 2}
	first := chainLink{ID: 1, NextOptions: common.NextOptions{Next: second}}
	root := chainLink{ID: 0, NextOptions: common.NextOptions{Next: first}}

	require.Nil(t, FindParent(root, linkID(0)))
	require.Equal(t, root, FindParent(root, linkID(1)))
	require.Equal(t, first, FindParent(root, linkID(2)))
	require.Nil(t, FindParent(root, linkID(3)))

	require.Equal(t, root, Find(root, linkID(0)))
	require.Equal(t, first, Find(root, linkID(1)))
	require.Equal(t, second, Find(root, linkID(2)))
	require.Nil(t, Find(root, linkID(3)))
}

func TestRemoveFromChain(t *testing.T) {
	testCases := map[string]struct {
		Remove    int
		Removed   bool
		Remaining []int
	}{
		"Head":    {Remove: 0, Removed: true, Remaining: []int{1, 2}},
		"Middle":  {Remove: 1, Removed: true, Remaining: []int{0, 2}},
		"Tail":    {Remove: 2, Removed: true, Remaining: []int{0, 1}},
		"Missing": {Remove: 5, Removed: false, Remaining: []int{0, 1, 2}},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			second := &chainLink{ID: 2}
			first := chainLink{ID: 1, NextOptions: common.NextOptions{Next: second}}
			head := chainLink{ID: 0, NextOptions: common.NextOptions{Next: first}}

			chain, removed, err := Remove(head, linkID(testCase.Remove))
			require.NoError(t, err)
			require.Equal(t, testCase.Removed, removed)

			var remaining []int
			for link := chain; link != nil; link = link.NextOptionsInChain() {
				switch l := link.(type) {
				case chainLink:
					remaining = append(remaining, l.ID)
				case *chainLink:
					remaining = append(remaining, l.ID)
				}
			}
			require.Equal(t, testCase.Remaining, remaining)

			// the caller's chain is untouched
			require.Equal(t, first, head.Next)
			require.Equal(t, second, first.Next)
		})
	}
}

func TestRemoveAfterBoolFeatures(t *testing.T) {
	bare := &vkext.BoolFeatures{StructureType: 1}

	bare.NextOptions.Next = chainLink{ID: 1}
	chain, removed, err := Remove(bare, linkID(1))
	require.NoError(t, err)
	require.True(t, removed)
	require.Nil(t, chain.NextOptionsInChain())
	require.Equal(t, int32(1), chain.(*vkext.BoolFeatures).StructureType)
	require.NotNil(t, bare.NextOptions.Next)
}

type plainOptions struct{}

func (plainOptions) PopulateCPointer(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	return preallocated, nil
}

func (plainOptions) NextOptionsInChain() common.Options {
	return chainLink{ID: 1}
}

func TestRemoveUnlinkable(t *testing.T) {
	_, removed, err := Remove(plainOptions{}, linkID(1))
	require.Error(t, err)
	require.False(t, removed)
}

func TestAtomicInt64Extension(t *testing.T) {
	d := New()
	extensions := []string{khr_shader_atomic_int64.ExtensionName}

	info := core1_0.DeviceCreateInfo{EnabledExtensionNames: extensions}
	d.CheckDevice(info)
	require.False(t, d.ShaderAtomicInt64.Load())

	info.Next = core1_2.PhysicalDeviceShaderAtomicInt64Features{}
	d.CheckDevice(info)
	require.False(t, d.ShaderAtomicInt64.Load())

	info.Next = core1_2.PhysicalDeviceShaderAtomicInt64Features{ShaderBufferInt64Atomics: true, ShaderSharedInt64Atomics: true}
	d.CheckDevice(info)
	require.True(t, d.ShaderAtomicInt64.Load())

	unlinked, err := d.AdjustDeviceCreateInfo(&info, extensions)
	require.NoError(t, err)
	require.Empty(t, unlinked)
	require.NotNil(t, info.Next)

	d.ShaderAtomicInt64.Store(false)
	info.Next = core1_2.PhysicalDeviceShaderAtomicInt64Features{}
	d.CheckDevice(info)
	require.False(t, d.ShaderAtomicInt64.Load())

	extensions, removed := d.AdjustDeviceExtensions(extensions)
	require.Equal(t, []string{khr_shader_atomic_int64.ExtensionName}, removed)
	require.Empty(t, extensions)

	unlinked, err = d.AdjustDeviceCreateInfo(&info, extensions)
	require.NoError(t, err)
	require.Equal(t, []string{khr_shader_atomic_int64.ExtensionName}, unlinked)
	require.Nil(t, info.Next)
}

func TestExtensionFeatureStructs(t *testing.T) {
	testCases := map[string]struct {
		Next     common.Options
		Detected func(d *Detector) bool
	}{
		"CoreAtomicInt64Pointer": {
			Next:     &core1_2.PhysicalDeviceShaderAtomicInt64Features{ShaderSharedInt64Atomics: true},
			Detected: func(d *Detector) bool { return d.ShaderAtomicInt64.Load() },
		},
		"ExtensionAtomicInt64": {
			Next:     khr_shader_atomic_int64.PhysicalDeviceShaderAtomicInt64Features{ShaderBufferInt64Atomics: true},
			Detected: func(d *Detector) bool { return d.ShaderAtomicInt64.Load() },
		},
		"ImageAtomicInt64": {
			Next: chainLink{NextOptions: common.NextOptions{Next: vkext.BoolFeatures{
				StructureType: StructureTypeShaderImageAtomicInt64Features,
				Values:        []bool{false, true},
			}}},
			Detected: func(d *Detector) bool { return d.ShaderImageAtomicInt64.Load() },
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			d := New()
			d.CheckDevice(core1_0.DeviceCreateInfo{NextOptions: common.NextOptions{Next: testCase.Next}})
			require.True(t, testCase.Detected(d))

			d.Reset()
			require.False(t, testCase.Detected(d))
		})
	}
}

func TestImageAtomicInt64Unlinked(t *testing.T) {
	d := New()
	info := core1_0.DeviceCreateInfo{NextOptions: common.NextOptions{Next: chainLink{
		ID: 7,
		NextOptions: common.NextOptions{Next: vkext.BoolFeatures{
			StructureType: StructureTypeShaderImageAtomicInt64Features,
			Values:        []bool{true, false},
		}},
	}}}

	unlinked, err := d.AdjustDeviceCreateInfo(&info, nil)
	require.NoError(t, err)
	require.Equal(t, []string{ShaderImageAtomicInt64ExtensionName}, unlinked)
	require.Equal(t, chainLink{ID: 7}, info.Next)
}

func spirvModule(instructions ...uint32) []uint32 {
	return append([]uint32{0x07230203, 0x00010000, 0, 5, 0}, instructions...)
}

func TestShaderModuleCapabilities(t *testing.T) {
	d := New()

	d.CheckShaderModule(core1_0.ShaderModuleCreateInfo{Code: toolstest.EmptyComputeShader})
	features := core1_0.PhysicalDeviceFeatures{ShaderFloat64: true, ShaderInt64: true, ShaderInt16: true}
	require.ElementsMatch(t, []string{"shaderFloat64", "shaderInt64", "shaderInt16"}, d.AdjustFeatures(&features))

	d.CheckShaderModule(core1_0.ShaderModuleCreateInfo{Code: spirvModule(
		0x00020011, 10, // OpCapability Float64
		0x00020011, 11, // OpCapability Int64
		0x00030011, 9, 0, // OpCapability Float16, with a stray operand
		0x0003000e, 0, 1, // OpMemoryModel
		0x00020011, 22, // past the memory model, never read
	)})

	features = core1_0.PhysicalDeviceFeatures{ShaderFloat64: true, ShaderInt64: true, ShaderInt16: true}
	require.Equal(t, []string{"shaderInt16"}, d.AdjustFeatures(&features))
	require.Equal(t, core1_0.PhysicalDeviceFeatures{ShaderFloat64: true, ShaderInt64: true}, features)
	require.True(t, d.Used(Core12, "shaderFloat16"))
}

func TestShaderModuleTruncated(t *testing.T) {
	d := New()
	d.CheckShaderModule(core1_0.ShaderModuleCreateInfo{Code: spirvModule(0x00000011)})
	d.CheckShaderModule(core1_0.ShaderModuleCreateInfo{Code: spirvModule(0x00020011)})
	d.CheckShaderModule(core1_0.ShaderModuleCreateInfo{Code: []uint32{0x07230203}})
	require.False(t, d.Used(Core10, "shaderFloat64"))
}

func TestCheckUsage(t *testing.T) {
	testCases := map[string]struct {
		Check   func(d *Detector)
		Scope   Scope
		Feature string
	}{
		"TimelineSemaphore": {
			Check: func(d *Detector) {
				d.CheckSemaphore(core1_0.SemaphoreCreateInfo{NextOptions: common.NextOptions{Next: core1_2.SemaphoreTypeCreateInfo{SemaphoreType: core1_2.SemaphoreTypeTimeline}}})
			},
			Scope: Core12, Feature: "timelineSemaphore",
		},
		"GeometryStage": {
			Check: func(d *Detector) {
				d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{Stages: []core1_0.PipelineShaderStageCreateInfo{{Stage: core1_0.StageGeometry}}}})
			},
			Scope: Core10, Feature: "geometryShader",
		},
		"TessellationStage": {
			Check: func(d *Detector) {
				d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{Stages: []core1_0.PipelineShaderStageCreateInfo{{Stage: core1_0.StageTessellationControl}}}})
			},
			Scope: Core10, Feature: "tessellationShader",
		},
		"VaryingSubgroupSize": {
			Check: func(d *Detector) {
				d.CheckComputePipelines([]core1_0.ComputePipelineCreateInfo{{Stage: core1_0.PipelineShaderStageCreateInfo{Flags: PipelineShaderStageCreateAllowVaryingSubgroupSize}}})
			},
			Scope: Core13, Feature: "subgroupSizeControl",
		},
		"DualSourceBlend": {
			Check: func(d *Detector) {
				d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
					Attachments: []core1_0.PipelineColorBlendAttachmentState{{SrcColorBlendFactor: core1_0.BlendFactorSrc1Color}},
				}}})
			},
			Scope: Core10, Feature: "dualSrcBlend",
		},
		"IndependentBlend": {
			Check: func(d *Detector) {
				d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
					Attachments: []core1_0.PipelineColorBlendAttachmentState{{BlendEnabled: true}, {BlendEnabled: false}},
				}}})
			},
			Scope: Core10, Feature: "independentBlend",
		},
		"WideLines": {
			Check: func(d *Detector) {
				d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{LineWidth: 2}}})
			},
			Scope: Core10, Feature: "wideLines",
		},
		"FillModeNonSolid": {
			Check: func(d *Detector) {
				d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{RasterizationState: &core1_0.PipelineRasterizationStateCreateInfo{LineWidth: 1, PolygonMode: core1_0.PolygonModeLine}}})
			},
			Scope: Core10, Feature: "fillModeNonSolid",
		},
		"MultiViewport": {
			Check: func(d *Detector) {
				d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{ViewportState: &core1_0.PipelineViewportStateCreateInfo{Viewports: make([]core1_0.Viewport, 2)}}})
			},
			Scope: Core10, Feature: "multiViewport",
		},
		"DynamicViewports": {
			Check: func(d *Detector) { d.CmdSetViewport(1, 1) },
			Scope: Core10, Feature: "multiViewport",
		},
		"SampleRateShading": {
			Check: func(d *Detector) {
				d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{MultisampleState: &core1_0.PipelineMultisampleStateCreateInfo{SampleShadingEnable: true}}})
			},
			Scope: Core10, Feature: "sampleRateShading",
		},
		"DepthBounds": {
			Check: func(d *Detector) {
				d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{DepthStencilState: &core1_0.PipelineDepthStencilStateCreateInfo{DepthBoundsTestEnable: true}}})
			},
			Scope: Core10, Feature: "depthBounds",
		},
		"Anisotropy": {
			Check: func(d *Detector) { d.CheckSampler(core1_0.SamplerCreateInfo{AnisotropyEnable: true}) },
			Scope: Core10, Feature: "samplerAnisotropy",
		},
		"MirrorClampToEdge": {
			Check: func(d *Detector) {
				d.CheckSampler(core1_0.SamplerCreateInfo{AddressModeW: core1_2.SamplerAddressModeMirrorClampToEdge})
			},
			Scope: Core12, Feature: "samplerMirrorClampToEdge",
		},
		"PipelineStatistics": {
			Check: func(d *Detector) {
				d.CheckQueryPool(core1_0.QueryPoolCreateInfo{QueryType: core1_0.QueryTypePipelineStatistics, PipelineStatistics: 1})
			},
			Scope: Core10, Feature: "pipelineStatisticsQuery",
		},
		"SparseImage4Samples": {
			Check: func(d *Detector) {
				d.CheckImage(core1_0.ImageCreateInfo{Flags: core1_0.ImageCreateSparseResidency, ImageType: core1_0.ImageType2D, Samples: core1_0.Samples4})
			},
			Scope: Core10, Feature: "sparseResidency4Samples",
		},
		"SparseBuffer": {
			Check: func(d *Detector) { d.CheckBuffer(core1_0.BufferCreateInfo{Flags: core1_0.BufferCreateSparseResidency}) },
			Scope: Core10, Feature: "sparseResidencyBuffer",
		},
		"CubeArrayView": {
			Check: func(d *Detector) { d.CheckImageView(core1_0.ImageViewCreateInfo{ViewType: core1_0.ImageViewTypeCubeArray}) },
			Scope: Core10, Feature: "imageCubeArray",
		},
		"InheritedQueries": {
			Check: func(d *Detector) {
				d.CheckBeginCommandBuffer(core1_0.CommandBufferBeginInfo{InheritanceInfo: &core1_0.CommandBufferInheritanceInfo{OcclusionQueryEnable: true}}, core1_0.CommandBufferLevelSecondary)
			},
			Scope: Core10, Feature: "inheritedQueries",
		},
		"MultiDrawIndirect": {
			Check: func(d *Detector) { d.CmdDrawIndirect(2) },
			Scope: Core10, Feature: "multiDrawIndirect",
		},
		"PreciseOcclusion": {
			Check: func(d *Detector) { d.CmdBeginQuery(core1_0.QueryControlPrecise) },
			Scope: Core10, Feature: "occlusionQueryPrecise",
		},
		"Uint32Indices": {
			Check: func(d *Detector) { d.CmdBindIndexBuffer(core1_0.IndexTypeUInt32) },
			Scope: Core10, Feature: "fullDrawIndexUint32",
		},
		"HostQueryReset": {
			Check: func(d *Detector) { d.ResetQueryPool() },
			Scope: Core12, Feature: "hostQueryReset",
		},
		"DynamicRendering": {
			Check: func(d *Detector) { d.CmdBeginRendering() },
			Scope: Core13, Feature: "dynamicRendering",
		},
		"DepthBiasClamp": {
			Check: func(d *Detector) { d.CmdSetDepthBias(0.5) },
			Scope: Core10, Feature: "depthBiasClamp",
		},
		"CaptureReplay": {
			Check: func(d *Detector) { d.GetBufferOpaqueCaptureAddress() },
			Scope: Core12, Feature: "bufferDeviceAddressCaptureReplay",
		},
	}

	for name, testCase := range testCases {
		t.Run(name, func(t *testing.T) {
			d := New()
			require.False(t, d.Used(testCase.Scope, testCase.Feature))
			testCase.Check(d)
			require.True(t, d.Used(testCase.Scope, testCase.Feature))
		})
	}
}

func TestCheckNotUsed(t *testing.T) {
	d := New()
	d.CheckSemaphore(core1_0.SemaphoreCreateInfo{NextOptions: common.NextOptions{Next: &core1_2.SemaphoreTypeCreateInfo{SemaphoreType: core1_2.SemaphoreTypeBinary}}})
	d.CheckBeginCommandBuffer(core1_0.CommandBufferBeginInfo{InheritanceInfo: &core1_0.CommandBufferInheritanceInfo{OcclusionQueryEnable: true}}, core1_0.CommandBufferLevelPrimary)
	d.CmdSetViewport(0, 1)
	d.CmdDrawIndirect(1)
	d.CmdSetLineWidth(1)
	d.CheckGraphicsPipelines([]core1_0.GraphicsPipelineCreateInfo{{ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{
		Attachments: []core1_0.PipelineColorBlendAttachmentState{{BlendEnabled: true}, {BlendEnabled: true}},
	}}})

	features := core1_0.PhysicalDeviceFeatures{InheritedQueries: true, MultiViewport: true, MultiDrawIndirect: true, WideLines: true, IndependentBlend: true}
	require.ElementsMatch(t, []string{"inheritedQueries", "multiViewport", "multiDrawIndirect", "wideLines", "independentBlend"}, d.AdjustFeatures(&features))
	require.False(t, d.Used(Core12, "timelineSemaphore"))
}

func TestFilterCubicExtension(t *testing.T) {
	d := New()
	extensions := []string{"VK_IMG_filter_cubic", "VK_KHR_maintenance1"}

	kept, removed := d.AdjustDeviceExtensions(extensions)
	require.Equal(t, []string{"VK_KHR_maintenance1"}, kept)
	require.Equal(t, []string{"VK_IMG_filter_cubic"}, removed)

	d.CmdBlitImage(FilterCubic)
	kept, removed = d.AdjustDeviceExtensions(extensions)
	require.Equal(t, extensions, kept)
	require.Empty(t, removed)
}

func TestVulkan13Adjust(t *testing.T) {
	d := New()
	d.CmdBeginRendering()

	features := vkext.Vulkan13Features{DynamicRendering: true, SubgroupSizeControl: true, Synchronization2: true}
	require.Equal(t, []string{"subgroupSizeControl"}, d.AdjustVulkan13Features(&features))
	require.Equal(t, vkext.Vulkan13Features{DynamicRendering: true, Synchronization2: true}, features)
}

func TestVulkan11Adjust(t *testing.T) {
	d := New()
	d.CheckShaderModule(core1_0.ShaderModuleCreateInfo{Code: spirvModule(0x00020011, 4427)})

	features := core1_2.PhysicalDeviceVulkan11Features{ShaderDrawParameters: true, VariablePointers: true, Multiview: true}
	require.Equal(t, []string{"variablePointers"}, d.AdjustVulkan11Features(&features))
	require.Equal(t, core1_2.PhysicalDeviceVulkan11Features{ShaderDrawParameters: true, Multiview: true}, features)
}

func TestConcurrentUse(t *testing.T) {
	d := New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				d.CmdDrawIndirectCount()
				d.CmdBeginQuery(core1_0.QueryControlPrecise)
			}
		}()
	}
	wg.Wait()

	require.True(t, d.Used(Core12, "drawIndirectCount"))
	require.True(t, d.Used(Core10, "occlusionQueryPrecise"))
}

func TestScopeNames(t *testing.T) {
	require.Equal(t, "VkPhysicalDeviceFeatures", Core10.String())
	require.Equal(t, "VkPhysicalDeviceVulkan13Features", Core13.String())
}
