package main

import (
	"fmt"
	"io"

	"github.com/ARM-software/tracetooltests-sub000/featuredetect"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/core1_2"
	"github.com/vkngwrapper/extensions/v2/khr_shader_atomic_int64"
)

type step struct {
	name string
	run  func(d *featuredetect.Detector, w io.Writer) error
}

var steps = []step{
	{"logic op", logicOp},
	{"draw indirect count", drawIndirectCount},
	{"options chain", optionsChain},
	{"atomic int64 extension", atomicInt64},
	{"shader module", shaderModule},
}

func expect(ok bool, format string, args ...any) error {
	if ok {
		return nil
	}
	return errors.Newf(format, args...)
}

func blendPipeline(logicOp bool) []core1_0.GraphicsPipelineCreateInfo {
	return []core1_0.GraphicsPipelineCreateInfo{
		{ColorBlendState: &core1_0.PipelineColorBlendStateCreateInfo{LogicOpEnabled: logicOp}},
	}
}

func logicOp(d *featuredetect.Detector, w io.Writer) error {
	features := core1_0.PhysicalDeviceFeatures{}
	d.CheckGraphicsPipelines(blendPipeline(false))
	d.AdjustFeatures(&features)
	if err := expect(!features.LogicOp, "logicOp turned on while never requested"); err != nil {
		return err
	}

	features.LogicOp = true
	d.AdjustFeatures(&features)
	if err := expect(!features.LogicOp, "logicOp kept while never used"); err != nil {
		return err
	}

	features.LogicOp = true
	d.CheckGraphicsPipelines(blendPipeline(true))
	d.AdjustFeatures(&features)
	return expect(features.LogicOp, "logicOp dropped while used")
}

func drawIndirectCount(d *featuredetect.Detector, w io.Writer) error {
	features := core1_2.PhysicalDeviceVulkan12Features{}
	adjusted := d.AdjustVulkan12Features(&features)
	if err := expect(len(adjusted) == 0, "adjusted %v with nothing requested", adjusted); err != nil {
		return err
	}

	features.DrawIndirectCount = true
	adjusted = d.AdjustVulkan12Features(&features)
	for _, name := range adjusted {
		fmt.Fprintf(w, "Adjusted %s\n", name)
	}
	if err := expect(len(adjusted) == 1 && !features.DrawIndirectCount, "drawIndirectCount not adjusted, got %v", adjusted); err != nil {
		return err
	}

	features.DrawIndirectCount = true
	d.CmdDrawIndirectCount()
	d.AdjustVulkan12Features(&features)
	if err := expect(features.DrawIndirectCount, "drawIndirectCount dropped while used"); err != nil {
		return err
	}
	return expect(!features.HostQueryReset, "hostQueryReset turned on")
}

func optionsChain(d *featuredetect.Detector, w io.Writer) error {
	second := core1_2.PhysicalDeviceShaderAtomicInt64Features{}
	first := core1_2.PhysicalDeviceVulkan11Features{NextOptions: common.NextOptions{Next: second}}
	root := core1_2.PhysicalDeviceVulkan12Features{NextOptions: common.NextOptions{Next: first}}

	matchRoot := featuredetect.OfType[core1_2.PhysicalDeviceVulkan12Features]()
	matchFirst := featuredetect.OfType[core1_2.PhysicalDeviceVulkan11Features]()
	matchSecond := featuredetect.OfType[core1_2.PhysicalDeviceShaderAtomicInt64Features]()

	checks := []struct {
		what string
		ok   bool
	}{
		{"parent of the root", featuredetect.FindParent(root, matchRoot) == nil},
		{"parent of the first link", matchRoot(featuredetect.FindParent(root, matchFirst))},
		{"parent of the second link", matchFirst(featuredetect.FindParent(root, matchSecond))},
		{"root", matchRoot(featuredetect.Find(root, matchRoot))},
		{"first link", matchFirst(featuredetect.Find(root, matchFirst))},
		{"second link", matchSecond(featuredetect.Find(root, matchSecond))},
	}
	for _, check := range checks {
		if !check.ok {
			return errors.Newf("wrong %s", check.what)
		}
	}
	return nil
}

func atomicInt64(d *featuredetect.Detector, w io.Writer) error {
	extensions := []string{khr_shader_atomic_int64.ExtensionName}
	info := core1_0.DeviceCreateInfo{EnabledExtensionNames: extensions}

	d.CheckDevice(info)
	if err := expect(!d.ShaderAtomicInt64.Load(), "detected without a feature struct"); err != nil {
		return err
	}

	info.Next = core1_2.PhysicalDeviceShaderAtomicInt64Features{}
	d.CheckDevice(info)
	if err := expect(!d.ShaderAtomicInt64.Load(), "detected with all features off"); err != nil {
		return err
	}

	info.Next = core1_2.PhysicalDeviceShaderAtomicInt64Features{ShaderBufferInt64Atomics: true, ShaderSharedInt64Atomics: true}
	d.CheckDevice(info)
	if err := expect(d.ShaderAtomicInt64.Load(), "not detected with features on"); err != nil {
		return err
	}

	_, err := d.AdjustDeviceCreateInfo(&info, extensions)
	if err != nil {
		return err
	}
	if err := expect(info.Next != nil, "feature struct of an enabled extension unlinked"); err != nil {
		return err
	}

	d.ShaderAtomicInt64.Store(false)
	info.Next = core1_2.PhysicalDeviceShaderAtomicInt64Features{}
	d.CheckDevice(info)
	if err := expect(!d.ShaderAtomicInt64.Load(), "detected again with all features off"); err != nil {
		return err
	}

	extensions, removed := d.AdjustDeviceExtensions(extensions)
	if err := expect(len(removed) == 1 && len(extensions) == 0, "extension not removed, kept %v", extensions); err != nil {
		return err
	}

	_, err = d.AdjustDeviceCreateInfo(&info, extensions)
	if err != nil {
		return err
	}
	return expect(info.Next == nil, "feature struct of a removed extension still linked")
}

// int64Module declares the capabilities of a compute shader that reads through buffer
// device addresses
var int64Module = []uint32{
	0x07230203, 0x00010500, 0, 16, 0,
	0x00020011, 1, // OpCapability Shader
	0x00020011, 11, // OpCapability Int64
	0x00020011, 5347, // OpCapability PhysicalStorageBufferAddresses
	0x0003000e, 5348, 1, // OpMemoryModel PhysicalStorageBuffer64 GLSL450
}

func shaderModule(d *featuredetect.Detector, w io.Writer) error {
	d.CheckShaderModule(core1_0.ShaderModuleCreateInfo{Code: int64Module})
	return expect(d.Used(featuredetect.Core10, "shaderInt64"), "shaderInt64 not detected from the shader module")
}

// runSteps stops at the first failing step
func runSteps(d *featuredetect.Detector, w io.Writer) error {
	for _, s := range steps {
		if err := s.run(d, w); err != nil {
			return errors.Wrap(err, s.name)
		}
	}
	return nil
}
