// vulkan_pipeline_executable_properties builds a pipeline that captures statistics and internal
// representations, then lists its executables through VK_KHR_pipeline_executable_properties
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// printExecutables writes one "<label> <index>: <name> - <description>" line per entry
func printExecutables(w io.Writer, label string, executables []vkext.PipelineExecutable) {
	for i, executable := range executables {
		fmt.Fprintf(w, "%s %d: %s - %s\n", label, i, executable.Name, executable.Description)
	}
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:       common.Vulkan1_2,
		DeviceExtensions: []string{vkext.PipelineExecutablePropertiesExtensionName},
		ExtensionFeatures: vkext.BoolFeatures{
			StructureType: vkext.StructureTypePipelineExecutablePropertiesFeatures,
			Values:        []bool{true},
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_pipeline_executable_properties", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	properties, err := vkext.LoadPipelineExecutableProperties(ctx.Device)
	if err != nil {
		return err
	}

	ctx.Bench.StartIteration()

	shader, err := ctx.CreateShaderModule(toolstest.EmptyComputeShader)
	if err != nil {
		return err
	}
	defer shader.Destroy(nil)

	pipelineLayout, res, err := ctx.Device.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer pipelineLayout.Destroy(nil)

	pipelines, res, err := ctx.Device.CreateComputePipelines(nil, nil, []core1_0.ComputePipelineCreateInfo{
		{
			Flags: vkext.PipelineCreateCaptureStatistics | vkext.PipelineCreateCaptureInternalRepresentations,
			Stage: core1_0.PipelineShaderStageCreateInfo{
				Stage:  core1_0.StageCompute,
				Module: shader,
				Name:   "main",
			},
			Layout:            pipelineLayout,
			BasePipelineIndex: -1,
		},
	})
	if err := toolstest.Check(res, err); err != nil {
		return errors.Wrap(err, "creating compute pipeline")
	}
	pipeline := pipelines[0]
	defer pipeline.Destroy(nil)

	executables, res := properties.Executables(pipeline)
	if err := toolstest.Check(res, nil); err != nil {
		return err
	}
	printExecutables(os.Stdout, "Executable", executables)

	if len(executables) > 0 {
		statistics, res := properties.Statistics(pipeline, 0)
		if err := toolstest.Check(res, nil); err != nil {
			return err
		}
		printExecutables(os.Stdout, "Statistic", statistics)

		representations, res := properties.InternalRepresentations(pipeline, 0)
		if err := toolstest.Check(res, nil); err != nil {
			return err
		}
		printExecutables(os.Stdout, "InternalRep", representations)
	}

	ctx.Bench.StopIteration()
	return nil
}
