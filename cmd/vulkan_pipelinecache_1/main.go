// vulkan_pipelinecache_1 builds the same compute pipeline through an empty pipeline cache, a cache
// seeded from the first one's data and a cache merged from both
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

const (
	width     = 640
	height    = 480
	pixelSize = 4 * 4
)

type resources struct {
	ctx *toolstest.Context

	shader         core1_0.ShaderModule
	setLayout      core1_0.DescriptorSetLayout
	pipelineLayout core1_0.PipelineLayout
	pipeline       core1_0.Pipeline
}

func (r *resources) createPipeline(cache core1_0.PipelineCache) error {
	pipelines, _, err := r.ctx.Device.CreateComputePipelines(cache, nil, []core1_0.ComputePipelineCreateInfo{
		{
			Stage: core1_0.PipelineShaderStageCreateInfo{
				Stage:  core1_0.StageCompute,
				Module: r.shader,
				Name:   "main",
			},
			Layout:            r.pipelineLayout,
			BasePipelineIndex: -1,
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating compute pipeline")
	}

	r.pipeline = pipelines[0]
	return nil
}

func (r *resources) destroyPipeline() {
	if r.pipeline != nil {
		r.pipeline.Destroy(nil)
		r.pipeline = nil
	}
}

func (r *resources) createCache(initialData []byte) (core1_0.PipelineCache, error) {
	cache, _, err := r.ctx.Device.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: initialData,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating pipeline cache")
	}
	return cache, nil
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_pipelinecache_1", pflag.ContinueOnError)
	imageOutput := flags.BoolP("image-output", "i", false, "Save an image of the output to disk")
	cacheFile := flags.StringP("cache-file", "C", "", "Seed the merged cache from this file when it exists, and save the merged cache data to it")

	reqs := &toolstest.Requirements{
		Flags: flags,
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_pipelinecache_1", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	r := &resources{ctx: ctx}
	queue := ctx.Queue(0)

	var seed []byte
	if *cacheFile != "" && toolstest.ExistsBlob(*cacheFile) {
		seed, err = toolstest.LoadBlob(*cacheFile)
		if err != nil {
			return err
		}
	}

	cache1, err := r.createCache(nil)
	if err != nil {
		return err
	}
	defer cache1.Destroy(nil)

	cache3, err := r.createCache(seed)
	if err != nil {
		return err
	}
	defer cache3.Destroy(nil)

	buffer, err := ctx.CreateBuffer(width*height*pixelSize, core1_0.BufferUsageStorageBuffer)
	if err != nil {
		return err
	}
	defer buffer.Destroy(nil)

	requirements := buffer.MemoryRequirements()
	memoryTypeIndex, err := ctx.FindMemoryType(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return err
	}

	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return err
	}
	defer ctx.FreeMemory(memory)

	err = ctx.BindBuffer(buffer, memory, 0, nil)
	if err != nil {
		return err
	}

	r.setLayout, _, err = ctx.Device.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: []core1_0.DescriptorSetLayoutBinding{
			{
				Binding:         0,
				DescriptorType:  core1_0.DescriptorTypeStorageBuffer,
				DescriptorCount: 1,
				StageFlags:      core1_0.StageCompute,
			},
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating descriptor set layout")
	}
	defer r.setLayout.Destroy(nil)

	descriptorPool, _, err := ctx.Device.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets: 1,
		PoolSizes: []core1_0.DescriptorPoolSize{
			{Type: core1_0.DescriptorTypeStorageBuffer, DescriptorCount: 1},
		},
	})
	if err != nil {
		return errors.Wrap(err, "creating descriptor pool")
	}
	defer descriptorPool.Destroy(nil)

	sets, _, err := ctx.Device.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: descriptorPool,
		SetLayouts:     []core1_0.DescriptorSetLayout{r.setLayout},
	})
	if err != nil {
		return errors.Wrap(err, "allocating descriptor set")
	}

	err = ctx.Device.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
		{
			DstSet:         sets[0],
			DstBinding:     0,
			DescriptorType: core1_0.DescriptorTypeStorageBuffer,
			BufferInfo: []core1_0.DescriptorBufferInfo{
				{Buffer: buffer, Offset: 0, Range: width * height * pixelSize},
			},
		},
	}, nil)
	if err != nil {
		return errors.Wrap(err, "updating descriptor set")
	}

	r.shader, err = ctx.CreateShaderModule(toolstest.EmptyComputeShader)
	if err != nil {
		return err
	}
	defer r.shader.Destroy(nil)

	r.pipelineLayout, _, err = ctx.Device.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{r.setLayout},
	})
	if err != nil {
		return errors.Wrap(err, "creating pipeline layout")
	}
	defer r.pipelineLayout.Destroy(nil)
	defer r.destroyPipeline()

	err = r.createPipeline(cache1)
	if err != nil {
		return err
	}

	blob, _, err := cache1.CacheData()
	if err != nil {
		return errors.Wrap(err, "reading pipeline cache data")
	}
	ctx.Logger.Debug("pipeline cache data", slog.Int("size", len(blob)))

	cache2, err := r.createCache(blob)
	if err != nil {
		return err
	}
	defer cache2.Destroy(nil)

	r.destroyPipeline()
	err = r.createPipeline(cache2)
	if err != nil {
		return err
	}
	r.destroyPipeline()

	err = toolstest.Check(cache3.MergePipelineCaches([]core1_0.PipelineCache{cache1, cache2}))
	if err != nil {
		return errors.Wrap(err, "merging pipeline caches")
	}

	err = r.createPipeline(cache3)
	if err != nil {
		return err
	}

	groupsX := (width + toolstest.ComputeWorkgroupSize - 1) / toolstest.ComputeWorkgroupSize
	groupsY := (height + toolstest.ComputeWorkgroupSize - 1) / toolstest.ComputeWorkgroupSize
	err = ctx.SubmitOnce(queue, func(commandBuffer core1_0.CommandBuffer) error {
		commandBuffer.CmdBindPipeline(core1_0.PipelineBindPointCompute, r.pipeline)
		commandBuffer.CmdBindDescriptorSets(core1_0.PipelineBindPointCompute, r.pipelineLayout, 0, sets, nil)
		commandBuffer.CmdDispatch(groupsX, groupsY, 1)
		return nil
	})
	if err != nil {
		return err
	}

	if *imageOutput {
		err = ctx.SaveImage("mandelbrot.png", memory, 0, width, height)
		if err != nil {
			return err
		}
	}

	if *cacheFile != "" {
		merged, _, err := cache3.CacheData()
		if err != nil {
			return errors.Wrap(err, "reading merged pipeline cache data")
		}
		err = toolstest.SaveBlob(*cacheFile, merged)
		if err != nil {
			return err
		}
		fmt.Printf("Saved %d bytes of pipeline cache data to %s\n", len(merged), *cacheFile)
	}

	return nil
}
