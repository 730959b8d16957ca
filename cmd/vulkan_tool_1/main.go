// vulkan_tool_1 lists the tools VK_EXT_tooling_info reports as active
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
)

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		DeviceExtensions: []string{vkext.ToolingInfoExtensionName},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_tool_1", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	tooling, err := vkext.LoadToolingInfo(ctx.Instance, ctx.PhysicalDevice)
	if err != nil {
		return err
	}

	tools, res := tooling.Tools()
	if err := toolstest.Check(res, nil); err != nil {
		return err
	}

	// usually one, the capture layer
	fmt.Printf("%d tools in use:\n", len(tools))
	for _, tool := range tools {
		fmt.Printf("\t%s %s\n", tool.Name, tool.Version)
	}
	return nil
}
