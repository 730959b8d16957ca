// vulkan_feature_1 asks for an instance extension and a device feature it never uses, so a trace
// can be checked for carrying them over
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
)

const swapchainColorspaceExtensionName = "VK_EXT_swapchain_colorspace"

func main() {
	toolstest.Main(run)
}

func run() error {
	reqs := &toolstest.Requirements{
		InstanceExtensions: []string{swapchainColorspaceExtensionName},
		SamplerAnisotropy:  true,
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_feature_1", reqs)
	if err != nil {
		return err
	}
	return errors.Wrap(ctx.Done(), "vulkan_feature_1")
}
