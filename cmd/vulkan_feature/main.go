// vulkan_feature runs the feature detection and adjustment logic without a device
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/featuredetect"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
)

func main() {
	toolstest.Main(run)
}

func run() error {
	return runSteps(featuredetect.New(), os.Stdout)
}
