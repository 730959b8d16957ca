// vulkan_privatedata attaches a value to a fence through the Vulkan 1.3 private data functions
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const privateValue = 1234

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:    toolstest.Vulkan13,
		MinAPIVersion: toolstest.Vulkan13,
		Features13:    &vkext.Vulkan13Features{PrivateData: true},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_privatedata", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	ctx.Bench.StartIteration()

	privateData, err := vkext.LoadPrivateData(ctx.Device, "")
	if err != nil {
		return err
	}

	fence, res, err := ctx.Device.CreateFence(nil, core1_0.FenceCreateInfo{})
	if err := toolstest.Check(res, err); err != nil {
		return err
	}
	defer fence.Destroy(nil)

	slot, res := privateData.CreateSlot()
	if err := toolstest.Check(res, nil); err != nil {
		return err
	}
	defer privateData.DestroySlot(slot)

	handle := uint64(fence.Handle())
	err = toolstest.Check(privateData.Set(core1_0.ObjectTypeFence, handle, slot, privateValue), nil)
	if err != nil {
		return err
	}
	if value := privateData.Get(core1_0.ObjectTypeFence, handle, slot); value != privateValue {
		return errors.Newf("private data is %d, expected %d", value, privateValue)
	}

	ctx.Bench.StopIteration()
	return nil
}
