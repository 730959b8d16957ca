// vulkan_deferred_1 creates, joins and destroys an empty deferred host operation
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

// joinResults are what vkDeferredOperationJoinKHR may return for an operation with no work
var joinResults = map[common.VkResult]bool{
	core1_0.VKSuccess:  true,
	vkext.VKThreadDone:  true,
	vkext.VKThreadIdle:  true,
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		APIVersion:       common.Vulkan1_1,
		DeviceExtensions: []string{vkext.DeferredHostOperationsExtensionName},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_deferred_1", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	deferred, err := vkext.LoadDeferredHostOperations(ctx.Device)
	if err != nil {
		return err
	}

	operation, res := deferred.Create()
	if err := toolstest.CheckResult(core1_0.VKSuccess, res, nil); err != nil {
		return err
	}
	defer deferred.Destroy(operation)

	fmt.Printf("vkGetDeferredOperationMaxConcurrencyKHR returns %d before join\n", deferred.MaxConcurrency(operation))

	if res := deferred.Join(operation); !joinResults[res] {
		return errors.Newf("joining deferred operation returned %s", toolstest.ErrorString(res))
	}

	fmt.Printf("vkGetDeferredOperationMaxConcurrencyKHR returns %d after join\n", deferred.MaxConcurrency(operation))

	err = toolstest.CheckResult(core1_0.VKSuccess, deferred.Result(operation), nil)
	if err != nil {
		return errors.Wrap(err, "deferred operation result")
	}

	fmt.Printf("vkGetDeferredOperationMaxConcurrencyKHR returns %d after get result\n", deferred.MaxConcurrency(operation))
	return nil
}
