package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
)

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{}

	first, err := toolstest.Init(os.Args[1:], "vulkan_multiinstance_1", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, first.Done())
	}()

	second, err := toolstest.Init(os.Args[1:], "vulkan_multiinstance_2", reqs)
	if err != nil {
		return err
	}
	// The second instance goes away before the first one
	defer func() {
		err = errors.CombineErrors(err, second.Done())
	}()

	found, err := first.HasInstanceProc("vkNonsense")
	if err != nil {
		return err
	}
	if found {
		return errors.New("first instance resolved vkNonsense")
	}

	found, err = second.HasDeviceProc("vkNonsense")
	if err != nil {
		return err
	}
	if found {
		return errors.New("second device resolved vkNonsense")
	}

	for _, name := range []string{"vkGetInstanceProcAddr", "vkEnumeratePhysicalDevices", "vkDestroyInstance"} {
		for index, ctx := range []*toolstest.Context{first, second} {
			found, err = ctx.HasInstanceProc(name)
			if err != nil {
				return err
			}
			if !found {
				return errors.Newf("instance %d did not resolve %s", index+1, name)
			}
		}
	}

	if first.APIVersion >= common.Vulkan1_1 {
		found, err = second.HasDeviceProc("vkGetDeviceQueue2")
		if err != nil {
			return err
		}
		if !found {
			return errors.New("second device did not resolve vkGetDeviceQueue2")
		}
	}

	return nil
}
