package main

import (
	"fmt"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/sync/errgroup"
)

const threads = 20

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	ctx, err := toolstest.Init(os.Args[1:], "vulkan_thread_1", &toolstest.Requirements{})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	var used [threads + 1]atomic.Int32
	var group errgroup.Group
	for tid := 0; tid < threads; tid++ {
		tid := tid
		group.Go(func() error {
			return stress(ctx, tid, &used[tid])
		})
	}

	return group.Wait()
}

// jitter introduces some pseudo-random timings
func jitter() {
	if rand.Intn(5) == 1 {
		time.Sleep(time.Duration(rand.Intn(3)) * 10 * time.Millisecond)
	}
}

func stress(ctx *toolstest.Context, tid int, used *atomic.Int32) error {
	jitter()
	err := toolstest.SetThreadName("stress thread")
	if err != nil {
		return err
	}

	if !used.CompareAndSwap(0, 1) {
		return errors.Newf("thread slot %d used twice", tid)
	}

	pool, err := ctx.CreateCommandPool(0, fmt.Sprintf("Our temporary command pool for tid %d", tid))
	if err != nil {
		return err
	}
	jitter()

	commandBuffers, err := ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, 10)
	if err != nil {
		pool.Destroy(nil)
		return err
	}
	jitter()

	ctx.Device.FreeCommandBuffers(commandBuffers)
	pool.Destroy(nil)
	jitter()

	return nil
}
