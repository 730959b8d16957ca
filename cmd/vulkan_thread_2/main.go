package main

import (
	"os"
	"sync"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/core/v2/driver"
	"golang.org/x/sync/errgroup"
)

const (
	threads = 20
	buffers = 20
)

// commandBufferTracker serializes allocation and freeing so every live command buffer handle
// can be checked for uniqueness
type commandBufferTracker struct {
	ctx  *toolstest.Context
	lock sync.Mutex
	used *swiss.Map[driver.VkCommandBuffer, struct{}]
}

func (t *commandBufferTracker) allocate(pool core1_0.CommandPool, count int) ([]core1_0.CommandBuffer, error) {
	t.lock.Lock()
	defer t.lock.Unlock()

	commandBuffers, err := t.ctx.AllocateCommandBuffers(pool, core1_0.CommandBufferLevelPrimary, count)
	if err != nil {
		return nil, err
	}

	for _, commandBuffer := range commandBuffers {
		if t.used.Has(commandBuffer.Handle()) {
			return nil, errors.Newf("command buffer %p handed out twice", commandBuffer.Handle())
		}
		t.used.Put(commandBuffer.Handle(), struct{}{})
	}
	return commandBuffers, nil
}

func (t *commandBufferTracker) free(commandBuffers []core1_0.CommandBuffer) {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, commandBuffer := range commandBuffers {
		t.used.Delete(commandBuffer.Handle())
	}
	t.ctx.Device.FreeCommandBuffers(commandBuffers)
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	ctx, err := toolstest.Init(os.Args[1:], "vulkan_thread_2", &toolstest.Requirements{})
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	pools := make([]core1_0.CommandPool, 0, threads)
	defer func() {
		for _, pool := range pools {
			pool.Destroy(nil)
		}
	}()
	for k := 0; k < threads; k++ {
		pool, err := ctx.CreateCommandPool(0, "")
		if err != nil {
			return err
		}
		pools = append(pools, pool)
	}

	tracker := &commandBufferTracker{
		ctx:  ctx,
		used: swiss.NewMap[driver.VkCommandBuffer, struct{}](threads * buffers),
	}

	var group errgroup.Group
	for _, pool := range pools {
		pool := pool
		group.Go(func() error {
			commandBuffers, err := tracker.allocate(pool, buffers)
			if err != nil {
				return err
			}
			tracker.free(commandBuffers)
			return nil
		})
	}

	err = group.Wait()
	if err != nil {
		return err
	}

	if tracker.used.Count() != 0 {
		return errors.Newf("%d command buffers still tracked after freeing", tracker.used.Count())
	}
	return nil
}
