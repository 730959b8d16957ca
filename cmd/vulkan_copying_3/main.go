// vulkan_copying_3 writes into mapped memory in several ways, to see what works with the
// guard pages of tracers
package main

import (
	"io"
	"os"
	"time"

	"github.com/ARM-software/tracetooltests-sub000/memutils"
	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	methodMemset = iota
	methodCopy
	methodRead
)

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	flags := pflag.NewFlagSet("vulkan_copying_3", pflag.ContinueOnError)
	bufferSize := flags.IntP("buffer-size", "b", 32*1024, "Set buffer size")
	method := flags.IntP("copy-method", "c", methodMemset, "Set copy method")
	times := flags.IntP("times", "t", 1, "Times to repeat")

	reqs := &toolstest.Requirements{
		Flags: flags,
		Usage: "\t0 - memset\n\t1 - memcpy\n\t2 - fread",
		Validate: func() error {
			if *method < methodMemset || *method > methodRead {
				return errors.Newf("copy method %d is not between 0 and 2", *method)
			}
			if *bufferSize < 1 {
				return errors.Newf("buffer size %d must be positive", *bufferSize)
			}
			return nil
		},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_copying_3", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	loops := *times
	if !flags.Changed("times") {
		loops = ctx.Repeats()
	}

	buffer, err := ctx.CreateBuffer(*bufferSize, core1_0.BufferUsageTransferSrc)
	if err != nil {
		return err
	}
	defer buffer.Destroy(nil)

	requirements := buffer.MemoryRequirements()
	memoryTypeIndex, err := ctx.FindMemoryType(requirements.MemoryTypeBits, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if err != nil {
		return err
	}

	alignedSize := memutils.AlignedSize(requirements.Size, requirements.Alignment)
	memory, err := ctx.AllocateMemory(core1_0.MemoryAllocateInfo{
		AllocationSize:  alignedSize,
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

	data, err := ctx.MapBytes(memory, 0, alignedSize)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.UnmapMemory(memory))
	}()
	data = data[:*bufferSize]

	random, err := os.Open("/dev/urandom")
	if err != nil {
		return errors.Wrap(err, "opening random source")
	}
	defer random.Close()

	source := make([]byte, *bufferSize)
	_, err = io.ReadFull(random, source)
	if err != nil {
		return errors.Wrap(err, "reading random source")
	}

	for i := 0; i < loops; i++ {
		switch *method {
		case methodMemset:
			for j := range data {
				data[j] = 0
			}
		case methodCopy:
			copy(data, source)
		case methodRead:
			// Read straight into the mapping
			_, err = io.ReadFull(random, data)
			if err != nil {
				return errors.Wrap(err, "reading into mapped memory")
			}
		}
		time.Sleep(10 * time.Microsecond)
	}

	return nil
}
