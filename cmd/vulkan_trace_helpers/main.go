// vulkan_trace_helpers fails unless VK_ARM_trace_helpers is enabled. When a tool implements the
// helpers, buffer checksums and patched buffer updates are checked as well.
package main

import (
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/tracehelpers"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

const bufferSize = 4096

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		DeviceExtensions:         []string{tracehelpers.ARMTraceHelpersExtensionName},
		OptionalDeviceExtensions: []string{tracehelpers.TraceHelpers2ExtensionName},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_trace_helpers", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	ctx.Bench.StartIteration()
	err = checkHelpers(ctx)
	if err != nil {
		return err
	}
	ctx.Bench.StopIteration()

	return nil
}

func checkHelpers(ctx *toolstest.Context) error {
	buffer, err := ctx.CreateBuffer(bufferSize, core1_0.BufferUsageTransferSrc|core1_0.BufferUsageTransferDst)
	if err != nil {
		return err
	}
	defer buffer.Destroy(nil)

	memories, _, err := ctx.AllocateBufferMemory([]core1_0.Buffer{buffer}, toolstest.BufferMemoryOptions{Name: "helper buffer"})
	if err != nil {
		return err
	}
	memory := memories[0]
	defer ctx.FreeMemory(memory)

	before, err := ctx.FillMemory(memory, 0, bufferSize, 0x5a, false)
	if err != nil {
		return err
	}

	err = ctx.AssertBufferChecksum(buffer, 0, toolstest.WholeSize, "filled buffer", before)
	if err != nil {
		return err
	}

	if !ctx.Helpers.Has(tracehelpers.TraceHelpers2ExtensionName) {
		ctx.Logger.Info("no patched buffer updates", slog.String("missing", tracehelpers.TraceHelpers2ExtensionName))
		return nil
	}

	return checkPatchedUpdate(ctx, buffer, memory)
}

// checkPatchedUpdate changes a few ranges of the buffer and reports them to the tool as a patch
func checkPatchedUpdate(ctx *toolstest.Context, buffer core1_0.Buffer, memory core1_0.DeviceMemory) error {
	data, err := ctx.MapBytes(memory, 0, bufferSize)
	if err != nil {
		return err
	}

	previous := append([]byte{}, data...)
	for _, offset := range []int{0, 100, 101, 2048, bufferSize - 1} {
		data[offset] ^= 0xff
	}

	patch, err := tracehelpers.EncodePatch(previous, data)
	if err != nil {
		return errors.CombineErrors(err, ctx.UnmapMemory(memory))
	}
	expected := toolstest.Adler32(data)

	err = ctx.UnmapMemory(memory)
	if err != nil {
		return err
	}

	err = ctx.Helpers.UpdateBuffer(buffer, tracehelpers.UpdateMemoryInfo{
		Flags: tracehelpers.UpdateMemoryPatchFormat,
		Data:  patch,
	})
	if err != nil {
		return errors.Wrap(err, "patching buffer")
	}
	ctx.Logger.Debug("patched buffer", slog.Int("patchBytes", len(patch)))

	return ctx.AssertBufferChecksum(buffer, 0, toolstest.WholeSize, "patched buffer", expected)
}
