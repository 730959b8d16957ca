// vulkan_debug_report registers a VK_EXT_debug_report callback and sends it messages about the
// instance and the device
package main

import (
	"fmt"
	"os"

	"github.com/ARM-software/tracetooltests-sub000/toolstest"
	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/cockroachdb/errors"
)

const layerPrefix = "vulkan_debug_report"

const reportFlags = vkext.DebugReportDebug | vkext.DebugReportError | vkext.DebugReportWarning | vkext.DebugReportInformation

// reportLog counts the messages that came back from our own layer prefix
type reportLog struct {
	own int
}

func (r *reportLog) receive(message vkext.DebugReportMessage) bool {
	fmt.Printf("output from %s: %s\n", message.LayerPrefix, message.Message)
	if message.LayerPrefix == layerPrefix {
		r.own++
	}
	return true
}

func main() {
	toolstest.Main(run)
}

func run() (err error) {
	reqs := &toolstest.Requirements{
		InstanceExtensions: []string{vkext.DebugReportExtensionName},
	}

	ctx, err := toolstest.Init(os.Args[1:], "vulkan_debug_report", reqs)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, ctx.Done())
	}()

	report, err := vkext.LoadDebugReport(ctx.Instance)
	if err != nil {
		return err
	}

	log := &reportLog{}
	callback, res := report.CreateCallback(reportFlags, log.receive)
	if err := toolstest.Check(res, nil); err != nil {
		return err
	}

	report.Message(vkext.DebugReportDebug, vkext.DebugReportObjectTypeInstance, uint64(ctx.Instance.Handle()), layerPrefix, "instance test")
	report.Message(vkext.DebugReportDebug, vkext.DebugReportObjectTypeDevice, uint64(ctx.Device.Handle()), layerPrefix, "device test")
	report.DestroyCallback(callback)

	// Layers may filter messages, so a missing echo is only worth a log line
	if log.own == 0 {
		ctx.Logger.Info("no debug report messages came back")
	}
	return nil
}
