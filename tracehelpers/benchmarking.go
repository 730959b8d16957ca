package tracehelpers

import (
	"fmt"
	"io"
	"unsafe"

	"github.com/CannibalVox/cgoparam"
	"github.com/vkngwrapper/core/v2/common"
)

// BenchmarkingStructureType identifies Benchmarking in a vkGetPhysicalDeviceFeatures2 chain
const BenchmarkingStructureType int32 = 131323

type cBenchmarking struct {
	sType                        int32
	next                         unsafe.Pointer
	fixedTimeStep                uint32
	disablePerformanceAdaptation uint32
	disableVendorAdaptation      uint32
	disableLoadingFrames         uint32
	visualSettings               uint32
	scenario                     uint32
	loopTime                     uint32
}

// Benchmarking receives the benchmarking mode a replayer asks for through
// VK_TRACETOOLTEST_benchmarking. Chain it into a PhysicalDeviceFeatures2 query.
type Benchmarking struct {
	FixedTimeStep                uint32
	DisablePerformanceAdaptation bool
	DisableVendorAdaptation      bool
	DisableLoadingFrames         bool
	VisualSettings               uint32
	Scenario                     uint32
	LoopTime                     uint32

	common.NextOutData
}

var _ common.OutData = &Benchmarking{}

func (b *Benchmarking) PopulateHeader(allocator *cgoparam.Allocator, preallocated unsafe.Pointer, next unsafe.Pointer) (unsafe.Pointer, error) {
	if preallocated == nil {
		preallocated = allocator.Malloc(int(unsafe.Sizeof(cBenchmarking{})))
	}
	*(*cBenchmarking)(preallocated) = cBenchmarking{
		sType: BenchmarkingStructureType,
		next:  next,
	}
	return preallocated, nil
}

func (b *Benchmarking) PopulateOutData(cDataPointer unsafe.Pointer, helpers ...any) (next unsafe.Pointer, err error) {
	data := (*cBenchmarking)(cDataPointer)
	b.FixedTimeStep = data.fixedTimeStep
	b.DisablePerformanceAdaptation = data.disablePerformanceAdaptation != 0
	b.DisableVendorAdaptation = data.disableVendorAdaptation != 0
	b.DisableLoadingFrames = data.disableLoadingFrames != 0
	b.VisualSettings = data.visualSettings
	b.Scenario = data.scenario
	b.LoopTime = data.loopTime
	return data.next, nil
}

// Report prints the requested benchmarking mode
func (b *Benchmarking) Report(w io.Writer) {
	fmt.Fprintln(w, "Benchmarking mode requested:")
	fmt.Fprintf(w, "\tfixedTimeStep = %d\n", b.FixedTimeStep)
	fmt.Fprintf(w, "\tdisablePerformanceAdaptation = %t\n", b.DisablePerformanceAdaptation)
	fmt.Fprintf(w, "\tdisableVendorAdaptation = %t\n", b.DisableVendorAdaptation)
	fmt.Fprintf(w, "\tdisableLoadingFrames = %t\n", b.DisableLoadingFrames)
	fmt.Fprintf(w, "\tvisualSettings = %d\n", b.VisualSettings)
	fmt.Fprintf(w, "\tscenario = %d\n", b.Scenario)
	fmt.Fprintf(w, "\tloopTime = %d\n", b.LoopTime)
}
