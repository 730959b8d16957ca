package tracehelpers

import (
	"bytes"
	"testing"

	"github.com/CannibalVox/cgoparam"
	"github.com/stretchr/testify/require"
)

func TestFlushRangesFlags(t *testing.T) {
	alloc := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(alloc)

	next := alloc.Malloc(8)
	ptr, err := FlushRangesFlags{Flags: FlushOperationInformative}.PopulateCPointer(alloc, nil, next)
	require.NoError(t, err)

	flags := (*cFlushRangesFlags)(ptr)
	require.Equal(t, int32(131316), flags.sType)
	require.Equal(t, next, flags.next)
	require.Equal(t, uint32(1), flags.flags)
}

func TestBenchmarkingReadback(t *testing.T) {
	alloc := cgoparam.GetAlloc()
	defer cgoparam.ReturnAlloc(alloc)

	var benchmarking Benchmarking
	ptr, err := benchmarking.PopulateHeader(alloc, nil, nil)
	require.NoError(t, err)

	data := (*cBenchmarking)(ptr)
	require.Equal(t, int32(131323), data.sType)
	require.Zero(t, data.loopTime)

	// what a replayer would write back
	data.fixedTimeStep = 16
	data.disableVendorAdaptation = 1
	data.scenario = 3
	data.loopTime = 60

	next, err := benchmarking.PopulateOutData(ptr)
	require.NoError(t, err)
	require.Nil(t, next)
	require.Equal(t, Benchmarking{
		FixedTimeStep:           16,
		DisableVendorAdaptation: true,
		Scenario:                3,
		LoopTime:                60,
	}, benchmarking)

	var out bytes.Buffer
	benchmarking.Report(&out)
	require.Equal(t, "Benchmarking mode requested:\n"+
		"\tfixedTimeStep = 16\n"+
		"\tdisablePerformanceAdaptation = false\n"+
		"\tdisableVendorAdaptation = true\n"+
		"\tdisableLoadingFrames = false\n"+
		"\tvisualSettings = 0\n"+
		"\tscenario = 3\n"+
		"\tloopTime = 60\n", out.String())
}
