package main

import (
	"bytes"
	"testing"

	"github.com/ARM-software/tracetooltests-sub000/vkext"
	"github.com/stretchr/testify/require"
)

func TestPrintExecutables(t *testing.T) {
	tests := map[string]struct {
		executables []vkext.PipelineExecutable
		expected    string
	}{
		"Empty": {},
		"Two": {
			executables: []vkext.PipelineExecutable{
				{Name: "Compute", Description: "compute shader"},
				{Name: "Spill", Description: ""},
			},
			expected: "Statistic 0: Compute - compute shader\nStatistic 1: Spill - \n",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			printExecutables(&out, "Statistic", test.executables)
			require.Equal(t, test.expected, out.String())
		})
	}
}
