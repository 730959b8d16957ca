package main

import (
	"bytes"
	"testing"

	"github.com/ARM-software/tracetooltests-sub000/featuredetect"
	"github.com/stretchr/testify/require"
)

func TestSteps(t *testing.T) {
	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			require.NoError(t, s.run(featuredetect.New(), &bytes.Buffer{}))
		})
	}
}

func TestRunSteps(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runSteps(featuredetect.New(), &out))
	require.Equal(t, "Adjusted drawIndirectCount\n", out.String())
}

func TestStepFailure(t *testing.T) {
	d := featuredetect.New()
	d.CmdDrawIndirectCount()

	err := drawIndirectCount(d, &bytes.Buffer{})
	require.EqualError(t, err, "drawIndirectCount not adjusted, got []")
}
