package memutils

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

var alignTestCases = map[string]struct {
	Value     int
	Alignment uint

	Up   int
	Down int
}{
	"Already Aligned": {Value: 256, Alignment: 64, Up: 256, Down: 256},
	"Round":           {Value: 100, Alignment: 64, Up: 128, Down: 64},
	"Alignment One":   {Value: 77, Alignment: 1, Up: 77, Down: 77},
	"Zero Alignment":  {Value: 77, Alignment: 0, Up: 77, Down: 77},
}

func TestAlign(t *testing.T) {
	for testName, testCase := range alignTestCases {
		t.Run(testName, func(t *testing.T) {
			require.Equal(t, testCase.Up, AlignUp(testCase.Value, testCase.Alignment))
			require.Equal(t, testCase.Down, AlignDown(testCase.Value, testCase.Alignment))
		})
	}
}

func TestAlignedSize(t *testing.T) {
	require.Equal(t, 1048576, AlignedSize(1048576, 256))
	require.Equal(t, 1050, AlignedSize(1000, 75))
	require.Equal(t, 1000, AlignedSize(1000, 0))
}

func TestCheckPow2(t *testing.T) {
	require.NoError(t, CheckPow2(uint(1024), "granularity"))
	require.NoError(t, CheckPow2(0, "zero"))

	err := CheckPow2(1000, "granularity")
	require.Error(t, err)
	require.True(t, errors.Is(err, PowerOfTwoError))
	require.Contains(t, err.Error(), "granularity is 1000")
}

func TestCheckRange(t *testing.T) {
	require.NoError(t, CheckRange(0, 1024, 1024))
	require.NoError(t, CheckRange(512, 0, 512))

	err := CheckRange(512, 1024, 1024)
	require.True(t, errors.Is(err, OutOfRangeError))
	require.True(t, errors.Is(CheckRange(-1, 1, 1024), OutOfRangeError))
}
