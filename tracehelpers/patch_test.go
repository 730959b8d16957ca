package tracehelpers

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func patched(previous []byte, changes map[int]byte) []byte {
	next := make([]byte, len(previous))
	copy(next, previous)
	for offset, value := range changes {
		next[offset] = value
	}
	return next
}

var encodePatchTestCases = map[string]struct {
	Size    int
	Changes map[int]byte

	ExpectedRuns []PatchRun
}{
	"Identical": {
		Size: 16,
	},
	"Single Run": {
		Size:         16,
		Changes:      map[int]byte{2: 1, 3: 2},
		ExpectedRuns: []PatchRun{{Offset: 2, Data: []byte{1, 2}}},
	},
	"Run At Offset Zero": {
		Size:         16,
		Changes:      map[int]byte{0: 9},
		ExpectedRuns: []PatchRun{{Offset: 0, Data: []byte{9}}},
	},
	"Short Gap Merges": {
		Size:         16,
		Changes:      map[int]byte{0: 1, 5: 2},
		ExpectedRuns: []PatchRun{{Offset: 0, Data: []byte{1, 0, 0, 0, 0, 2}}},
	},
	"Long Gap Splits": {
		Size:    32,
		Changes: map[int]byte{0: 1, 20: 2},
		ExpectedRuns: []PatchRun{
			{Offset: 0, Data: []byte{1}},
			{Offset: 20, Data: []byte{2}},
		},
	},
}

func TestEncodePatch(t *testing.T) {
	for testName, testCase := range encodePatchTestCases {
		t.Run(testName, func(t *testing.T) {
			previous := make([]byte, testCase.Size)
			next := patched(previous, testCase.Changes)

			stream, err := EncodePatch(previous, next)
			require.NoError(t, err)

			runs, err := DecodePatch(stream)
			require.NoError(t, err)
			require.Equal(t, testCase.ExpectedRuns, runs)

			require.NoError(t, ApplyPatch(previous, stream))
			require.Equal(t, next, previous)
		})
	}
}

func TestEncodePatchStreamLayout(t *testing.T) {
	previous := make([]byte, 16)
	next := patched(previous, map[int]byte{2: 1, 3: 2})

	stream, err := EncodePatch(previous, next)
	require.NoError(t, err)
	require.Equal(t, []byte{
		2, 0, 0, 0, 2, 0, 0, 0, 1, 2,
		0, 0, 0, 0, 0, 0, 0, 0,
	}, stream)
}

func TestEncodePatchSizeMismatch(t *testing.T) {
	_, err := EncodePatch(make([]byte, 4), make([]byte, 5))
	require.Error(t, err)
}

func TestDecodePatchTruncated(t *testing.T) {
	_, err := DecodePatch([]byte{2, 0, 0, 0})
	require.Error(t, err)

	_, err = DecodePatch([]byte{2, 0, 0, 0, 4, 0, 0, 0, 1, 2})
	require.Error(t, err)

	_, err = DecodePatch([]byte{2, 0, 0, 0, 1, 0, 0, 0, 1})
	require.Error(t, err)
}

func TestApplyPatchOutOfBounds(t *testing.T) {
	stream := EncodeRuns([]PatchRun{{Offset: 6, Data: []byte{1, 2, 3}}})

	err := ApplyPatch(make([]byte, 8), stream)
	require.Error(t, err)
}
