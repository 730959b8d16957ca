package toolstest

import (
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAdler32(t *testing.T) {
	require.Equal(t, uint32(1), Adler32(nil))
	require.Equal(t, uint32(0x11e60398), Adler32([]byte("Wikipedia")))

	data := make([]byte, 1024)
	for i := range data {
		data[i] = 0xed
	}
	require.Equal(t, Adler32(data), Adler32(append([]byte{}, data...)))
	require.NotEqual(t, Adler32(data[:512]), Adler32(data))
}

func TestBlobs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.cache")

	require.False(t, ExistsBlob(path))
	_, err := LoadBlob(path)
	require.Error(t, err)

	require.Error(t, SaveBlob(path, nil))
	require.False(t, ExistsBlob(path))

	require.NoError(t, SaveBlob(path, []byte{1, 2, 3}))
	require.True(t, ExistsBlob(path))

	data, err := LoadBlob(path)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)

	empty := filepath.Join(dir, "empty.cache")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	require.False(t, ExistsBlob(empty))
	_, err = LoadBlob(empty)
	require.ErrorContains(t, err, "size zero")
}

func TestThreadName(t *testing.T) {
	require.Equal(t, "worker_3", threadName("worker_3"))
	require.Equal(t, "vulkan_thread_1", threadName("vulkan_thread_1_worker"))
	require.Len(t, threadName("a-very-long-thread-name"), 15)
}

func TestFloatImage(t *testing.T) {
	pixels := []float32{
		0, 0.5, 1, 1,
		-1, 2, 0.25, 0,
	}

	img := floatImage(pixels, 2, 1)
	require.Equal(t, color.NRGBA{R: 0, G: 127, B: 255, A: 255}, img.NRGBAAt(0, 0))
	require.Equal(t, color.NRGBA{R: 0, G: 255, B: 63, A: 0}, img.NRGBAAt(1, 0))

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, writePNG(path, img))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	decoded, err := png.Decode(file)
	require.NoError(t, err)
	require.Equal(t, 2, decoded.Bounds().Dx())
	require.Equal(t, 1, decoded.Bounds().Dy())
}

var checkSPIRVTestCases = map[string]struct {
	Code  []uint32
	Error string
}{
	"Empty Compute Shader": {
		Code: EmptyComputeShader,
	},
	"Header Only": {
		Code: []uint32{spirvMagic, 0x00010000, 0, 1, 0},
	},
	"Short Header": {
		Code:  []uint32{spirvMagic, 0x00010000},
		Error: "shorter than its header",
	},
	"Bad Magic": {
		Code:  []uint32{0x03022307, 0x00010000, 0, 1, 0},
		Error: "bad SPIR-V magic",
	},
	"Truncated Instruction": {
		Code:  []uint32{spirvMagic, 0x00010000, 0, 1, 0, 0x0003000e, 0},
		Error: "needs 3 words, 2 remain",
	},
	"Zero Length Instruction": {
		Code:  []uint32{spirvMagic, 0x00010000, 0, 1, 0, 0x00000011},
		Error: "zero length",
	},
}

func TestCheckSPIRV(t *testing.T) {
	for testName, testCase := range checkSPIRVTestCases {
		t.Run(testName, func(t *testing.T) {
			err := CheckSPIRV(testCase.Code)
			if testCase.Error != "" {
				require.ErrorContains(t, err, testCase.Error)
				return
			}
			require.NoError(t, err)
		})
	}
}
