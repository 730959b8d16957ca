package bench

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func fakeClock(start time.Time, step time.Duration) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(step)
		return now
	}
}

var disabledTestCases = map[string]Config{
	"No Enable File":  {},
	"Other Target":    {EnableJSON: `{"target": "vulkan_other"}`},
	"Missing Target":  {EnableJSON: `{"results": "out.json"}`},
	"Extra Fields Ok": {EnableJSON: `{"target": "vulkan_other", "settings": {"a": [1, 2]}}`},
}

func TestDisabled(t *testing.T) {
	for testName, config := range disabledTestCases {
		t.Run(testName, func(t *testing.T) {
			b, err := New(testLogger(), "vulkan_test", "Vulkan", config)
			require.NoError(t, err)
			require.False(t, b.Enabled())

			b.StartScene("scene")
			b.StartIteration()
			b.StopIteration()
			b.StopScene("out.png")
			require.Equal(t, 0, b.Iterations())
			require.NoError(t, b.Done())
		})
	}
}

var errorTestCases = map[string]Config{
	"Both Sources": {EnablePath: "enable.json", EnableJSON: `{"target": "vulkan_test"}`},
	"Malformed":    {EnableJSON: `{"target": `},
	"Missing File": {EnablePath: "/nonexistent/enable.json"},
}

func TestErrors(t *testing.T) {
	for testName, config := range errorTestCases {
		t.Run(testName, func(t *testing.T) {
			_, err := New(testLogger(), "vulkan_test", "Vulkan", config)
			require.Error(t, err)
		})
	}
}

func TestDefaultResultsFile(t *testing.T) {
	b, err := New(testLogger(), "vulkan_test", "Vulkan", Config{EnableJSON: `{"target": "vulkan_test"}`})
	require.NoError(t, err)
	require.True(t, b.Enabled())
	require.Equal(t, "results.json", b.ResultsFile())
}

func TestEnableFromPath(t *testing.T) {
	dir := t.TempDir()
	enablePath := filepath.Join(dir, "enable.json")
	require.NoError(t, os.WriteFile(enablePath, []byte(`{"target": "vulkan_test", "results": "custom.json"}`), 0644))

	b, err := New(testLogger(), "vulkan_test", "Vulkan", Config{EnablePath: enablePath})
	require.NoError(t, err)
	require.True(t, b.Enabled())
	require.Equal(t, "custom.json", b.ResultsFile())
}

type resultRecord struct {
	Scene      string  `json:"scene"`
	Output     string  `json:"output"`
	OutputType string  `json:"putput_type"`
	Validated  *bool   `json:"validated"`
	StartTime  float64 `json:"start_time"`
	StopTime   float64 `json:"stop_time"`
	Time       float64 `json:"time"`
}

type resultsFile struct {
	AppVersion       string            `json:"app_version"`
	StdVersion       int               `json:"std_version"`
	EnableFile       map[string]string `json:"enable_file"`
	RenderingBackend string            `json:"rendering_backend"`
	InitTime         float64           `json:"init_time"`
	EndTime          float64           `json:"end_time"`
	Results          []resultRecord    `json:"results"`
}

func TestResultsFile(t *testing.T) {
	resultsPath := filepath.Join(t.TempDir(), "results.json")
	enableJSON := `{"target": "vulkan_test", "results": "` + resultsPath + `"}`

	b, err := New(testLogger(), "vulkan_test", "Vulkan", Config{EnableJSON: enableJSON})
	require.NoError(t, err)
	require.True(t, b.Enabled())

	b.now = fakeClock(time.Unix(100, 0), 500*time.Millisecond)

	// Iteration outside any scene
	b.StartIteration()
	b.StopIteration()

	b.StartScene("compute")
	b.StartIteration()
	b.StopIteration()
	b.StopScene("compute.png")

	b.StartScene("plain")
	b.StartIteration()
	b.StopIteration()
	b.StopScene("")

	require.Equal(t, 3, b.Iterations())
	require.NoError(t, b.Done())
	require.False(t, b.Enabled())

	data, err := os.ReadFile(resultsPath)
	require.NoError(t, err)

	var results resultsFile
	require.NoError(t, json.Unmarshal(data, &results))

	require.Equal(t, "1.0", results.AppVersion)
	require.Equal(t, 1, results.StdVersion)
	require.Equal(t, "Vulkan", results.RenderingBackend)
	require.Equal(t, map[string]string{"target": "vulkan_test", "results": resultsPath}, results.EnableFile)
	require.Equal(t, float64(103), results.EndTime)

	require.Len(t, results.Results, 3)

	require.Equal(t, "", results.Results[0].Scene)
	require.Equal(t, float64(100), results.Results[0].StartTime)
	require.Equal(t, float64(100.5), results.Results[0].StopTime)
	require.Equal(t, 0.5, results.Results[0].Time)

	require.Equal(t, "compute", results.Results[1].Scene)
	require.Equal(t, "compute.png", results.Results[1].Output)
	require.Equal(t, "png", results.Results[1].OutputType)
	require.NotNil(t, results.Results[1].Validated)
	require.False(t, *results.Results[1].Validated)

	require.Equal(t, "plain", results.Results[2].Scene)
	require.Equal(t, "", results.Results[2].Output)
	require.Nil(t, results.Results[2].Validated)
	require.Equal(t, float64(102), results.Results[2].StartTime)
}

func TestSetScene(t *testing.T) {
	b, err := New(testLogger(), "vulkan_test", "Vulkan", Config{EnableJSON: `{"target": "vulkan_test"}`})
	require.NoError(t, err)

	b.SetScene("case 1")
	b.StartIteration()
	b.StopIteration()

	// Only a scene begun with StartScene takes an output file
	b.StopScene("ignored.png")
	require.Equal(t, []string{"case 1"}, b.scenes)
	require.Equal(t, []string{""}, b.sceneOutputs)

	b.StartScene("compute")
	b.StopScene("compute.png")
	b.StopScene("again.png")
	require.Equal(t, []string{"case 1", "compute"}, b.scenes)
	require.Equal(t, []string{"", "compute.png"}, b.sceneOutputs)
	require.Equal(t, 1, b.Iterations())
	require.Equal(t, 0, b.results[0].scene)
}

func TestStopIterationWithoutStart(t *testing.T) {
	b, err := New(testLogger(), "vulkan_test", "", Config{EnableJSON: `{"target": "vulkan_test"}`})
	require.NoError(t, err)

	b.StopIteration()
	require.Equal(t, 0, b.Iterations())
}
