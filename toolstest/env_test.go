package toolstest

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeLookup(values map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		value, ok := values[name]
		return value, ok
	}
}

func fakeReadFile(files map[string]string) func(string) ([]byte, error) {
	return func(path string) ([]byte, error) {
		content, ok := files[path]
		if !ok {
			return nil, os.ErrNotExist
		}
		return []byte(content), nil
	}
}

var loadEnvironmentTestCases = map[string]struct {
	Vars  map[string]string
	Files map[string]string

	Expected Environment
}{
	"Defaults": {
		Expected: Environment{Times: 10},
	},
	"Variables": {
		Vars: map[string]string{
			"TOOLSTEST_TIMES":      "3",
			"TOOLSTEST_SANITY":     "1",
			"TOOLSTEST_DEBUG":      "2",
			"TOOLSTEST_VALIDATION": "1",
			"TOOLSTEST_GPU":        "1",
			"TOOLSTEST_WINSYS":     "headless",
		},
		Expected: Environment{Times: 3, Sanity: true, Debug: 2, Validation: true, GPU: 1, HasGPU: true, GPUFromEnv: true, Winsys: "headless"},
	},
	"Empty Variables Ignored": {
		Vars:     map[string]string{"TOOLSTEST_TIMES": "", "TOOLSTEST_GPU": ""},
		Expected: Environment{Times: 10},
	},
	"GPU Zero Is Set": {
		Vars:     map[string]string{"TOOLSTEST_GPU": "0"},
		Expected: Environment{Times: 10, HasGPU: true, GPUFromEnv: true},
	},
	"Config File": {
		Vars: map[string]string{"TOOLSTEST_CONFIG": "/etc/toolstest.yaml"},
		Files: map[string]string{
			"/etc/toolstest.yaml": "times: 5\nsanity: true\ndebug: 1\ngpu: 2\nwinsys: x11\n",
		},
		Expected: Environment{Times: 5, Sanity: true, Debug: 1, GPU: 2, HasGPU: true, Winsys: "x11"},
	},
	"Variables Override Config File": {
		Vars: map[string]string{
			"TOOLSTEST_CONFIG":     "/etc/toolstest.yaml",
			"TOOLSTEST_TIMES":      "7",
			"TOOLSTEST_VALIDATION": "0",
		},
		Files: map[string]string{
			"/etc/toolstest.yaml": "times: 5\nvalidation: true\n",
		},
		Expected: Environment{Times: 7},
	},
	"Variable GPU Over Config File": {
		Vars: map[string]string{
			"TOOLSTEST_CONFIG": "/etc/toolstest.yaml",
			"TOOLSTEST_GPU":    "3",
		},
		Files: map[string]string{
			"/etc/toolstest.yaml": "gpu: 2\n",
		},
		Expected: Environment{Times: 10, GPU: 3, HasGPU: true, GPUFromEnv: true},
	},
}

func TestLoadEnvironment(t *testing.T) {
	for testName, testCase := range loadEnvironmentTestCases {
		t.Run(testName, func(t *testing.T) {
			env, err := loadEnvironment(fakeLookup(testCase.Vars), fakeReadFile(testCase.Files))
			require.NoError(t, err)
			require.Equal(t, testCase.Expected, env)
		})
	}
}

var loadEnvironmentFailureTestCases = map[string]struct {
	Vars  map[string]string
	Files map[string]string
}{
	"Times Not A Number": {
		Vars: map[string]string{"TOOLSTEST_TIMES": "many"},
	},
	"GPU Not A Number": {
		Vars: map[string]string{"TOOLSTEST_GPU": "first"},
	},
	"Missing Config File": {
		Vars: map[string]string{"TOOLSTEST_CONFIG": "/nowhere.yaml"},
	},
	"Malformed Config File": {
		Vars:  map[string]string{"TOOLSTEST_CONFIG": "/bad.yaml"},
		Files: map[string]string{"/bad.yaml": "times: [1, 2"},
	},
}

func TestLoadEnvironmentFailures(t *testing.T) {
	for testName, testCase := range loadEnvironmentFailureTestCases {
		t.Run(testName, func(t *testing.T) {
			_, err := loadEnvironment(fakeLookup(testCase.Vars), fakeReadFile(testCase.Files))
			require.Error(t, err)
		})
	}
}

var gpuPrecedenceTestCases = map[string]struct {
	Vars map[string]string
	Args []string

	ExpectedGPU int
}{
	"Config File Only": {
		Vars:        map[string]string{"TOOLSTEST_CONFIG": "/etc/toolstest.yaml"},
		ExpectedGPU: 1,
	},
	"Flag Over Config File": {
		Vars:        map[string]string{"TOOLSTEST_CONFIG": "/etc/toolstest.yaml"},
		Args:        []string{"-g", "0"},
		ExpectedGPU: 0,
	},
	"Variable Over Flag": {
		Vars:        map[string]string{"TOOLSTEST_CONFIG": "/etc/toolstest.yaml", "TOOLSTEST_GPU": "2"},
		Args:        []string{"-g", "0"},
		ExpectedGPU: 2,
	},
}

func TestGPUPrecedence(t *testing.T) {
	files := map[string]string{"/etc/toolstest.yaml": "gpu: 1\n"}

	for testName, testCase := range gpuPrecedenceTestCases {
		t.Run(testName, func(t *testing.T) {
			env, err := loadEnvironment(fakeLookup(testCase.Vars), fakeReadFile(files))
			require.NoError(t, err)

			var stdout, stderr bytes.Buffer
			options, err := parseCommandLine(testCase.Args, "vulkan_test", testRequirements(), env, &stdout, &stderr)
			require.NoError(t, err)
			require.Equal(t, testCase.ExpectedGPU, options.GPU)
		})
	}
}
