package toolstest

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/core/v2/common"
)

func testRequirements() *Requirements {
	reqs := &Requirements{}
	reqs.setDefaults()
	return reqs
}

var parseCommandLineTestCases = map[string]struct {
	Args []string
	Env  Environment

	Expected        Options
	ExpectedVersion common.APIVersion
}{
	"Defaults": {
		Expected:        Options{Variant: 1},
		ExpectedVersion: common.Vulkan1_1,
	},
	"Short Flags": {
		Args:            []string{"-g", "2", "-d", "1", "-v"},
		Expected:        Options{GPU: 2, Debug: 1, Validation: true, Variant: 1},
		ExpectedVersion: common.Vulkan1_1,
	},
	"Long Flags": {
		Args:            []string{"--gpu", "1", "--debug", "3", "--validation", "--vulkan-variant", "2"},
		Expected:        Options{GPU: 1, Debug: 3, Validation: true, Variant: 2},
		ExpectedVersion: common.Vulkan1_2,
	},
	"Variant Zero": {
		Args:            []string{"-V", "0"},
		Expected:        Options{Variant: 0},
		ExpectedVersion: common.Vulkan1_0,
	},
	"Environment Defaults": {
		Env:             Environment{Debug: 2, Validation: true},
		Expected:        Options{Debug: 2, Validation: true, Variant: 1},
		ExpectedVersion: common.Vulkan1_1,
	},
	"Environment GPU Wins": {
		Args:            []string{"-g", "1"},
		Env:             Environment{GPU: 3, HasGPU: true, GPUFromEnv: true},
		Expected:        Options{GPU: 3, Variant: 1},
		ExpectedVersion: common.Vulkan1_1,
	},
	"Config File GPU Is The Default": {
		Env:             Environment{GPU: 3, HasGPU: true},
		Expected:        Options{GPU: 3, Variant: 1},
		ExpectedVersion: common.Vulkan1_1,
	},
	"Flag Wins Over Config File GPU": {
		Args:            []string{"-g", "0"},
		Env:             Environment{GPU: 3, HasGPU: true},
		Expected:        Options{GPU: 0, Variant: 1},
		ExpectedVersion: common.Vulkan1_1,
	},
}

func TestParseCommandLine(t *testing.T) {
	for testName, testCase := range parseCommandLineTestCases {
		t.Run(testName, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			reqs := testRequirements()

			options, err := parseCommandLine(testCase.Args, "vulkan_test", reqs, testCase.Env, &stdout, &stderr)
			require.NoError(t, err)
			require.Equal(t, testCase.Expected, options)
			require.Equal(t, testCase.ExpectedVersion, reqs.APIVersion)
			require.Empty(t, stdout.String())
			require.Empty(t, stderr.String())
		})
	}
}

var parseCommandLineFailureTestCases = map[string]struct {
	Args []string

	ExpectedCode   int
	ExpectedUsage  bool
	ExpectedStderr string
}{
	"Help": {
		Args:          []string{"-h"},
		ExpectedCode:  ExitUsage,
		ExpectedUsage: true,
	},
	"Debug Too High": {
		Args:          []string{"-d", "4"},
		ExpectedCode:  ExitUsage,
		ExpectedUsage: true,
	},
	"Variant Out Of Range": {
		Args:          []string{"-V", "4"},
		ExpectedCode:  ExitUsage,
		ExpectedUsage: true,
	},
	"Unknown Flag": {
		Args:           []string{"--frobnicate"},
		ExpectedCode:   ExitUsage,
		ExpectedUsage:  true,
		ExpectedStderr: "Unrecognized cmd line parameter",
	},
	"Positional Argument": {
		Args:           []string{"extra"},
		ExpectedCode:   ExitUsage,
		ExpectedUsage:  true,
		ExpectedStderr: "Unrecognized cmd line parameter: extra",
	},
	"Missing Argument": {
		Args:           []string{"-g"},
		ExpectedCode:   ExitFailure,
		ExpectedStderr: "Missing command line parameter",
	},
}

func TestParseCommandLineFailures(t *testing.T) {
	for testName, testCase := range parseCommandLineFailureTestCases {
		t.Run(testName, func(t *testing.T) {
			var stdout, stderr bytes.Buffer

			_, err := parseCommandLine(testCase.Args, "vulkan_test", testRequirements(), Environment{}, &stdout, &stderr)
			require.Error(t, err)
			require.Equal(t, testCase.ExpectedCode, ExitCode(err))

			if testCase.ExpectedUsage {
				require.Contains(t, stdout.String(), "Usage:")
			} else {
				require.Empty(t, stdout.String())
			}
			require.Contains(t, stderr.String(), testCase.ExpectedStderr)
		})
	}
}

func TestProgramFlags(t *testing.T) {
	var stdout, stderr bytes.Buffer

	reqs := testRequirements()
	reqs.Flags = pflag.NewFlagSet("vulkan_test", pflag.ContinueOnError)
	count := reqs.Flags.IntP("count", "c", 10, "Number of buffers")
	fence := reqs.Flags.BoolP("fence", "f", false, "Use a fence")

	options, err := parseCommandLine([]string{"-c", "4", "-f", "-d", "1"}, "vulkan_test", reqs, Environment{}, &stdout, &stderr)
	require.NoError(t, err)
	require.Equal(t, 4, *count)
	require.True(t, *fence)
	require.Equal(t, 1, options.Debug)
}

func TestProgramFlagValidation(t *testing.T) {
	var stdout, stderr bytes.Buffer

	reqs := testRequirements()
	reqs.Flags = pflag.NewFlagSet("vulkan_test", pflag.ContinueOnError)
	variant := reqs.Flags.IntP("fence-variant", "f", 0, "Set fence variant")
	reqs.Validate = func() error {
		if *variant < 0 || *variant > 1 {
			return errors.Newf("fence variant %d out of range", *variant)
		}
		return nil
	}

	_, err := parseCommandLine([]string{"-f", "1"}, "vulkan_test", reqs, Environment{}, &stdout, &stderr)
	require.NoError(t, err)

	_, err = parseCommandLine([]string{"-f", "2"}, "vulkan_test", reqs, Environment{}, &stdout, &stderr)
	require.Equal(t, ExitUsage, ExitCode(err))
	require.Contains(t, stderr.String(), "fence variant 2 out of range")
	require.Contains(t, stdout.String(), "--fence-variant")
}

func TestUsageText(t *testing.T) {
	var stdout, stderr bytes.Buffer

	reqs := testRequirements()
	reqs.Flags = pflag.NewFlagSet("vulkan_test", pflag.ContinueOnError)
	reqs.Flags.IntP("loops", "l", 250000, "Number of loops")
	reqs.Usage = "Test cases:\n\t1 - enumerate device groups\n"

	_, err := parseCommandLine([]string{"--help"}, "vulkan_test", reqs, Environment{Debug: 1}, &stdout, &stderr)
	require.Equal(t, ExitUsage, ExitCode(err))

	usage := stdout.String()
	require.Contains(t, usage, "-d/--debug level N     Set debug level [0,1,2,3] (default 1)")
	require.Contains(t, usage, "-V/--vulkan-variant N  Set Vulkan variant (default 1)")
	require.Contains(t, usage, "\t0 - Vulkan 1.0\n")
	require.Contains(t, usage, "\t3 - Vulkan 1.3\n")
	require.Contains(t, usage, "--loops")
	require.Contains(t, usage, "1 - enumerate device groups")
}
