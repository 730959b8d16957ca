package toolstest

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/vkngwrapper/core/v2/common"
)

// Options are the common command line settings, after applying the environment
type Options struct {
	Debug      int
	Validation bool
	GPU        int
	Variant    int
}

func parseCommandLine(args []string, testname string, reqs *Requirements, env Environment, stdout, stderr io.Writer) (Options, error) {
	defaultVariant := VersionVariant(reqs.APIVersion)
	defaultGPU := 0
	if env.HasGPU {
		defaultGPU = env.GPU
	}

	flags := pflag.NewFlagSet(testname, pflag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.SortFlags = false

	help := flags.BoolP("help", "h", false, "This help")
	gpu := flags.IntP("gpu", "g", defaultGPU, "Select GPU")
	validation := flags.BoolP("validation", "v", env.Validation, "Enable validation layer")
	debug := flags.IntP("debug", "d", env.Debug, "Set debug level [0,1,2,3]")
	variant := flags.IntP("vulkan-variant", "V", defaultVariant, "Set Vulkan variant")
	if reqs.Flags != nil {
		flags.AddFlagSet(reqs.Flags)
	}

	showUsage := func() error {
		printUsage(stdout, reqs, defaultGPU, env.Debug, defaultVariant)
		return Usage()
	}

	err := flags.Parse(args)
	if err != nil {
		if strings.Contains(err.Error(), "needs an argument") {
			fmt.Fprintln(stderr, "Missing command line parameter")
			return Options{}, MissingArgument(err.Error())
		}

		fmt.Fprintf(stderr, "Unrecognized cmd line parameter: %s\n", err)
		return Options{}, showUsage()
	}

	if flags.NArg() > 0 {
		fmt.Fprintf(stderr, "Unrecognized cmd line parameter: %s\n", flags.Arg(0))
		return Options{}, showUsage()
	}

	if *help || *debug < 0 || *debug > 3 {
		return Options{}, showUsage()
	}

	if reqs.Validate != nil {
		if err := reqs.Validate(); err != nil {
			fmt.Fprintf(stderr, "Invalid cmd line parameter: %s\n", err)
			return Options{}, showUsage()
		}
	}

	version, ok := VariantVersion(*variant)
	if !ok {
		return Options{}, showUsage()
	}
	reqs.APIVersion = version

	options := Options{
		Debug:      *debug,
		Validation: *validation,
		GPU:        *gpu,
		Variant:    *variant,
	}

	// TOOLSTEST_GPU wins over -g
	if env.GPUFromEnv {
		options.GPU = env.GPU
	}

	return options, nil
}

func printUsage(out io.Writer, reqs *Requirements, gpu, debug, variant int) {
	fmt.Fprintln(out, "Usage:")
	fmt.Fprintln(out, "-h/--help              This help")
	fmt.Fprintf(out, "-g/--gpu level N       Select GPU (default %d)\n", gpu)
	fmt.Fprintln(out, "-v/--validation        Enable validation layer")
	fmt.Fprintf(out, "-d/--debug level N     Set debug level [0,1,2,3] (default %d)\n", debug)
	fmt.Fprintf(out, "-V/--vulkan-variant N  Set Vulkan variant (default %d)\n", variant)
	for index, version := range variantVersions {
		v := common.Version(version)
		fmt.Fprintf(out, "\t%d - Vulkan %d.%d\n", index, v.Major(), v.Minor())
	}

	if reqs.Flags != nil && reqs.Flags.HasFlags() {
		fmt.Fprint(out, reqs.Flags.FlagUsages())
	}
	if reqs.Usage != "" {
		fmt.Fprintln(out, strings.TrimRight(reqs.Usage, "\n"))
	}
}
