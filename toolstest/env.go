package toolstest

import (
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

const (
	envTimes      = "TOOLSTEST_TIMES"
	envSanity     = "TOOLSTEST_SANITY"
	envDebug      = "TOOLSTEST_DEBUG"
	envValidation = "TOOLSTEST_VALIDATION"
	envGPU        = "TOOLSTEST_GPU"
	envWinsys     = "TOOLSTEST_WINSYS"
	envConfig     = "TOOLSTEST_CONFIG"

	defaultTimes = 10
)

// Environment holds the settings read from TOOLSTEST_* variables and the optional
// TOOLSTEST_CONFIG yaml file. Variables take precedence over the file.
type Environment struct {
	Times      int
	Sanity     bool
	Debug      int
	Validation bool
	Winsys     string

	// GPU is the device index from TOOLSTEST_GPU or the config file. HasGPU is set by either
	// source, GPUFromEnv only by TOOLSTEST_GPU. The config file value is the default for -g,
	// TOOLSTEST_GPU overrides -g.
	GPU        int
	HasGPU     bool
	GPUFromEnv bool
}

type environmentFile struct {
	Times      *int    `yaml:"times"`
	Sanity     *bool   `yaml:"sanity"`
	Debug      *int    `yaml:"debug"`
	Validation *bool   `yaml:"validation"`
	GPU        *int    `yaml:"gpu"`
	Winsys     *string `yaml:"winsys"`
}

// LoadEnvironment reads the process environment
func LoadEnvironment() (Environment, error) {
	return loadEnvironment(os.LookupEnv, os.ReadFile)
}

func loadEnvironment(lookup func(string) (string, bool), readFile func(string) ([]byte, error)) (Environment, error) {
	env := Environment{Times: defaultTimes}

	if path, ok := lookup(envConfig); ok && path != "" {
		content, err := readFile(path)
		if err != nil {
			return env, errors.Wrapf(err, "could not read %s file", envConfig)
		}

		var file environmentFile
		if err := yaml.Unmarshal(content, &file); err != nil {
			return env, errors.Wrapf(err, "malformed %s file %s", envConfig, path)
		}
		file.apply(&env)
	}

	var err error
	if env.Times, _, err = envInt(lookup, envTimes, env.Times); err != nil {
		return env, err
	}
	if env.Debug, _, err = envInt(lookup, envDebug, env.Debug); err != nil {
		return env, err
	}

	var set bool
	if env.GPU, set, err = envInt(lookup, envGPU, env.GPU); err != nil {
		return env, err
	}
	env.HasGPU = env.HasGPU || set
	env.GPUFromEnv = set

	sanity, _, err := envInt(lookup, envSanity, boolToInt(env.Sanity))
	if err != nil {
		return env, err
	}
	env.Sanity = sanity != 0

	validation, _, err := envInt(lookup, envValidation, boolToInt(env.Validation))
	if err != nil {
		return env, err
	}
	env.Validation = validation != 0

	if winsys, ok := lookup(envWinsys); ok {
		env.Winsys = winsys
	}

	return env, nil
}

func (f *environmentFile) apply(env *Environment) {
	if f.Times != nil {
		env.Times = *f.Times
	}
	if f.Sanity != nil {
		env.Sanity = *f.Sanity
	}
	if f.Debug != nil {
		env.Debug = *f.Debug
	}
	if f.Validation != nil {
		env.Validation = *f.Validation
	}
	if f.GPU != nil {
		env.GPU = *f.GPU
		env.HasGPU = true
	}
	if f.Winsys != nil {
		env.Winsys = *f.Winsys
	}
}

func envInt(lookup func(string) (string, bool), name string, fallback int) (int, bool, error) {
	value, ok := lookup(name)
	if !ok || value == "" {
		return fallback, false, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback, false, errors.Wrapf(err, "%s must be an integer", name)
	}

	return parsed, true, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
