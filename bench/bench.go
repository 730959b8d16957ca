// Package bench writes the benchmarking results file requested by a benchmarking enable file.
// Benchmarking stays disabled, and every method is a no-op, unless the enable file names the
// running program as its target.
package bench

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jreader"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"golang.org/x/exp/slog"
)

const (
	EnablePathEnv = "BENCHMARKING_ENABLE_PATH"
	EnableJSONEnv = "BENCHMARKING_ENABLE_JSON"

	defaultResultsFile = "results.json"
)

// Config names the source of the enable file
type Config struct {
	EnablePath string
	EnableJSON string
}

// ConfigFromEnv reads BENCHMARKING_ENABLE_PATH and BENCHMARKING_ENABLE_JSON
func ConfigFromEnv() Config {
	return Config{
		EnablePath: os.Getenv(EnablePathEnv),
		EnableJSON: os.Getenv(EnableJSONEnv),
	}
}

type iteration struct {
	scene int
	start float64
	stop  float64
}

// Benchmark collects timed iterations, grouped into scenes, for the results file
type Benchmark struct {
	logger *slog.Logger
	now    func() time.Time

	enabled     bool
	testname    string
	backend     string
	enableFile  []byte
	resultsFile string
	initTime    float64

	scenes       []string
	sceneOutputs []string
	currentScene int
	sceneOpen    bool

	iterationStart float64
	inIteration    bool
	results        []iteration
}

// New parses the enable file named by config. A missing enable file, or one targeting a different
// program, produces a disabled Benchmark and no error.
func New(logger *slog.Logger, testname, backend string, config Config) (*Benchmark, error) {
	b := &Benchmark{
		logger:       logger,
		now:          time.Now,
		testname:     testname,
		backend:      backend,
		currentScene: -1,
	}

	if config.EnablePath != "" && config.EnableJSON != "" {
		return nil, errors.Newf("both %s and %s are set", EnablePathEnv, EnableJSONEnv)
	}

	switch {
	case config.EnablePath != "":
		logger.Info("reading benchmarking enable file", slog.String("path", config.EnablePath))
		content, err := os.ReadFile(config.EnablePath)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read benchmarking enable file %s", config.EnablePath)
		}
		b.enableFile = content
	case config.EnableJSON != "":
		logger.Info("reading benchmarking enable file from the environment")
		b.enableFile = []byte(config.EnableJSON)
	default:
		return b, nil
	}

	target, results, err := parseEnableFile(b.enableFile)
	if err != nil {
		return nil, err
	}

	if target == "" {
		logger.Warn("no target in benchmarking enable file, skipping")
		return b, nil
	}
	if target != testname {
		logger.Info("benchmarking enable file is not ours, skipping", slog.String("target", target))
		return b, nil
	}

	b.enabled = true
	b.resultsFile = results
	b.initTime = b.timestamp()
	return b, nil
}

func parseEnableFile(content []byte) (target string, results string, err error) {
	results = defaultResultsFile

	r := jreader.NewReader(content)
	for obj := r.Object(); obj.Next(); {
		switch string(obj.Name()) {
		case "target":
			target = r.String()
		case "results":
			results = r.String()
		default:
			r.SkipValue()
		}
	}

	if err := r.Error(); err != nil {
		return "", "", errors.Wrap(err, "malformed benchmarking enable file")
	}

	return target, results, nil
}

func (b *Benchmark) timestamp() float64 {
	return float64(b.now().UnixNano()) / float64(time.Second)
}

func (b *Benchmark) Enabled() bool {
	return b.enabled
}

func (b *Benchmark) ResultsFile() string {
	return b.resultsFile
}

// SetScene names the scene that iterations started afterwards are reported under
func (b *Benchmark) SetScene(name string) {
	if !b.enabled {
		return
	}

	b.scenes = append(b.scenes, name)
	b.sceneOutputs = append(b.sceneOutputs, "")
	b.currentScene = len(b.scenes) - 1
}

// StartScene begins a named scene that is closed by StopScene
func (b *Benchmark) StartScene(name string) {
	b.SetScene(name)
	b.sceneOpen = b.enabled
}

// StopScene ends the current scene. A non-empty outputFile is reported as the scene's output image.
func (b *Benchmark) StopScene(outputFile string) {
	if !b.enabled || !b.sceneOpen {
		return
	}

	b.sceneOutputs[b.currentScene] = outputFile
	b.sceneOpen = false
}

func (b *Benchmark) StartIteration() {
	if !b.enabled {
		return
	}

	b.iterationStart = b.timestamp()
	b.inIteration = true
}

func (b *Benchmark) StopIteration() {
	if !b.enabled || !b.inIteration {
		return
	}

	b.results = append(b.results, iteration{
		scene: b.currentScene,
		start: b.iterationStart,
		stop:  b.timestamp(),
	})
	b.inIteration = false
}

// Iterations returns the number of completed iterations
func (b *Benchmark) Iterations() int {
	return len(b.results)
}

// Done writes the results file
func (b *Benchmark) Done() error {
	if !b.enabled {
		return nil
	}

	data, err := b.encodeResults(b.timestamp())
	if err != nil {
		return err
	}

	b.logger.Info("writing benchmarking results file",
		slog.Int("iterations", len(b.results)),
		slog.String("path", b.resultsFile))

	err = os.WriteFile(b.resultsFile, data, 0644)
	if err != nil {
		return errors.Wrapf(err, "could not write benchmarking results file %s", b.resultsFile)
	}

	b.enabled = false
	return nil
}

func (b *Benchmark) encodeResults(endTime float64) ([]byte, error) {
	writer := jwriter.NewWriter()

	obj := writer.Object()
	obj.Name("app_version").String("1.0")
	obj.Name("std_version").Int(1)
	obj.Name("enable_file").Raw(b.enableFile)
	if b.backend != "" {
		obj.Name("rendering_backend").String(b.backend)
	}
	obj.Name("init_time").Float64(b.initTime)
	obj.Name("end_time").Float64(endTime)

	results := obj.Name("results").Array()
	for _, it := range b.results {
		result := results.Object()
		if it.scene >= 0 {
			result.Name("scene").String(b.scenes[it.scene])
			if output := b.sceneOutputs[it.scene]; output != "" {
				result.Name("output").String(output)
				result.Name("putput_type").String("png")
				result.Name("validated").Bool(false)
			}
		}
		result.Name("start_time").Float64(it.start)
		result.Name("stop_time").Float64(it.stop)
		result.Name("time").Float64(it.stop - it.start)
		result.End()
	}
	results.End()
	obj.End()

	if err := writer.Error(); err != nil {
		return nil, errors.Wrap(err, "could not encode benchmarking results")
	}

	return writer.Bytes(), nil
}
