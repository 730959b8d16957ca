package toolstest

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
)

const (
	ExitSuccess       = 0
	ExitUsage         = 1
	ExitSkip          = 77
	ExitNeedsVulkan12 = 78
	ExitFailure       = -1
)

// ExitError ends a program with a specific exit code
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Skip reports that the driver or hardware cannot run the program
func Skip(format string, args ...any) error {
	return &ExitError{Code: ExitSkip, Err: errors.Newf(format, args...)}
}

// NeedsVulkan12 reports a feature that requires selecting Vulkan 1.2 with -V
func NeedsVulkan12(format string, args ...any) error {
	return &ExitError{Code: ExitNeedsVulkan12, Err: errors.Newf(format, args...)}
}

func BadGPU(gpu int) error {
	return &ExitError{Code: ExitFailure, Err: errors.Newf("selected GPU %d does not exist", gpu)}
}

// Usage requests the usage text to be shown. The text itself has already been printed.
func Usage() error {
	return &ExitError{Code: ExitUsage}
}

func MissingArgument(flag string) error {
	return &ExitError{Code: ExitFailure, Err: errors.Newf("missing command line parameter for %s", flag)}
}

// ExitCode returns the process exit code for the result of a program
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	return ExitFailure
}

// Main runs a program body and exits with the code matching its result
func Main(program func() error) {
	err := program()
	code := ExitCode(err)

	var exitErr *ExitError
	if err != nil && (!errors.As(err, &exitErr) || exitErr.Err != nil) {
		fmt.Fprintln(os.Stderr, err)
	}

	os.Exit(code)
}

// Check converts a failed Vulkan call into an error. Non-error results such as VK_TIMEOUT are
// returned by the binding with a nil error and are accepted here as well.
func Check(res common.VkResult, err error) error {
	if err != nil {
		if res == core1_0.VKSuccess {
			return err
		}
		return errors.Wrapf(err, "Error 0x%04x: %s", uint32(res), ErrorString(res))
	}

	if res < 0 {
		return errors.Newf("Error 0x%04x: %s", uint32(res), ErrorString(res))
	}

	return nil
}

// CheckResult requires a Vulkan call to have produced exactly the expected result
func CheckResult(expected common.VkResult, res common.VkResult, err error) error {
	if res == expected {
		return nil
	}

	if err := Check(res, err); err != nil {
		return err
	}

	return errors.Newf("expected %s but got %s", ErrorString(expected), ErrorString(res))
}

// ErrorString names a Vulkan result code
func ErrorString(res common.VkResult) string {
	name := res.String()
	if name == "" {
		return "UNKNOWN_ERROR"
	}
	return name
}
