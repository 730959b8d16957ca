package toolstest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
)

func TestLoggerLevels(t *testing.T) {
	var buf bytes.Buffer

	logger := newLogger(&buf, 0)
	logger.Info("hidden")
	logger.Warn("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger = newLogger(&buf, 1)
	logger.Debug("hidden")
	logger.Info("shown")
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger = newLogger(&buf, 3)
	logger.Debug("shown")
	require.Contains(t, buf.String(), "shown")
	require.Contains(t, buf.String(), "source=")
}

var messengerTestCases = map[string]struct {
	DebugLevel int
	Severity   ext_debug_utils.DebugUtilsMessageSeverityFlags

	Shown bool
}{
	"Error Always Shown":    {DebugLevel: 0, Severity: ext_debug_utils.SeverityError, Shown: true},
	"Warning Always Shown":  {DebugLevel: 0, Severity: ext_debug_utils.SeverityWarning, Shown: true},
	"Info Hidden":           {DebugLevel: 0, Severity: ext_debug_utils.SeverityInfo},
	"Verbose Hidden":        {DebugLevel: 0, Severity: ext_debug_utils.SeverityVerbose},
	"Info Shown When Debug": {DebugLevel: 1, Severity: ext_debug_utils.SeverityInfo, Shown: true},
}

func TestMessengerCallback(t *testing.T) {
	for testName, testCase := range messengerTestCases {
		t.Run(testName, func(t *testing.T) {
			var buf bytes.Buffer

			callback := messengerCallback(&buf, testCase.DebugLevel)
			require.True(t, callback(ext_debug_utils.TypeValidation, testCase.Severity, &ext_debug_utils.DebugUtilsMessengerCallbackData{
				Message: "object leaked",
			}))

			if !testCase.Shown {
				require.Empty(t, buf.String())
				return
			}
			require.Regexp(t, `^messenger \(s\d+, t\d+\): object leaked\n$`, buf.String())
		})
	}
}
