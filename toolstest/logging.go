package toolstest

import (
	"fmt"
	"io"
	"os"

	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"golang.org/x/exp/slog"
)

// NewLogger builds the program logger for a -d debug level
func NewLogger(debugLevel int) *slog.Logger {
	return newLogger(os.Stderr, debugLevel)
}

func newLogger(w io.Writer, debugLevel int) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelWarn}

	switch {
	case debugLevel >= 3:
		options.Level = slog.LevelDebug
		options.AddSource = true
	case debugLevel == 2:
		options.Level = slog.LevelDebug
	case debugLevel == 1:
		options.Level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, options))
}

// messengerCallback prints driver and layer messages. Verbose and info messages are only shown
// when debugging.
func messengerCallback(w io.Writer, debugLevel int) func(ext_debug_utils.DebugUtilsMessageTypeFlags, ext_debug_utils.DebugUtilsMessageSeverityFlags, *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
	return func(msgType ext_debug_utils.DebugUtilsMessageTypeFlags, severity ext_debug_utils.DebugUtilsMessageSeverityFlags, data *ext_debug_utils.DebugUtilsMessengerCallbackData) bool {
		if debugLevel == 0 && (severity == ext_debug_utils.SeverityVerbose || severity == ext_debug_utils.SeverityInfo) {
			return true
		}

		fmt.Fprintf(w, "messenger (s%d, t%d): %s\n", uint32(severity), uint32(msgType), data.Message)
		return true
	}
}
