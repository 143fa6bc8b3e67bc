package config

import (
	"io"
	"log/slog"
	"strings"

	"github.com/readingcorner/library-circulation/store/oteladapters"
)

// NewLogger builds the service logger.
//
//   - format "otel" sends records through the otelslog bridge to the global OpenTelemetry logger provider
//   - format "json" or "text" writes to out, records inside an active span carry trace_id and span_id
func NewLogger(logCfg LogConfig, obsCfg ObservabilityConfig, out io.Writer) *oteladapters.SlogBridgeLogger {
	if logCfg.Format == LogFormatOTel {
		return oteladapters.NewSlogBridgeLogger(obsCfg.ServiceName)
	}

	options := &slog.HandlerOptions{Level: ParseLevel(logCfg.Level)}

	var handler slog.Handler
	if logCfg.Format == LogFormatText {
		handler = slog.NewTextHandler(out, options)
	} else {
		handler = slog.NewJSONHandler(out, options)
	}

	return oteladapters.NewSlogBridgeLoggerWithHandler(handler)
}

// ParseLevel maps debug, info, warn and error to slog levels. Anything else is info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
