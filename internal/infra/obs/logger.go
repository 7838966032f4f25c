package obs

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LoggerOptions struct {
	Env   string
	Level string
	// File, when set, receives a copy of every record and is rotated by size.
	File   string
	Output io.Writer
}

// NewLogger configures slog logger with colorful dev output and JSON for
// production-like envs. The returned closer releases the log file.
func NewLogger(opts LoggerOptions) (*slog.Logger, io.Closer) {
	level := parseLevel(opts.Level)
	var writer io.Writer = os.Stdout
	if opts.Output != nil {
		writer = opts.Output
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10,
			MaxBackups: 5,
			LocalTime:  true,
		}
		writer = io.MultiWriter(writer, rotating)
		closer = rotating
	}
	if opts.Env == "dev" || opts.Env == "local" {
		handler := tint.NewHandler(writer, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC3339,
			AddSource:  true,
			NoColor:    opts.File != "",
		})
		return slog.New(handler), closer
	}
	handler := slog.NewJSONHandler(writer, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
	})
	return slog.New(handler), closer
}

func parseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
