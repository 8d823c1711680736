package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options selects a backend and its output settings.
type Options struct {
	// Backend is one of "slog" (default), "zerolog" or "zap".
	Backend string
	// Level is debug, info, warn or error. Unknown values mean info.
	Level string
	// Format is "json" or "text".
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New builds a Logger for the given options.
func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}
	json := strings.EqualFold(opts.Format, "json")

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "zerolog":
		var w io.Writer = out
		if !json {
			w = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: true}
		}
		l := zerolog.New(w).Level(zerologLevel(opts.Level)).With().Timestamp().Logger()
		return NewZerologLogger(l)
	case "zap":
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		var enc zapcore.Encoder
		if json {
			enc = zapcore.NewJSONEncoder(encCfg)
		} else {
			enc = zapcore.NewConsoleEncoder(encCfg)
		}
		core := zapcore.NewCore(enc, zapcore.AddSync(out), zapLevel(opts.Level))
		return NewZapLogger(zap.New(core))
	default:
		hopts := &slog.HandlerOptions{Level: slogLevel(opts.Level)}
		var h slog.Handler
		if json {
			h = slog.NewJSONHandler(out, hopts)
		} else {
			h = slog.NewTextHandler(out, hopts)
		}
		return NewSlogLogger(slog.New(h))
	}
}

// Nop returns a logger that discards everything. Handy in tests.
func Nop() Logger {
	return NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func slogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func zerologLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func zapLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
