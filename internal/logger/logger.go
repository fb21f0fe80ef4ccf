package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ekisa-team/lingua/internal/env"
	"github.com/ekisa-team/lingua/internal/xfs"
)

// Options configures the logger built by New.
type Options struct {
	Output     io.Writer
	LogFile    string
	Level      slog.Level
	LogToFile  bool
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Option mutates Options.
type Option func(*Options)

// WithLogToFile enables writing logs to a rotating file in addition to the console.
func WithLogToFile(enabled bool) Option {
	return func(o *Options) {
		o.LogToFile = enabled
	}
}

// WithLogFile sets the rotating log file path.
func WithLogFile(path string) Option {
	return func(o *Options) {
		o.LogFile = path
	}
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(o *Options) {
		o.Level = level
	}
}

// WithOutput sets the console writer. Used by tests.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// New builds a slog logger for the given environment.
// Development logs are colourised with tint, production logs are JSON.
func New(environment env.Environment, opts ...Option) *slog.Logger {
	o := Options{
		Output:     os.Stderr,
		LogFile:    "logs/lingua.log",
		Level:      slog.LevelInfo,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 28,
	}
	if !environment.IsProduction() {
		o.Level = slog.LevelDebug
	}
	for _, opt := range opts {
		opt(&o)
	}

	var console slog.Handler
	if environment.IsProduction() {
		console = slog.NewJSONHandler(o.Output, &slog.HandlerOptions{Level: o.Level})
	} else {
		console = tint.NewHandler(o.Output, &tint.Options{
			Level:      o.Level,
			TimeFormat: time.Kitchen,
		})
	}

	if !o.LogToFile || o.LogFile == "" {
		return slog.New(console)
	}

	path := xfs.ExpandTilde(o.LogFile)
	if err := xfs.EnsureDir(path); err != nil {
		slog.New(console).Warn("Failed to create log directory, logging to console only", "path", path, "error", err)
		return slog.New(console)
	}

	file := slog.NewJSONHandler(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    o.MaxSizeMB,
		MaxBackups: o.MaxBackups,
		MaxAge:     o.MaxAgeDays,
		Compress:   true,
	}, &slog.HandlerOptions{Level: o.Level})

	return slog.New(fanout{console, file})
}

// fanout sends each record to every handler.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r.Clone()); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
