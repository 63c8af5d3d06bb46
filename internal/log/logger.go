package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger that stamps every entry with its component.
type Logger struct {
	*slog.Logger
	component string
}

// Config holds logger configuration. Handler, when set, wins over Format,
// Level and Output.
type Config struct {
	Level     slog.Level
	Format    Format
	Output    io.Writer
	Component string
	Handler   slog.Handler
}

// Format selects the slog handler.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// DefaultConfig logs text at info level to stdout.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Format:    FormatText,
		Component: ComponentApp,
	}
}

// ParseLevel maps LOG_LEVEL values to slog levels. Unknown values mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// ParseFormat maps LOG_FORMAT values; anything but "json" is text.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		out := config.Output
		if out == nil {
			out = os.Stdout
		}
		opts := &slog.HandlerOptions{Level: config.Level}
		if config.Format == FormatJSON {
			handler = slog.NewJSONHandler(out, opts)
		} else {
			handler = slog.NewTextHandler(out, opts)
		}
	}

	return &Logger{
		Logger:    slog.New(handler),
		component: config.Component,
	}
}

// Default wraps the current slog default under component. Constructors use
// it when no logger is passed in.
func Default(component string) *Logger {
	return &Logger{
		Logger:    slog.Default(),
		component: component,
	}
}

// With returns a new logger with the given attributes
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		component: l.component,
	}
}

// WithComponent returns a copy logging under component.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    l.Logger,
		component: component,
	}
}

func (l *Logger) stamp(args []any) []any {
	return append([]any{FieldComponent, l.component}, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.Logger.Info(msg, l.stamp(args)...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.Logger.InfoContext(ctx, msg, l.stamp(args)...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.Logger.Warn(msg, l.stamp(args)...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.Logger.WarnContext(ctx, msg, l.stamp(args)...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.Logger.Error(msg, l.stamp(args)...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.Logger.ErrorContext(ctx, msg, l.stamp(args)...)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.Logger.Debug(msg, l.stamp(args)...)
}

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.Logger.DebugContext(ctx, msg, l.stamp(args)...)
}

// SetDefault installs logger as the slog default, so packages that log
// through slog directly share its handler.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.Logger)
}

func (l *Logger) Component() string {
	return l.component
}
