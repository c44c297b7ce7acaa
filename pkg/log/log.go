// Package log configures [slog] for cardfont.
//
// Handlers are created from the --log-level and --log-format flag values.
// The text format uses charmbracelet/log with the terminal's colour profile;
// logfmt and json use the standard handlers. [Capture] holds records back in
// a [CircularBuffer] while an interactive form owns the terminal.
package log

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/muesli/termenv"
	"go.opentelemetry.io/otel/trace"

	charmlog "github.com/charmbracelet/log"
)

type (
	Format string
	Level  string

	contextKey struct{}
)

const (
	FormatJSON   Format = "json"
	FormatLogfmt Format = "logfmt"
	FormatText   Format = "text"

	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"

	// traceIDLen is how much of a trace ID is attached to log records.
	traceIDLen = 8
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnknownLogLevel  = errors.New("unknown log level")
	ErrUnknownLogFormat = errors.New("unknown log format")

	levels = map[Level]slog.Level{
		LevelError: slog.LevelError,
		LevelWarn:  slog.LevelWarn,
		"warning":  slog.LevelWarn,
		LevelInfo:  slog.LevelInfo,
		LevelDebug: slog.LevelDebug,
	}

	AllFormats = []string{
		string(FormatJSON),
		string(FormatLogfmt),
		string(FormatText),
	}
	AllLevels = []string{
		string(LevelError),
		string(LevelWarn),
		string(LevelInfo),
		string(LevelDebug),
	}
)

// CreateHandlerWithStrings creates a [slog.Handler] from flag values.
func CreateHandlerWithStrings(w io.Writer, logLevel, logFormat string) (slog.Handler, error) {
	lvl, err := GetLevel(logLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	f, err := GetFormat(logFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return CreateHandler(w, lvl, f), nil
}

// CreateHandler creates a [slog.Handler] writing to w. An unknown format
// falls back to [FormatText].
func CreateHandler(w io.Writer, lvl slog.Level, f Format) slog.Handler {
	opts := &slog.HandlerOptions{AddSource: true, Level: lvl}

	switch f {
	case FormatJSON:
		return slog.NewJSONHandler(w, opts)
	case FormatLogfmt:
		return slog.NewTextHandler(w, opts)
	default:
		return newCharmLogHandler(w, lvl)
	}
}

// GetLevel parses a level name, case-insensitively.
func GetLevel(level string) (slog.Level, error) {
	lvl, ok := levels[Level(strings.ToLower(level))]
	if !ok {
		return 0, fmt.Errorf("%w: %q (want one of %s)",
			ErrUnknownLogLevel, level, strings.Join(AllLevels, ", "))
	}

	return lvl, nil
}

// GetFormat parses a format name, case-insensitively.
func GetFormat(format string) (Format, error) {
	f := Format(strings.ToLower(format))
	if !slices.Contains(AllFormats, string(f)) {
		return "", fmt.Errorf("%w: %q (want one of %s)",
			ErrUnknownLogFormat, format, strings.Join(AllFormats, ", "))
	}

	return f, nil
}

// LevelNames returns every accepted level name, including aliases.
func LevelNames() []string {
	names := make([]string, 0, len(levels))
	for l := range maps.Keys(levels) {
		names = append(names, string(l))
	}

	slices.Sort(names)

	return names
}

func newCharmLogHandler(w io.Writer, level slog.Level) slog.Handler {
	//nolint:gosec // G115: bounded by GetLevel.
	lvl := int32(level)

	logger := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           charmlog.Level(lvl),
		Formatter:       charmlog.TextFormatter,
		ReportTimestamp: true,
		ReportCaller:    level <= slog.LevelDebug,
		TimeFormat:      time.TimeOnly,
	})
	logger.SetColorProfile(termenv.ColorProfile())

	return logger
}

// NewContext returns a copy of ctx carrying logger, which [WithContext]
// returns in preference to the default logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, logger)
}

// WithContext returns the logger for ctx. Without a logger from
// [NewContext], the default logger is used, tagged with the active span's
// trace ID when there is one.
func WithContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(contextKey{}).(*slog.Logger); ok {
		return logger
	}

	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return slog.Default()
	}

	traceID := sc.TraceID().String()

	return slog.With(slog.String("trace_id", traceID[:min(traceIDLen, len(traceID))]))
}

// Capture routes the default logger into a [CircularBuffer] holding the
// most recent capacity records, formatted by the handler newHandler
// creates. The returned function restores the previous default logger and
// writes the held records to w.
func Capture(w io.Writer, capacity int, newHandler func(io.Writer) slog.Handler) func() error {
	prev := slog.Default()
	buf := NewCircularBuffer(capacity)

	slog.SetDefault(slog.New(newHandler(buf)))

	return func() error {
		slog.SetDefault(prev)

		_, err := buf.WriteTo(w)
		if err != nil {
			return fmt.Errorf("flush captured logs: %w", err)
		}

		return nil
	}
}
