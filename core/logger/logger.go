package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/cinebot/core/buildinfo"
	coreconfig "github.com/m3rciful/cinebot/core/config"
)

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex
	shutdowned bool

	logWriter  *asyncWriter
	logClosers []io.Closer

	levelVar slog.LevelVar

	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the base logger; it discards output until InitLogger runs.
	L *slog.Logger

	// DB logs database connectivity events.
	DB *slog.Logger
	// MIG logs database migration events.
	MIG *slog.Logger
	// SEED logs catalog seeding.
	SEED *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
)

func init() {
	L = slog.New(slog.DiscardHandler)
	wireComponents()
}

// InitLogger configures the global structured logger. Only the first call has effect.
func InitLogger(cfg *coreconfig.Config) error {
	initOnce.Do(func() {
		st := resolveSettings(cfg, os.Getenv)
		levelVar.Set(st.level)
		debugSampler.Set(st.sampleNum, st.sampleDen)
		traceOverride = st.trace

		outputs, closers := openOutputs(st)
		logClosers = closers
		logWriter = newAsyncWriter(outputs, 64*1024)

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			writer:   logWriter,
			format:   st.format,
			keyOrder: st.keyOrder,
		}))
		slog.SetDefault(L)

		wireComponents()
		L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
			slog.String("component", "app"),
			slog.String("event", "startup"),
			slog.String("go_version", runtime.Version()),
			slog.String("build_version", buildinfo.Version),
			slog.String("build_commit", buildinfo.Commit),
			slog.String("build_time", buildinfo.Date),
			slog.String("cfg_profile", st.profile),
			slog.String("format", string(st.format)),
		)
	})
	return nil
}

func wireComponents() {
	DB = L.With("component", "db")
	MIG = L.With("component", "db.migrate")
	SEED = L.With("component", "db.seed")
	TG = L.With("component", "tg")
	TWire = L.With("component", "tg.wire")
}

// Shutdown flushes buffered log output and closes opened sinks.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutdowned {
		return nil
	}
	shutdowned = true

	var errs []error
	if logWriter != nil {
		errs = append(errs, logWriter.Flush(), logWriter.Close())
	}
	for _, c := range logClosers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// settings is the logging configuration after defaults are applied.
type settings struct {
	level     slog.Level
	format    logFormat
	keyOrder  []string
	profile   string
	sampleNum int
	sampleDen int
	trace     bool
	filePath  string
}

// resolveSettings applies defaults to cfg; a nil cfg yields info-level JSON
// on stdout. getenv supplies the TRACE and LOG_TRACE overrides.
func resolveSettings(cfg *coreconfig.Config, getenv func(string) string) settings {
	st := settings{
		level:     slog.LevelInfo,
		format:    formatJSON,
		keyOrder:  slices.Clone(defaultKeyOrder),
		profile:   "prod",
		sampleNum: 1,
		sampleDen: 50,
		trace:     isTruthy(getenv("TRACE")) || isTruthy(getenv("LOG_TRACE")),
	}
	if cfg == nil {
		return st
	}
	lc := cfg.Logging

	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		st.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		st.level = slog.LevelDebug
	case "warn", "warning":
		st.level = slog.LevelWarn
	case "error":
		st.level = slog.LevelError
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		st.format = formatKV
	case "json":
	default:
		if st.profile == "debug" || st.profile == "dev" {
			st.format = formatKV
		}
	}
	if order := splitKeys(lc.KeysOrder); len(order) > 0 {
		st.keyOrder = order
	}
	if spec := strings.TrimSpace(lc.DebugSample); spec != "" {
		switch num, den := parseRatioSpec(spec); {
		case num == 0 && den == 0:
			st.sampleNum, st.sampleDen = 0, 0
		case num > 0 && den > 0:
			st.sampleNum, st.sampleDen = num, den
		}
	}
	if dir, file := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && file != "" {
		st.filePath = filepath.Join(dir, file)
	}
	return st
}

// splitKeys parses a comma-separated key order; "default" or empty yields nil.
func splitKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "default" {
		return nil
	}
	var order []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			order = append(order, p)
		}
	}
	return order
}

// openOutputs always writes to stdout and adds the log file when configured.
// File errors are reported on the standard logger and the file is skipped.
func openOutputs(st settings) ([]io.Writer, []io.Closer) {
	writers := []io.Writer{os.Stdout}
	if st.filePath == "" {
		return writers, nil
	}
	if err := os.MkdirAll(filepath.Dir(st.filePath), 0o755); err != nil {
		log.Printf("logger: failed to create log dir for %s: %v", st.filePath, err)
		return writers, nil
	}
	f, err := os.OpenFile(st.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: failed to open log file %s: %v", st.filePath, err)
		return writers, nil
	}
	return append(writers, f), []io.Closer{f}
}

// LogEvent logs attrs with an "event" attribute prepended. A nil logger falls
// back to the context logger and then to L.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(ctx, level, "", attrs...)
}

// Component constructs a logger scoped to the provided component attribute.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return L
	}
	return L.With("component", trimmed)
}

// Event logs with component scope resolved automatically.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	logg := Component(component)
	if logg == nil {
		logg = FromContext(ctx)
		if logg != nil && strings.TrimSpace(component) != "" {
			logg = logg.With("component", strings.TrimSpace(component))
		}
	}
	LogEvent(ctx, logg, level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// Err renders err under the "err" key, or an empty attr when err is nil.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String("err", SanitizeLimit(err.Error(), 256))
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// ShouldSampleDebug reports whether debug-level details should be logged for high-volume events.
func ShouldSampleDebug() bool {
	if traceOverride {
		return true
	}
	return debugSampler.Allow()
}

// RoundMS rounds duration to the nearest millisecond for consistent logging.
func RoundMS(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return d.Round(time.Millisecond)
}

// Took returns rounded duration since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// SummarizeStrings joins up to limit elements and reports whether truncation happened.
func SummarizeStrings(values []string, limit int) (string, bool) {
	if limit <= 0 {
		return "", len(values) > 0
	}
	if len(values) <= limit {
		return strings.Join(values, ", "), false
	}
	return strings.Join(values[:limit], ", "), true
}
