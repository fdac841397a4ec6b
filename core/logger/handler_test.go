package logger

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/cinebot/core/config"
)

func newTestLogger(t *testing.T, format logFormat) (*slog.Logger, func() string) {
	t.Helper()
	buf := &bytes.Buffer{}
	aw := newAsyncWriter([]io.Writer{buf}, 1024)
	h := newStructuredHandler(handlerConfig{
		level:  slog.LevelInfo,
		writer: aw,
		format: format,
	})
	return slog.New(h), func() string {
		require.NoError(t, aw.Close())
		return strings.TrimSpace(buf.String())
	}
}

func TestStructuredHandlerKVOrder(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	ctx := WithUpdateMeta(WithRID(context.Background(), "rid-123"), 42, 7, 9)

	LogEvent(ctx, log.With("component", "tg"), slog.LevelInfo, "callback.routed",
		slog.String("status", "OK"),
		slog.String("kind", "toggle_favorite"),
	)

	tokens := strings.Split(output(), " ")
	expected := []string{"ts=", "level=INFO", "component=tg", "event=callback.routed", "status=ok", "rid=rid-123", "update_id=42", "user_id=7", "chat_id=9", "kind=toggle_favorite"}
	require.GreaterOrEqual(t, len(tokens), len(expected))
	for i, prefix := range expected {
		assert.Truef(t, strings.HasPrefix(tokens[i], prefix), "token %d = %s, want prefix %s", i, tokens[i], prefix)
	}
}

func TestStructuredHandlerJSONOrder(t *testing.T) {
	log, output := newTestLogger(t, formatJSON)
	ctx := WithUpdateMeta(WithRID(context.Background(), "rid-json"), 11, 22, 33)

	LogEvent(ctx, log.With("component", "store.favorites"), slog.LevelError, "favorite.toggle",
		slog.String("status", "fail"),
		slog.String("err", "boom"),
		slog.String("film_uuid", "b3c1"),
	)

	line := output()
	prefixes := []string{`{"ts":`, `"level":"ERROR"`, `"component":"store.favorites"`, `"event":"favorite.toggle"`, `"status":"fail"`, `"rid":"rid-json"`, `"film_uuid":"b3c1"`, `"err":"boom"`}
	pos := -1
	for _, pref := range prefixes {
		idx := strings.Index(line, pref)
		require.Greaterf(t, idx, pos, "prefix %s out of order in %s", pref, line)
		pos = idx
	}
}

func TestStructuredHandlerCompactRID(t *testing.T) {
	for _, tc := range []struct {
		name     string
		format   logFormat
		contains []string
		absent   []string
	}{
		{
			name:     "kv omits full rid",
			format:   formatKV,
			contains: []string{"rid=" + CompactRID("123:456:789")},
			absent:   []string{"rid_full="},
		},
		{
			name:     "json keeps full rid",
			format:   formatJSON,
			contains: []string{`"rid":"` + CompactRID("123:456:789") + `"`, `"rid_full":"123:456:789"`, `"ts_unix_nano"`},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			log, output := newTestLogger(t, tc.format)
			LogEvent(WithRID(context.Background(), "123:456:789"), log, slog.LevelInfo, "rid.test")
			line := output()
			for _, s := range tc.contains {
				assert.Contains(t, line, s)
			}
			for _, s := range tc.absent {
				assert.NotContains(t, line, s)
			}
		})
	}
}

func TestStructuredHandlerNormalizesValues(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	log.LogAttrs(context.Background(), slog.LevelInfo, "catalog.load",
		slog.Duration("duration", 1500*time.Microsecond),
		slog.Any("lookup", 3*time.Second),
		slog.Any("cause", errors.New("no rows")),
		slog.String("outcome", "bogus"),
		slog.String("payload", "  "),
		slog.Group("geo", slog.Float64("lat", 55.75)),
	)

	line := output()
	assert.Contains(t, line, "component=app")
	assert.Contains(t, line, "event=catalog.load")
	assert.Contains(t, line, "duration_ms=2")
	assert.Contains(t, line, "lookup_ms=3000")
	assert.Contains(t, line, `cause="no rows"`)
	assert.Contains(t, line, "geo.lat=55.75")
	assert.NotContains(t, line, "outcome=")
	assert.NotContains(t, line, "payload=")
}

func TestStructuredHandlerLevelFilter(t *testing.T) {
	log, output := newTestLogger(t, formatKV)
	log.Debug("hidden")
	log.Warn("shown")
	line := output()
	assert.NotContains(t, line, "hidden")
	assert.Contains(t, line, "level=WARN")
}

func TestRatioSampler(t *testing.T) {
	s := newRatioSampler(1, 3)
	var got []bool
	for range 6 {
		got = append(got, s.Allow())
	}
	assert.Equal(t, []bool{true, false, false, true, false, false}, got)

	s.Set(0, 0)
	assert.True(t, s.Allow())
}

func TestParseRatioSpec(t *testing.T) {
	for spec, want := range map[string][2]int{
		"1/50": {1, 50},
		"20":   {1, 20},
		"0":    {0, 0},
		"x/y":  {0, 0},
		"":     {0, 0},
	} {
		num, den := parseRatioSpec(spec)
		assert.Equal(t, want, [2]int{num, den}, spec)
	}
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "ab\ncd", Sanitize("a\x00b\ncd\u200b"))
	assert.Equal(t, "héll", SanitizeLimit("héllo", 4))
	assert.Empty(t, SanitizeLimit("x", 0))
}

func TestCompactRID(t *testing.T) {
	assert.Equal(t, "z.10.11", CompactRID("35:36:37"))
	assert.Equal(t, "not-a-rid", CompactRID("not-a-rid"))
}

func TestResolveSettings(t *testing.T) {
	noEnv := func(string) string { return "" }

	st := resolveSettings(nil, noEnv)
	assert.Equal(t, slog.LevelInfo, st.level)
	assert.Equal(t, formatJSON, st.format)
	assert.Equal(t, "prod", st.profile)
	assert.Equal(t, [2]int{1, 50}, [2]int{st.sampleNum, st.sampleDen})
	assert.False(t, st.trace)

	cfg := &coreconfig.Config{Logging: coreconfig.LoggingConfig{
		Level:       "WARNING",
		Profile:     "Dev",
		KeysOrder:   "ts, level,,event",
		DebugSample: "2/10",
		Dir:         "/var/log/cinebot",
		BotFile:     "bot.log",
	}}
	st = resolveSettings(cfg, func(k string) string {
		if k == "LOG_TRACE" {
			return "yes"
		}
		return ""
	})
	assert.Equal(t, slog.LevelWarn, st.level)
	assert.Equal(t, formatKV, st.format)
	assert.Equal(t, "dev", st.profile)
	assert.Equal(t, []string{"ts", "level", "event"}, st.keyOrder)
	assert.Equal(t, [2]int{2, 10}, [2]int{st.sampleNum, st.sampleDen})
	assert.Equal(t, "/var/log/cinebot/bot.log", st.filePath)
	assert.True(t, st.trace)

	cfg.Logging.Format = "json"
	cfg.Logging.DebugSample = "0/0"
	st = resolveSettings(cfg, noEnv)
	assert.Equal(t, formatJSON, st.format)
	assert.Zero(t, st.sampleDen)
}

func TestContextMetaIsCopied(t *testing.T) {
	parent := WithRID(context.Background(), "1:2:3")
	child := WithHandler(WithUpdateMeta(parent, 9, 42, 7), "start")

	assert.Equal(t, "1:2:3", RIDFrom(child))
	assert.Equal(t, 9, UpdateIDFrom(child))
	assert.Equal(t, int64(42), UserIDFrom(child))
	assert.Equal(t, int64(7), ChatIDFrom(child))
	assert.Equal(t, "start", HandlerFrom(child))

	assert.Empty(t, HandlerFrom(parent))
	assert.Zero(t, UpdateIDFrom(parent))
	assert.Equal(t, "start", HandlerFrom(WithHandler(child, "")))
}
