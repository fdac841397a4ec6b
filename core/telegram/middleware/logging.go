package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/cinebot/core/logger"
	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// recentUpdates remembers update ids for a short while so that an update
// passing through several wrapped branches is logged once.
type recentUpdates struct {
	mu   sync.Mutex
	keep time.Duration
	seen map[int]time.Time
}

var received = &recentUpdates{keep: 10 * time.Second, seen: make(map[int]time.Time)}

func (r *recentUpdates) first(updateID int, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, ts := range r.seen {
		if now.Sub(ts) > r.keep {
			delete(r.seen, id)
		}
	}
	if _, ok := r.seen[updateID]; ok {
		return false
	}
	r.seen[updateID] = now
	return true
}

// LoggerMiddleware sets the correlation id and request context for the update
// and logs a sampled debug receipt line once per update.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		var chatID, userID int64
		chat, user := c.Chat(), c.Sender()
		if chat != nil {
			chatID = chat.ID
		}
		if user != nil {
			userID = user.ID
		}
		upd := c.Update()
		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set(tghelpers.RIDKey, rid)

		ctx := logger.WithRID(context.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.TG)
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && received.first(upd.ID, time.Now()) {
			logReceipt(ctx, c, upd)
		}
		return next(c)
	}
}

func logReceipt(ctx context.Context, c tele.Context, upd tele.Update) {
	attrs := []slog.Attr{
		slog.String("status", "ok"),
		slog.String("kind", UpdateKind(upd)),
	}
	if chat := c.Chat(); chat != nil {
		attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
	}
	if user := c.Sender(); user != nil {
		attrs = append(attrs,
			slog.String("username", logger.SanitizeLimit(user.Username, 64)),
			slog.String("lang", user.LanguageCode),
		)
	}
	switch {
	case upd.Callback != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Callback.Data, 128)))
	case upd.Query != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Query.Text, 256)))
	case upd.Message != nil && upd.Message.Location != nil:
		attrs = append(attrs, slog.String("payload", "location"))
	case upd.Message != nil:
		attrs = append(attrs, slog.String("payload", logger.SanitizeLimit(upd.Message.Text, 256)))
	}
	logger.LogEvent(ctx, logger.TG, slog.LevelDebug, "update.received", attrs...)
}
