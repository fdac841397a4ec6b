package handlers

import (
	"log/slog"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/core/logger"
	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"
)

// maxInlineResults is Telegram's limit per inline answer.
const maxInlineResults = 50

// OnInline answers any inline query with the film catalog.
func (r *Router) OnInline(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	films, err := r.deps.Catalog.Films(ctx)
	if err != nil {
		logger.Error(ctx, "tg", "inline.failed", logger.Err(err))
		return err
	}
	results := r.cards.InlineResults(films)
	if len(results) > maxInlineResults {
		logger.Warn(ctx, "tg", "inline.truncated",
			slog.Int("total", len(results)),
			slog.Int("shown", maxInlineResults),
		)
		results = results[:maxInlineResults]
	}
	logger.Debug(ctx, "tg", "inline.answer", slog.Int("count", len(results)))
	return c.Answer(&tele.QueryResponse{
		Results:   results,
		CacheTime: 1,
	})
}
