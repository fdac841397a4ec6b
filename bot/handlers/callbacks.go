package handlers

import (
	"context"
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/bot/action"
	"github.com/m3rciful/cinebot/bot/events"
	"github.com/m3rciful/cinebot/bot/present"
	"github.com/m3rciful/cinebot/bot/query"
	"github.com/m3rciful/cinebot/core/logger"
	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"
	"github.com/m3rciful/cinebot/core/telegram/keyboard"
	"github.com/m3rciful/cinebot/core/telegram/router"
)

const publishTimeout = 3 * time.Second

func (r *Router) onShowCinemas(c tele.Context) error {
	a, ok := c.Get(router.ActionKey).(action.ShowCinemas)
	if !ok {
		return nil
	}
	cinemas, err := r.deps.Cinemas.Find(tghelpers.BuildContext(c), query.ForUUIDs(a.CinemaUUIDs))
	if err != nil {
		return r.fail(c, err)
	}
	return r.sendList(c, r.currentMenu(c), len(cinemas), func() string { return present.CinemaList(cinemas) })
}

func (r *Router) onShowFilms(c tele.Context) error {
	a, ok := c.Get(router.ActionKey).(action.ShowFilms)
	if !ok {
		return nil
	}
	return r.listFilms(c, query.ForUUIDs(a.FilmUUIDs), r.currentMenu(c))
}

func (r *Router) onShowLocation(c tele.Context) error {
	a, ok := c.Get(router.ActionKey).(action.ShowLocation)
	if !ok {
		return nil
	}
	return tghelpers.SendLocation(c, a.Lat, a.Lon)
}

// onToggleFavorite sets the film's favourite flag to the opposite of the one
// the button was rendered with. Repeated taps on a stale button leave the
// set unchanged.
func (r *Router) onToggleFavorite(c tele.Context) error {
	a, ok := c.Get(router.ActionKey).(action.ToggleFavorite)
	uid := senderID(c)
	if !ok || uid == 0 {
		return nil
	}
	ctx := tghelpers.BuildContext(c)

	isFav, err := r.deps.Favorites.SetFavorite(ctx, uid, a.FilmUUID, !a.IsFav)
	if err != nil {
		return r.fail(c, err)
	}
	logger.Info(ctx, "tg", "favorite.set",
		slog.String("film_uuid", a.FilmUUID),
		slog.Bool("is_fav", isFav),
	)

	if err := r.refreshToggle(c, a.FilmUUID, isFav); err != nil {
		logger.Warn(ctx, "tg", "favorite.refresh_failed", logger.Err(err))
	}
	_ = c.Respond(&tele.CallbackResponse{Text: present.Toast(isFav)})
	r.publishToggle(ctx, uid, a.FilmUUID, isFav)
	return nil
}

// refreshToggle swaps the pressed button on the originating card for one
// reflecting isFav. Other buttons are kept as sent.
func (r *Router) refreshToggle(c tele.Context, filmUUID string, isFav bool) error {
	cb := c.Callback()
	if cb == nil || cb.Message == nil || cb.Message.ReplyMarkup == nil {
		return nil
	}
	btn, err := r.cards.ToggleButton(tghelpers.BuildContext(c), filmUUID, isFav)
	if err != nil {
		return err
	}
	markup, changed := replaceButton(cb.Message.ReplyMarkup, cb.Data, btn)
	if !changed {
		return nil
	}
	return tghelpers.EditMarkup(c, markup)
}

// replaceButton returns a copy of markup with the first button carrying data
// replaced by btn.
func replaceButton(markup *tele.ReplyMarkup, data string, btn keyboard.InlineBtn) (*tele.ReplyMarkup, bool) {
	matched, changed := false, false
	rows := make([][]tele.InlineButton, len(markup.InlineKeyboard))
	for i, row := range markup.InlineKeyboard {
		rows[i] = make([]tele.InlineButton, len(row))
		for j, b := range row {
			if b.Data == data && !matched {
				matched = true
				b.Text, b.Data = btn.Text, btn.Data
				changed = b.Text != row[j].Text || b.Data != row[j].Data
			}
			rows[i][j] = b
		}
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}, changed
}

func (r *Router) publishToggle(ctx context.Context, userID int64, filmUUID string, isFav bool) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	env := events.NewEnvelope(events.FavoriteToggledType, logger.RIDFrom(ctx), events.FavoriteToggled{
		UserID:   userID,
		FilmUUID: filmUUID,
		IsFav:    isFav,
	})
	if err := r.deps.Events.Publish(pctx, events.FavoriteToggledType, env); err != nil {
		logger.Warn(ctx, "events", "publish.failed",
			slog.String("routing_key", events.FavoriteToggledType),
			logger.Err(err),
		)
	}
}

