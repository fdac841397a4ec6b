package handlers

import (
	"log/slog"

	"github.com/cockroachdb/errors"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/bot/menu"
	"github.com/m3rciful/cinebot/bot/present"
	"github.com/m3rciful/cinebot/bot/store"
	"github.com/m3rciful/cinebot/core/logger"
	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"
	"github.com/m3rciful/cinebot/core/telegram/state"
)

func (r *Router) currentMenu(c tele.Context) state.State {
	if chat := c.Chat(); chat != nil {
		return state.From(c, r.deps.Menus.Get(chat.ID))
	}
	return state.From(c, menu.StateHome)
}

func (r *Router) setMenu(c tele.Context, st state.State) {
	if chat := c.Chat(); chat != nil {
		r.deps.Menus.Set(chat.ID, st)
	}
}

func senderID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

// sendList sends text under the keyboard for st, or the not-found text when
// the list is empty, and records st as the chat's menu.
func (r *Router) sendList(c tele.Context, st state.State, n int, text func() string) error {
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "list.render",
		slog.String("menu", string(st)),
		slog.Int("count", n),
	)
	r.setMenu(c, st)
	if n == 0 {
		return tghelpers.SendText(c, present.TextNotFound, present.Keyboard(st))
	}
	return tghelpers.SendHTML(c, text(), present.Keyboard(st))
}

// fail tells the user something went wrong and returns err for the handler
// summary. Missing entities are not failures.
func (r *Router) fail(c tele.Context, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return tghelpers.SendText(c, present.TextNotFound, present.Keyboard(r.currentMenu(c)))
	}
	if c.Callback() != nil {
		_ = c.RespondAlert(present.TextFailure)
		return err
	}
	_ = tghelpers.SendText(c, present.TextFailure)
	return err
}

// OnLimited answers rate-limited callbacks so the client stops its spinner.
// Limited messages are dropped without a reply.
func (r *Router) OnLimited(c tele.Context) error {
	if c.Callback() == nil {
		return nil
	}
	return c.Respond(&tele.CallbackResponse{Text: present.TextSlowDown})
}
