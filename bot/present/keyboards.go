package present

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/bot/menu"
	"github.com/m3rciful/cinebot/core/telegram/keyboard"
	"github.com/m3rciful/cinebot/core/telegram/state"
)

// Keyboard returns the reply keyboard for a menu state. Unknown states get
// the home menu.
func Keyboard(st state.State) *tele.ReplyMarkup {
	switch st {
	case menu.StateFilms:
		return keyboard.ReplyButtons(
			[]string{menu.LabelRandom},
			[]string{menu.LabelAction, menu.LabelComedy},
			[]string{menu.LabelBack},
		)
	case menu.StateCinemas:
		return keyboard.ReplyRows(
			[]keyboard.Button{{Text: menu.LabelSendLocation, Location: true}},
			[]keyboard.Button{{Text: menu.LabelBack}},
		)
	default:
		return keyboard.ReplyButtons(
			[]string{menu.LabelFilms, menu.LabelCinemas},
			[]string{menu.LabelFavourite},
		)
	}
}
