package handlers

import (
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/bot/geo"
	"github.com/m3rciful/cinebot/bot/menu"
	"github.com/m3rciful/cinebot/bot/present"
	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"
)

// OnLocation ranks every cinema by distance from a shared location,
// whatever menu the chat is in.
func (r *Router) OnLocation(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Location == nil {
		return nil
	}
	origin := geo.Point{Lat: float64(msg.Location.Lat), Lon: float64(msg.Location.Lng)}

	cinemas, err := r.deps.Cinemas.All(tghelpers.BuildContext(c))
	if err != nil {
		return r.fail(c, err)
	}
	ranked := geo.Rank(origin, cinemas)
	return r.sendList(c, menu.StateHome, len(ranked), func() string { return present.RankedCinemaList(ranked) })
}
