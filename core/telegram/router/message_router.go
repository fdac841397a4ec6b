package router

import (
	"time"

	tg "github.com/m3rciful/cinebot/core/telegram"
	"github.com/m3rciful/cinebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// TextRoute handles plain text: registered commands first (including
// "/cmd@bot" forms telebot did not match), then the registry's text fallback.
// Text nobody claims is logged as skipped and gets no reply.
func TextRoute(reg *tg.Registry, opts CommandRouteOptions) tg.Route {
	handler := func(c tele.Context) error {
		if key, cmd, ok := reg.LookupCommand(c.Text()); ok {
			return wrapCommand(key, cmd, opts)(c)
		}
		if fb := reg.TextFallback(); fb != nil {
			return handleWithSummary(c, "text", fb)
		}
		logHandlerSummary(c, "unknown_text", time.Now(), summary{status: "skip", outcome: "dropped"}, nil)
		return nil
	}
	return tg.Route{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}

// LocationRoute handles shared locations regardless of the current menu.
func LocationRoute(h tele.HandlerFunc) tg.Route {
	return simpleRoute(tele.OnLocation, "location", h)
}

// InlineRoute handles inline-mode queries.
func InlineRoute(h tele.HandlerFunc) tg.Route {
	return simpleRoute(tele.OnQuery, "inline", h)
}

func simpleRoute(endpoint, name string, h tele.HandlerFunc) tg.Route {
	handler := func(c tele.Context) error {
		return handleWithSummary(c, name, h)
	}
	return tg.Route{
		Endpoint: endpoint,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
