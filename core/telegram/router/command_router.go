package router

import (
	"log/slog"

	"github.com/m3rciful/cinebot/core/logger"
	tg "github.com/m3rciful/cinebot/core/telegram"
	"github.com/m3rciful/cinebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes prepares one route per registered command, wrapped with the
// shared middleware and, for admin-only commands, the admin check.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}
	routes := make([]tg.Route, 0, len(reg.Commands()))
	for name, cmd := range reg.Commands() {
		routes = append(routes, tg.Route{
			Endpoint: name,
			Handler:  wrapCommand(name, cmd, opts),
		})
	}
	logger.TWire.Info("tg.wire",
		slog.String("event", "complete"),
		slog.Int("commands", len(reg.Commands())),
		slog.Int("actions", len(reg.ListActions())),
	)
	return routes
}

func wrapCommand(name string, cmd tg.Command, opts CommandRouteOptions) tele.HandlerFunc {
	h := cmd.Handler
	if cmd.AdminOnly {
		h = middleware.AdminOnlyMiddleware(middleware.AdminOptions{
			AdminID:  opts.AdminID,
			OnReject: opts.OnAdminReject,
		})(h)
	}
	handlerName := normalizeHandlerName(name)
	summarized := func(c tele.Context) error {
		return handleWithSummary(c, handlerName, h)
	}
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(summarized))
}
