package router

import (
	"context"
	"log/slog"
	"time"

	"github.com/m3rciful/cinebot/core/logger"
	tg "github.com/m3rciful/cinebot/core/telegram"
	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"
	"github.com/m3rciful/cinebot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// ActionKey is the tele.Context key under which the decoded action is stored.
const ActionKey = "action"

// Decoder turns raw callback data into a registered action kind and its decoded value.
type Decoder func(ctx context.Context, data string) (kind string, value any, err error)

// CallbackOptions configures CallbackRoute.
type CallbackOptions struct {
	Decode Decoder
}

// ackContext answers the callback query at most once.
type ackContext struct {
	tele.Context
	acked bool
}

func (a *ackContext) Respond(resp ...*tele.CallbackResponse) error {
	if a.acked {
		return nil
	}
	a.acked = true
	return a.Context.Respond(resp...)
}

func (a *ackContext) RespondText(text string) error {
	return a.Respond(&tele.CallbackResponse{Text: text})
}

func (a *ackContext) RespondAlert(text string) error {
	return a.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
}

// CallbackRoute decodes callback data and dispatches it to the action handler
// registered for its kind. Undecodable or unknown payloads are dropped. The
// callback is always acknowledged exactly once; handlers may answer it
// themselves to show a toast.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		start := time.Now()
		ac := &ackContext{Context: c}
		defer func() {
			if !ac.acked {
				_ = ac.Respond()
			}
		}()

		kind, value, err := opts.Decode(tghelpers.BuildContext(c), cb.Data)
		if err != nil {
			logHandlerSummary(c, "callback.undecodable", start, summary{status: "skip", outcome: "dropped"}, nil,
				slog.String("payload", logger.SanitizeLimit(cb.Data, 128)),
				slog.String("cause", logger.SanitizeLimit(err.Error(), 256)),
			)
			return nil
		}
		h, ok := reg.Action(kind)
		if !ok {
			logHandlerSummary(c, "callback.unregistered", start, summary{status: "skip", outcome: "dropped"}, nil,
				slog.String("kind", kind),
			)
			return nil
		}

		c.Set(ActionKey, value)
		return handleWithSummary(ac, "callback."+kind, h, slog.String("kind", kind))
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
