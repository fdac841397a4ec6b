package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/cinebot/core/logger"
	"github.com/m3rciful/cinebot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
// A nil dispatcher makes helpers send synchronously.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}
	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, run)
	if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("err", err.Error()),
		)
		return run()
	}
	return err
}

func htmlOptions(markup []*tele.ReplyMarkup) *tele.SendOptions {
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, DisableWebPagePreview: true}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return opts
}

// SendText sends raw text (no parse mode) to the current chat.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return sendAsync(c, "send.text", func() error {
		if len(markup) > 0 && markup[0] != nil {
			return c.Send(text, markup[0])
		}
		return c.Send(text)
	})
}

// SendHTML sends an HTML formatted message with an optional keyboard.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := htmlOptions(markup)
	return sendAsync(c, "send.html", func() error {
		return c.Send(text, opts)
	})
}

// SendPhoto sends a photo with an HTML caption and an optional keyboard.
func SendPhoto(c tele.Context, photo *tele.Photo, markup ...*tele.ReplyMarkup) error {
	opts := htmlOptions(markup)
	return sendAsync(c, "send.photo", func() error {
		return c.Send(photo, opts)
	})
}

// SendLocation sends a map pin.
func SendLocation(c tele.Context, lat, lon float64) error {
	loc := &tele.Location{Lat: float32(lat), Lng: float32(lon)}
	return sendAsync(c, "send.location", func() error {
		return c.Send(loc)
	})
}

// EditMarkup replaces the inline keyboard of the message the callback came from.
func EditMarkup(c tele.Context, markup *tele.ReplyMarkup) error {
	return sendAsync(c, "edit.markup", func() error {
		return c.Edit(markup)
	})
}
