package middleware

import (
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/cinebot/core/logger"
	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval  time.Duration
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
}

// UpdateKind classifies an update as callback, message, inline_query or other.
func UpdateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}

// userLimiter remembers when each user was last let through. Entries older
// than interval are swept at most once per interval.
type userLimiter struct {
	interval  time.Duration
	mu        sync.Mutex
	lastSeen  map[int64]time.Time
	lastSweep time.Time
}

func newUserLimiter(interval time.Duration) *userLimiter {
	return &userLimiter{interval: interval, lastSeen: make(map[int64]time.Time)}
}

func (l *userLimiter) allow(userID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastSweep) >= l.interval {
		l.sweepLocked(now)
	}
	if last, ok := l.lastSeen[userID]; ok && now.Sub(last) < l.interval {
		return false
	}
	l.lastSeen[userID] = now
	return true
}

func (l *userLimiter) sweepLocked(now time.Time) {
	for id, last := range l.lastSeen {
		if now.Sub(last) >= l.interval {
			delete(l.lastSeen, id)
		}
	}
	l.lastSweep = now
}

// RateLimitMiddleware drops updates that arrive from the same user faster than opts.Interval.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	limiter := newUserLimiter(opts.Interval)
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}
			kind := UpdateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip || limiter.allow(user.ID, time.Now()) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), "tg", "rate_limit",
				slog.String("status", "rate_limited"),
				slog.String("kind", kind),
			)
			if opts.OnLimited != nil {
				return opts.OnLimited(c)
			}
			return nil
		}
	}
}
