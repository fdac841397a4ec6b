package state

import tele "gopkg.in/telebot.v4"

const contextKey = "menu_state"

// WithState stores the chat's current state in the update context.
func WithState(mgr Manager) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if chat := c.Chat(); chat != nil {
				c.Set(contextKey, mgr.Get(chat.ID))
			}
			return next(c)
		}
	}
}

// From returns the state stored by WithState, or fallback.
func From(c tele.Context, fallback State) State {
	if st, ok := c.Get(contextKey).(State); ok && st != "" {
		return st
	}
	return fallback
}
