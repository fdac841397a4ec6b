// Package present renders catalog data into Telegram messages and keyboards.
package present

import (
	"strings"

	"github.com/m3rciful/cinebot/core/telegram/format"
)

// Fixed user-facing texts.
const (
	TextFilmsPrompt    = "Now choose film type:"
	TextBack           = "What would you like to watch?"
	TextLocationPrompt = "Share your location and I will find the nearest cinemas."
	TextNotFound       = "Nothing found."
	TextFailure        = "Something went wrong, please try again later."
	TextCatalogReload  = "Catalog cache cleared."
	TextSlowDown       = "Too many requests, slow down a little."

	ToastAdded   = "Added to favourites"
	ToastRemoved = "Removed from favourites"
)

// Welcome greets a user by first name.
func Welcome(firstName string) string {
	name := strings.TrimSpace(firstName)
	if name == "" {
		name = "there"
	}
	return "Hello, " + format.EscapeHTML(name) + "!\nTo start using this bot, please select a command from list below:"
}

// Toast returns the callback answer for a favourite change.
func Toast(isFav bool) string {
	if isFav {
		return ToastAdded
	}
	return ToastRemoved
}
