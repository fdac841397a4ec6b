// Package menu classifies chat text into intents and tracks which menu a
// chat is looking at.
package menu

import (
	"strings"

	"github.com/google/uuid"

	"github.com/m3rciful/cinebot/core/telegram/state"
)

// Menu states.
const (
	StateHome    state.State = "home"
	StateFilms   state.State = "films"
	StateCinemas state.State = "cinemas"
)

// Reply keyboard labels.
const (
	LabelFilms        = "Films"
	LabelCinemas      = "Cinemas"
	LabelFavourite    = "Favourite"
	LabelRandom       = "Random"
	LabelAction       = "Action"
	LabelComedy       = "Comedy"
	LabelBack         = "Back"
	LabelSendLocation = "Send location"
)

// Deep-link prefixes.
const (
	FilmPrefix   = "/f"
	CinemaPrefix = "/c"
)

// Intent is what a text message asks for.
type Intent int

const (
	None Intent = iota
	Start
	Films
	Cinemas
	Favourites
	Back
	GenreRandom
	GenreAction
	GenreComedy
	FilmLink
	CinemaLink
)

var intentNames = [...]string{
	None:        "none",
	Start:       "start",
	Films:       "films",
	Cinemas:     "cinemas",
	Favourites:  "favourites",
	Back:        "back",
	GenreRandom: "genre_random",
	GenreAction: "genre_action",
	GenreComedy: "genre_comedy",
	FilmLink:    "film_link",
	CinemaLink:  "cinema_link",
}

func (i Intent) String() string {
	if i < 0 || int(i) >= len(intentNames) {
		return "unknown"
	}
	return intentNames[i]
}

// Target returns the menu shown after handling i; current is kept for
// intents that do not navigate.
func (i Intent) Target(current state.State) state.State {
	switch i {
	case Start, Back, Favourites:
		return StateHome
	case Films, GenreRandom, GenreAction, GenreComedy:
		return StateFilms
	case Cinemas:
		return StateCinemas
	}
	return current
}

// Classified is a classified text message. UUID is set for deep links.
type Classified struct {
	Intent Intent
	UUID   string
}

var labels = map[string]Intent{
	strings.ToLower(LabelFilms):     Films,
	strings.ToLower(LabelCinemas):   Cinemas,
	strings.ToLower(LabelFavourite): Favourites,
	strings.ToLower(LabelRandom):    GenreRandom,
	strings.ToLower(LabelAction):    GenreAction,
	strings.ToLower(LabelComedy):    GenreComedy,
	strings.ToLower(LabelBack):      Back,
}

// Classify maps message text onto an Intent. Unrecognised text yields None.
func Classify(text string) Classified {
	text = strings.TrimSpace(text)
	if text == "" {
		return Classified{}
	}
	if strings.HasPrefix(text, "/") {
		if cmd := commandName(text); cmd == "/start" {
			return Classified{Intent: Start}
		}
		if prefix, id, ok := ParseDeepLink(text); ok {
			if prefix == FilmPrefix {
				return Classified{Intent: FilmLink, UUID: id}
			}
			return Classified{Intent: CinemaLink, UUID: id}
		}
		return Classified{}
	}
	return Classified{Intent: labels[strings.ToLower(text)]}
}

// ParseDeepLink splits "/f<uuid>" or "/c<uuid>" (optionally followed by
// "@botname" or arguments) into its prefix and canonical UUID.
func ParseDeepLink(text string) (prefix, id string, ok bool) {
	cmd := commandName(text)
	for _, p := range []string{FilmPrefix, CinemaPrefix} {
		rest, found := strings.CutPrefix(cmd, p)
		if !found {
			continue
		}
		u, err := uuid.Parse(rest)
		if err != nil || len(rest) != 36 {
			return "", "", false
		}
		return p, u.String(), true
	}
	return "", "", false
}

// FilmLinkFor renders the deep link for a film.
func FilmLinkFor(id string) string { return FilmPrefix + id }

// CinemaLinkFor renders the deep link for a cinema.
func CinemaLinkFor(id string) string { return CinemaPrefix + id }

func commandName(text string) string {
	name, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	name, _, _ = strings.Cut(name, "@")
	return name
}
