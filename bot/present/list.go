package present

import (
	"strconv"
	"strings"

	"github.com/m3rciful/cinebot/bot/geo"
	"github.com/m3rciful/cinebot/bot/menu"
	"github.com/m3rciful/cinebot/bot/model"
	"github.com/m3rciful/cinebot/core/telegram/format"
)

type listEntry struct {
	name string
	link string
	note string
}

// listText renders "<i>. <name> - <link>" lines. Callers handle the empty case.
func listText(entries []listEntry) string {
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString(". ")
		b.WriteString(format.EscapeHTML(e.name))
		b.WriteString(" - ")
		b.WriteString(e.link)
		if e.note != "" {
			b.WriteByte(' ')
			b.WriteString(e.note)
		}
	}
	return b.String()
}

// FilmList renders films with deep links; films in favs are starred.
func FilmList(films []model.Film, favs map[string]bool) string {
	entries := make([]listEntry, len(films))
	for i, f := range films {
		entries[i] = listEntry{name: f.Name, link: menu.FilmLinkFor(f.UUID)}
		if favs[f.UUID] {
			entries[i].note = "★"
		}
	}
	return listText(entries)
}

// CinemaList renders cinemas with deep links.
func CinemaList(cinemas []model.Cinema) string {
	entries := make([]listEntry, len(cinemas))
	for i, c := range cinemas {
		entries[i] = listEntry{name: c.Name, link: menu.CinemaLinkFor(c.UUID)}
	}
	return listText(entries)
}

// RankedCinemaList renders cinemas with their distance from the user.
func RankedCinemaList(ranked []geo.Ranked) string {
	entries := make([]listEntry, len(ranked))
	for i, r := range ranked {
		entries[i] = listEntry{
			name: r.Cinema.Name,
			link: menu.CinemaLinkFor(r.Cinema.UUID),
			note: "(" + strconv.FormatFloat(geo.RoundKM(r.DistanceKM), 'f', 1, 64) + " km)",
		}
	}
	return listText(entries)
}
