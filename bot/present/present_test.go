package present

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/bot/action"
	"github.com/m3rciful/cinebot/bot/geo"
	"github.com/m3rciful/cinebot/bot/menu"
	"github.com/m3rciful/cinebot/bot/model"
)

const (
	filmID   = "123e4567-e89b-12d3-a456-426614174000"
	cinemaID = "5f1d8f6a-0f5c-4d3e-8a52-2b7f1c0d9e01"
)

func newCards() *Cards {
	return NewCards(action.NewPacker(action.NewMemoryStash(), time.Hour), "")
}

func TestFilmList(t *testing.T) {
	films := []model.Film{
		{UUID: filmID, Name: "Tom & Jerry"},
		{UUID: "9b2f7d2e-55a4-4c3e-9a43-1f0a3c9e2b11", Name: "Hot Fuzz"},
	}
	got := FilmList(films, map[string]bool{filmID: true})
	want := "1. Tom &amp; Jerry - /f" + filmID + " ★\n" +
		"2. Hot Fuzz - /f9b2f7d2e-55a4-4c3e-9a43-1f0a3c9e2b11"
	assert.Equal(t, want, got)
	assert.Empty(t, FilmList(nil, nil))
}

func TestCinemaLists(t *testing.T) {
	c := model.Cinema{UUID: cinemaID, Name: "Kyiv"}
	assert.Equal(t, "1. Kyiv - /c"+cinemaID, CinemaList([]model.Cinema{c}))
	assert.Equal(t, "1. Kyiv - /c"+cinemaID+" (0.4 km)",
		RankedCinemaList([]geo.Ranked{{Cinema: c, DistanceKM: 0.3999}}))
}

func TestKeyboard(t *testing.T) {
	home := Keyboard(menu.StateHome)
	require.Len(t, home.ReplyKeyboard, 2)
	assert.Equal(t, menu.LabelFilms, home.ReplyKeyboard[0][0].Text)
	assert.Equal(t, menu.LabelFavourite, home.ReplyKeyboard[1][0].Text)

	films := Keyboard(menu.StateFilms)
	require.Len(t, films.ReplyKeyboard, 3)
	assert.Equal(t, []tele.ReplyButton{{Text: menu.LabelAction}, {Text: menu.LabelComedy}}, films.ReplyKeyboard[1])

	cinemas := Keyboard(menu.StateCinemas)
	require.Len(t, cinemas.ReplyKeyboard, 2)
	assert.True(t, cinemas.ReplyKeyboard[0][0].Location)

	assert.Equal(t, home, Keyboard("unknown"))
}

func TestFilmCardDefaultsLanguage(t *testing.T) {
	f := model.Film{UUID: filmID, Name: "The Mask", Year: 1994, Rating: 6.9, Runtime: "101 min", Country: "USA"}
	card, err := newCards().Film(context.Background(), f, false)
	require.NoError(t, err)
	assert.Nil(t, card.Photo)
	assert.Equal(t, "<b>The Mask</b>\nYear: 1994\nRating: 6.9\nRuntime: 101 min\nCountry: USA\nLanguage: English", card.Caption)

	lang := "French"
	f.Language = &lang
	f.Poster = "https://img/mask.jpg"
	card, err = NewCards(action.NewPacker(action.NewMemoryStash(), time.Hour), "German").Film(context.Background(), f, false)
	require.NoError(t, err)
	require.NotNil(t, card.Photo)
	assert.Contains(t, card.Caption, "Language: French")
}

func TestFilmMarkup(t *testing.T) {
	f := model.Film{UUID: filmID, Name: "The Mask", Link: "https://films/mask", Cinemas: []string{cinemaID}}
	markup, err := newCards().FilmMarkup(context.Background(), f, true)
	require.NoError(t, err)
	require.Len(t, markup.InlineKeyboard, 2)

	row := markup.InlineKeyboard[0]
	require.Len(t, row, 2)
	assert.Equal(t, "★ Remove from favourites", row[0].Text)
	assert.Equal(t, "Show cinemas (1)", row[1].Text)
	assert.Equal(t, "https://films/mask", markup.InlineKeyboard[1][0].URL)

	decoded, err := action.Decode(row[0].Data)
	require.NoError(t, err)
	assert.Equal(t, action.ToggleFavorite{FilmUUID: filmID, IsFav: true}, decoded)

	markup, err = newCards().FilmMarkup(context.Background(), model.Film{UUID: filmID}, false)
	require.NoError(t, err)
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Equal(t, "☆ Add to favourites", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "Show cinemas (0)", markup.InlineKeyboard[0][1].Text)
}

func TestCinemaCard(t *testing.T) {
	cn := model.Cinema{UUID: cinemaID, Name: "Kyiv", Link: "https://kyiv", Lat: 50.45, Lon: 30.52, Films: []string{filmID}}
	text, markup, err := newCards().Cinema(context.Background(), cn)
	require.NoError(t, err)
	assert.Equal(t, "<b>Kyiv</b>", text)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "Open website", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, "Show films (1)", markup.InlineKeyboard[1][1].Text)

	loc, err := action.Decode(markup.InlineKeyboard[1][0].Data)
	require.NoError(t, err)
	assert.Equal(t, action.ShowLocation{Lat: 50.45, Lon: 30.52}, loc)
}

func TestInlineResults(t *testing.T) {
	films := []model.Film{
		{UUID: filmID, Name: "The Mask", Poster: "https://img/mask.jpg", Link: "https://films/mask"},
		{UUID: "9b2f7d2e-55a4-4c3e-9a43-1f0a3c9e2b11", Name: "Hot Fuzz"},
	}
	results := newCards().InlineResults(films)
	require.Len(t, results, 2)

	photo, ok := results[0].(*tele.PhotoResult)
	require.True(t, ok)
	assert.Equal(t, filmID, photo.ResultID())
	assert.Equal(t, "https://img/mask.jpg", photo.URL)
	require.NotNil(t, photo.ReplyMarkup)
	assert.Equal(t, "Open film page", photo.ReplyMarkup.InlineKeyboard[0][0].Text)

	article, ok := results[1].(*tele.ArticleResult)
	require.True(t, ok)
	assert.Equal(t, "Hot Fuzz", article.Title)
	assert.Nil(t, article.ReplyMarkup)
}

func TestWelcomeAndToast(t *testing.T) {
	assert.Equal(t, "Hello, Ann &lt;3!\nTo start using this bot, please select a command from list below:", Welcome("Ann <3"))
	assert.Equal(t, ToastAdded, Toast(true))
	assert.Equal(t, ToastRemoved, Toast(false))
}
