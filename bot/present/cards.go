package present

import (
	"context"
	"strconv"

	"github.com/cockroachdb/errors"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/bot/action"
	"github.com/m3rciful/cinebot/bot/model"
	"github.com/m3rciful/cinebot/core/telegram/format"
	"github.com/m3rciful/cinebot/core/telegram/keyboard"
	"github.com/m3rciful/cinebot/core/telegram/ui"
)

// Packer turns an intent into callback data.
type Packer interface {
	Pack(ctx context.Context, i action.Intent) (string, error)
}

// Cards renders detail cards and inline results.
type Cards struct {
	packer   Packer
	language string
}

// NewCards returns Cards that pack button payloads with packer. language is
// shown for films that do not state one.
func NewCards(packer Packer, language string) *Cards {
	if language == "" {
		language = "English"
	}
	return &Cards{packer: packer, language: language}
}

// FilmCard is a rendered film detail. Photo is nil when the film has no poster.
type FilmCard struct {
	Photo   *tele.Photo
	Caption string
	Markup  *tele.ReplyMarkup
}

// FilmCaption renders the HTML caption of a film.
func (c *Cards) FilmCaption(f model.Film) string {
	var year, rating string
	if f.Year > 0 {
		year = strconv.Itoa(f.Year)
	}
	if f.Rating > 0 {
		rating = strconv.FormatFloat(f.Rating, 'f', 1, 64)
	}
	return format.Lines(
		format.Bold(f.Name),
		format.Field("Year", year),
		format.Field("Rating", rating),
		format.Field("Runtime", f.Runtime),
		format.Field("Country", f.Country),
		format.Field("Language", format.DerefString(f.Language, c.language)),
	)
}

// ToggleButton renders the favourite toggle for a film shown with isFav.
func (c *Cards) ToggleButton(ctx context.Context, filmUUID string, isFav bool) (keyboard.InlineBtn, error) {
	data, err := c.packer.Pack(ctx, action.ToggleFavorite{FilmUUID: filmUUID, IsFav: isFav})
	if err != nil {
		return keyboard.InlineBtn{}, errors.Wrap(err, "pack toggle")
	}
	label := "☆ Add to favourites"
	if isFav {
		label = "★ Remove from favourites"
	}
	return keyboard.InlineBtn{Text: label, Data: data}, nil
}

// FilmMarkup renders the film card keyboard for the given favourite flag.
func (c *Cards) FilmMarkup(ctx context.Context, f model.Film, isFav bool) (*tele.ReplyMarkup, error) {
	toggle, err := c.ToggleButton(ctx, f.UUID, isFav)
	if err != nil {
		return nil, err
	}
	cinemas, err := c.packer.Pack(ctx, action.ShowCinemas{CinemaUUIDs: f.Cinemas})
	if err != nil {
		return nil, errors.Wrap(err, "pack cinemas")
	}
	rows := [][]keyboard.InlineBtn{{
		toggle,
		{Text: "Show cinemas (" + strconv.Itoa(len(f.Cinemas)) + ")", Data: cinemas},
	}}
	if f.Link != "" {
		rows = append(rows, []keyboard.InlineBtn{{Text: "Open film page", URL: f.Link}})
	}
	return keyboard.InlineButtonsRows(rows...), nil
}

// Film renders a film detail card.
func (c *Cards) Film(ctx context.Context, f model.Film, isFav bool) (FilmCard, error) {
	markup, err := c.FilmMarkup(ctx, f, isFav)
	if err != nil {
		return FilmCard{}, err
	}
	card := FilmCard{Caption: c.FilmCaption(f), Markup: markup}
	if f.Poster != "" {
		card.Photo = &tele.Photo{File: tele.FromURL(f.Poster), Caption: card.Caption}
	}
	return card, nil
}

// Cinema renders a cinema detail card.
func (c *Cards) Cinema(ctx context.Context, cn model.Cinema) (string, *tele.ReplyMarkup, error) {
	loc, err := c.packer.Pack(ctx, action.ShowLocation{Lat: cn.Lat, Lon: cn.Lon})
	if err != nil {
		return "", nil, errors.Wrap(err, "pack location")
	}
	films, err := c.packer.Pack(ctx, action.ShowFilms{FilmUUIDs: cn.Films})
	if err != nil {
		return "", nil, errors.Wrap(err, "pack films")
	}
	var rows [][]keyboard.InlineBtn
	if cn.Link != "" {
		rows = append(rows, []keyboard.InlineBtn{{Text: "Open website", URL: cn.Link}})
	}
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "Show on map", Data: loc},
		{Text: "Show films (" + strconv.Itoa(len(cn.Films)) + ")", Data: films},
	})
	return format.Bold(cn.Name), keyboard.InlineButtonsRows(rows...), nil
}

// InlineResults lists films as inline query results. Films without a
// poster become article results.
func (c *Cards) InlineResults(films []model.Film) tele.Results {
	results := make(tele.Results, 0, len(films))
	for _, f := range films {
		var markup *tele.ReplyMarkup
		if f.Link != "" {
			markup = keyboard.InlineButtonsRows([]keyboard.InlineBtn{{Text: "Open film page", URL: f.Link}})
		}
		caption := c.FilmCaption(f)
		if f.Poster != "" {
			results = append(results, ui.NewPhotoResult(f.UUID, f.Poster, f.Name, caption, markup))
			continue
		}
		article := &tele.ArticleResult{Title: f.Name, Text: caption}
		article.SetResultID(f.UUID)
		article.ParseMode = tele.ModeHTML
		article.ReplyMarkup = markup
		results = append(results, article)
	}
	return results
}
