package handlers

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/bot/menu"
	"github.com/m3rciful/cinebot/bot/model"
	"github.com/m3rciful/cinebot/bot/present"
	"github.com/m3rciful/cinebot/bot/query"
	"github.com/m3rciful/cinebot/core/logger"
	tghelpers "github.com/m3rciful/cinebot/core/telegram/helpers"
	"github.com/m3rciful/cinebot/core/telegram/state"
)

// OnText classifies a text message and runs exactly one handler for it.
// Unrecognised text gets no reply.
func (r *Router) OnText(c tele.Context) error {
	cl := menu.Classify(c.Text())
	ctx := tghelpers.BuildContext(c)
	current := r.currentMenu(c)
	target := cl.Intent.Target(current)
	logger.Debug(ctx, "tg", "text.classified",
		slog.String("intent", cl.Intent.String()),
		slog.String("menu", string(current)),
		slog.String("target", string(target)),
	)

	switch cl.Intent {
	case menu.Start:
		return r.onStart(c)
	case menu.Films:
		return r.showMenu(c, target, present.TextFilmsPrompt)
	case menu.Cinemas:
		return r.showMenu(c, target, present.TextLocationPrompt)
	case menu.Back:
		return r.showMenu(c, target, present.TextBack)
	case menu.Favourites:
		return r.showFavourites(c, target)
	case menu.GenreRandom:
		return r.listFilms(c, query.ForRandom(), target)
	case menu.GenreAction:
		return r.listFilms(c, query.ForGenre(model.GenreAction), target)
	case menu.GenreComedy:
		return r.listFilms(c, query.ForGenre(model.GenreComedy), target)
	case menu.FilmLink:
		return r.showFilm(c, cl.UUID)
	case menu.CinemaLink:
		return r.showCinema(c, cl.UUID)
	}
	logger.Debug(ctx, "tg", "route.miss", slog.String("status", "skip"))
	return nil
}

func (r *Router) onStart(c tele.Context) error {
	var name string
	if u := c.Sender(); u != nil {
		name = u.FirstName
	}
	st := menu.Start.Target(r.currentMenu(c))
	r.setMenu(c, st)
	return tghelpers.SendHTML(c, present.Welcome(name), present.Keyboard(st))
}

func (r *Router) onReload(c tele.Context) error {
	if err := r.deps.Catalog.Invalidate(tghelpers.BuildContext(c)); err != nil {
		return r.fail(c, err)
	}
	return tghelpers.SendText(c, present.TextCatalogReload)
}

func (r *Router) showMenu(c tele.Context, st state.State, text string) error {
	r.setMenu(c, st)
	return tghelpers.SendText(c, text, present.Keyboard(st))
}

// favouriteSet loads the sender's favourites as a set.
func (r *Router) favouriteSet(ctx context.Context, userID int64) (map[string]bool, error) {
	if userID == 0 {
		return map[string]bool{}, nil
	}
	ids, err := r.deps.Favorites.Favorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set, nil
}

// listFilms finds films and the sender's favourites concurrently and sends
// the list under the st keyboard.
func (r *Router) listFilms(c tele.Context, f query.Filter, st state.State) error {
	ctx := tghelpers.BuildContext(c)
	var (
		films []model.Film
		favs  map[string]bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		films, err = r.deps.Films.Find(gctx, f)
		return err
	})
	g.Go(func() (err error) {
		favs, err = r.favouriteSet(gctx, senderID(c))
		return err
	})
	if err := g.Wait(); err != nil {
		return r.fail(c, err)
	}
	return r.sendList(c, st, len(films), func() string { return present.FilmList(films, favs) })
}

func (r *Router) showFavourites(c tele.Context, st state.State) error {
	ctx := tghelpers.BuildContext(c)
	favs, err := r.favouriteSet(ctx, senderID(c))
	if err != nil {
		return r.fail(c, err)
	}
	ids := make([]string, 0, len(favs))
	for id := range favs {
		ids = append(ids, id)
	}
	films, err := r.deps.Films.Find(ctx, query.ForUUIDs(ids))
	if err != nil {
		return r.fail(c, err)
	}
	return r.sendList(c, st, len(films), func() string { return present.FilmList(films, favs) })
}

// showFilm loads the film and the sender's favourite flag concurrently and
// sends its detail card.
func (r *Router) showFilm(c tele.Context, id string) error {
	ctx := tghelpers.BuildContext(c)
	var (
		film  model.Film
		isFav bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		film, err = r.deps.Films.Get(gctx, id)
		return err
	})
	if uid := senderID(c); uid != 0 {
		g.Go(func() (err error) {
			isFav, err = r.deps.Favorites.IsFavorite(gctx, uid, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return r.fail(c, err)
	}

	card, err := r.cards.Film(ctx, film, isFav)
	if err != nil {
		return r.fail(c, err)
	}
	logger.Debug(ctx, "tg", "film.card",
		slog.String("film_uuid", film.UUID),
		slog.Bool("is_fav", isFav),
	)
	if card.Photo != nil {
		return tghelpers.SendPhoto(c, card.Photo, card.Markup)
	}
	return tghelpers.SendHTML(c, card.Caption, card.Markup)
}

func (r *Router) showCinema(c tele.Context, id string) error {
	ctx := tghelpers.BuildContext(c)
	cinema, err := r.deps.Cinemas.Get(ctx, id)
	if err != nil {
		return r.fail(c, err)
	}
	text, markup, err := r.cards.Cinema(ctx, cinema)
	if err != nil {
		return r.fail(c, err)
	}
	return tghelpers.SendHTML(c, text, markup)
}
