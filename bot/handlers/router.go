// Package handlers routes Telegram updates to the catalog, favourites and
// geo ranking, and renders the replies.
package handlers

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/bot/action"
	"github.com/m3rciful/cinebot/bot/events"
	"github.com/m3rciful/cinebot/bot/menu"
	"github.com/m3rciful/cinebot/bot/model"
	"github.com/m3rciful/cinebot/bot/present"
	"github.com/m3rciful/cinebot/bot/query"
	tg "github.com/m3rciful/cinebot/core/telegram"
	"github.com/m3rciful/cinebot/core/telegram/router"
	"github.com/m3rciful/cinebot/core/telegram/state"
)

// FilmFinder reads films.
type FilmFinder interface {
	Find(ctx context.Context, f query.Filter) ([]model.Film, error)
	Get(ctx context.Context, id string) (model.Film, error)
}

// CinemaFinder reads cinemas.
type CinemaFinder interface {
	Find(ctx context.Context, f query.Filter) ([]model.Cinema, error)
	Get(ctx context.Context, id string) (model.Cinema, error)
	All(ctx context.Context) ([]model.Cinema, error)
}

// Favorites reads and changes per-user favourite sets.
type Favorites interface {
	IsFavorite(ctx context.Context, userID int64, filmUUID string) (bool, error)
	Favorites(ctx context.Context, userID int64) ([]string, error)
	SetFavorite(ctx context.Context, userID int64, filmUUID string, want bool) (bool, error)
}

// Catalog serves the full film list for inline mode.
type Catalog interface {
	Films(ctx context.Context) ([]model.Film, error)
	Invalidate(ctx context.Context) error
}

// Packer encodes and decodes callback data.
type Packer interface {
	Pack(ctx context.Context, i action.Intent) (string, error)
	Unpack(ctx context.Context, data string) (action.Intent, error)
}

// Deps are the collaborators of a Router. Events and Menus are optional.
type Deps struct {
	Films     FilmFinder
	Cinemas   CinemaFinder
	Favorites Favorites
	Catalog   Catalog
	Packer    Packer
	Menus     state.Manager
	Events    events.Publisher
	// Language is shown for films without one.
	Language string
}

// Router handles every update kind the bot serves.
type Router struct {
	deps  Deps
	cards *present.Cards
}

// New returns a Router over d.
func New(d Deps) *Router {
	if d.Menus == nil {
		d.Menus = state.NewMemoryManager(menu.StateHome, 24*time.Hour)
	}
	if d.Events == nil {
		d.Events = events.NopPublisher{}
	}
	return &Router{deps: d, cards: present.NewCards(d.Packer, d.Language)}
}

// Register adds the bot's commands, text fallback and callback actions to reg.
func (r *Router) Register(reg *tg.Registry) error {
	reg.RegisterCommand("/start", tg.Command{
		Handler:     r.onStart,
		Description: "Open the main menu",
	})
	reg.RegisterCommand("/reload", tg.Command{
		Handler:     r.onReload,
		Description: "Clear the catalog cache",
		AdminOnly:   true,
		Hidden:      true,
	})
	reg.SetTextFallback(r.OnText)

	actions := map[action.Kind]tele.HandlerFunc{
		action.KindToggleFavorite: r.onToggleFavorite,
		action.KindShowCinemas:    r.onShowCinemas,
		action.KindShowLocation:   r.onShowLocation,
		action.KindShowFilms:      r.onShowFilms,
	}
	for _, kind := range action.Kinds() {
		h, ok := actions[kind]
		if !ok {
			return errors.Newf("no handler for action %s", kind)
		}
		if err := reg.RegisterAction(string(kind), h); err != nil {
			return errors.Wrapf(err, "register action %s", kind)
		}
	}
	return nil
}

// Decode resolves callback data into its action kind and intent.
func (r *Router) Decode(ctx context.Context, data string) (string, any, error) {
	i, err := r.deps.Packer.Unpack(ctx, data)
	if err != nil {
		return "", nil, err
	}
	return string(i.Kind()), i, nil
}

// Routes returns the bot routes for reg, which must have been passed to
// Register first.
func (r *Router) Routes(reg *tg.Registry, opts router.CommandRouteOptions) []tg.Route {
	routes := router.CommandRoutes(reg, opts)
	return append(routes,
		router.TextRoute(reg, opts),
		router.LocationRoute(r.OnLocation),
		router.CallbackRoute(reg, router.CallbackOptions{Decode: r.Decode}),
		router.InlineRoute(r.OnInline),
	)
}
