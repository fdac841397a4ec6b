package handlers

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/bot/action"
	"github.com/m3rciful/cinebot/bot/events"
	"github.com/m3rciful/cinebot/bot/menu"
	"github.com/m3rciful/cinebot/bot/model"
	"github.com/m3rciful/cinebot/bot/query"
	"github.com/m3rciful/cinebot/bot/store"
	"github.com/m3rciful/cinebot/core/telegram/state"
)

type sent struct {
	what any
	opts []any
}

// fakeContext implements the parts of tele.Context the handlers use.
type fakeContext struct {
	tele.Context

	upd       tele.Update
	store     map[string]any
	sent      []sent
	edits     []sent
	responses []*tele.CallbackResponse
	answers   []*tele.QueryResponse
}

func newFakeContext(upd tele.Update) *fakeContext {
	return &fakeContext{upd: upd, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update      { return f.upd }
func (f *fakeContext) Callback() *tele.Callback { return f.upd.Callback }
func (f *fakeContext) Query() *tele.Query       { return f.upd.Query }

func (f *fakeContext) Message() *tele.Message {
	switch {
	case f.upd.Message != nil:
		return f.upd.Message
	case f.upd.Callback != nil:
		return f.upd.Callback.Message
	}
	return nil
}

func (f *fakeContext) Sender() *tele.User {
	switch {
	case f.upd.Callback != nil:
		return f.upd.Callback.Sender
	case f.upd.Query != nil:
		return f.upd.Query.Sender
	case f.upd.Message != nil:
		return f.upd.Message.Sender
	}
	return nil
}

func (f *fakeContext) Chat() *tele.Chat {
	if m := f.Message(); m != nil {
		return m.Chat
	}
	return nil
}

func (f *fakeContext) Text() string {
	if m := f.Message(); m != nil {
		return m.Text
	}
	return ""
}

func (f *fakeContext) Get(key string) any      { return f.store[key] }
func (f *fakeContext) Set(key string, val any) { f.store[key] = val }

func (f *fakeContext) Send(what any, opts ...any) error {
	f.sent = append(f.sent, sent{what: what, opts: opts})
	return nil
}

func (f *fakeContext) Edit(what any, opts ...any) error {
	f.edits = append(f.edits, sent{what: what, opts: opts})
	return nil
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	var r *tele.CallbackResponse
	if len(resp) > 0 {
		r = resp[0]
	}
	f.responses = append(f.responses, r)
	return nil
}

func (f *fakeContext) Answer(resp *tele.QueryResponse) error {
	f.answers = append(f.answers, resp)
	return nil
}

func markupOf(s sent) *tele.ReplyMarkup {
	for _, o := range s.opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			return v
		case *tele.SendOptions:
			return v.ReplyMarkup
		}
	}
	return nil
}

type fakeFilms struct {
	films []model.Film
	err   error
}

func (f *fakeFilms) Find(_ context.Context, q query.Filter) ([]model.Film, error) {
	if f.err != nil {
		return nil, f.err
	}
	if q.MatchesNothing() {
		return []model.Film{}, nil
	}
	out := []model.Film{}
	for _, film := range f.films {
		if s := q.String(); s == "all" || s == "genre:"+film.Type || strings.HasPrefix(s, "uuids:") {
			out = append(out, film)
		}
	}
	return out, nil
}

func (f *fakeFilms) Get(_ context.Context, id string) (model.Film, error) {
	if f.err != nil {
		return model.Film{}, f.err
	}
	for _, film := range f.films {
		if film.UUID == id {
			return film, nil
		}
	}
	return model.Film{}, store.ErrNotFound
}

type fakeCinemas struct {
	cinemas []model.Cinema
}

func (f *fakeCinemas) Find(_ context.Context, q query.Filter) ([]model.Cinema, error) {
	if q.MatchesNothing() {
		return []model.Cinema{}, nil
	}
	return slices.Clone(f.cinemas), nil
}

func (f *fakeCinemas) All(ctx context.Context) ([]model.Cinema, error) {
	return f.Find(ctx, query.ForRandom())
}

func (f *fakeCinemas) Get(_ context.Context, id string) (model.Cinema, error) {
	for _, c := range f.cinemas {
		if c.UUID == id {
			return c, nil
		}
	}
	return model.Cinema{}, store.ErrNotFound
}

type fakeFavorites struct {
	mu    sync.Mutex
	sets  map[int64]map[string]bool
	err   error
	calls int
}

func newFakeFavorites() *fakeFavorites {
	return &fakeFavorites{sets: map[int64]map[string]bool{}}
}

func (f *fakeFavorites) IsFavorite(_ context.Context, userID int64, film string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.sets[userID][film], nil
}

func (f *fakeFavorites) Favorites(_ context.Context, userID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := []string{}
	for id := range f.sets[userID] {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func (f *fakeFavorites) SetFavorite(_ context.Context, userID int64, film string, want bool) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	f.calls++
	if f.sets[userID] == nil {
		f.sets[userID] = map[string]bool{}
	}
	if want {
		f.sets[userID][film] = true
	} else {
		delete(f.sets[userID], film)
	}
	return want, nil
}

type fakeCatalog struct {
	films       []model.Film
	invalidated int
}

func (f *fakeCatalog) Films(context.Context) ([]model.Film, error) { return f.films, nil }
func (f *fakeCatalog) Invalidate(context.Context) error {
	f.invalidated++
	return nil
}

type recordingPublisher struct {
	keys []string
	envs []events.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, key string, env events.Envelope) error {
	p.keys = append(p.keys, key)
	p.envs = append(p.envs, env)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	router    *Router
	films     *fakeFilms
	cinemas   *fakeCinemas
	favorites *fakeFavorites
	catalog   *fakeCatalog
	events    *recordingPublisher
	menus     state.Manager
}

func newFixture() *fixture {
	fx := &fixture{
		films:     &fakeFilms{},
		cinemas:   &fakeCinemas{},
		favorites: newFakeFavorites(),
		catalog:   &fakeCatalog{},
		events:    &recordingPublisher{},
		menus:     state.NewMemoryManager(menu.StateHome, time.Hour),
	}
	fx.router = New(Deps{
		Films:     fx.films,
		Cinemas:   fx.cinemas,
		Favorites: fx.favorites,
		Catalog:   fx.catalog,
		Packer:    action.NewPacker(action.NewMemoryStash(), time.Hour),
		Menus:     fx.menus,
		Events:    fx.events,
	})
	return fx
}
