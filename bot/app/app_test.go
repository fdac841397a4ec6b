package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/cinebot/bot/action"
	"github.com/m3rciful/cinebot/bot/events"
)

type closingPublisher struct {
	events.NopPublisher
	closed bool
}

func (p *closingPublisher) Close() error {
	p.closed = true
	return nil
}

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.AdminID = 7
	require.NoError(t, cfg.normalizeBot())
	return cfg
}

func newTestApp(t *testing.T, cfg *Config, pub events.Publisher) (*App, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	a, err := New(cfg, Infra{DB: sqlx.NewDb(raw, "postgres"), Events: pub})
	require.NoError(t, err)
	return a, mock
}

func TestNewRegistersHandlers(t *testing.T) {
	a, _ := newTestApp(t, testConfig(t), nil)

	assert.ElementsMatch(t, []string{
		string(action.KindToggleFavorite),
		string(action.KindShowCinemas),
		string(action.KindShowLocation),
		string(action.KindShowFilms),
	}, a.registry.ListActions())
	assert.Nil(t, a.health)
}

func TestNewRequiresDatabase(t *testing.T) {
	_, err := New(testConfig(t), Infra{})
	assert.Error(t, err)

	_, err = New(nil, Infra{})
	assert.Error(t, err)
}

func TestTelegramRunOptions(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimit.IntervalMS = 500
	a, _ := newTestApp(t, cfg, nil)

	opts, err := a.TelegramRunOptions()
	require.NoError(t, err)
	assert.Same(t, cfg.CoreConfig(), opts.Config)
	assert.Same(t, a.registry, opts.Registry)

	var names []string
	for _, mw := range opts.Middlewares {
		names = append(names, mw.Name)
	}
	assert.Equal(t, []string{"recover", "rate_limit", "metrics", "menu_state"}, names)

	endpoints := map[any]bool{}
	for _, r := range opts.Routes {
		require.NotNil(t, r.Handler)
		endpoints[r.Endpoint] = true
	}
	for _, e := range []any{"/start", "/reload", tele.OnText, tele.OnLocation, tele.OnCallback, tele.OnQuery} {
		assert.True(t, endpoints[e], "missing route %v", e)
	}
	assert.NotNil(t, opts.OnStart)
	assert.NotNil(t, opts.OnStop)
}

func TestHealthReadiness(t *testing.T) {
	cfg := testConfig(t)
	cfg.Health.Listen = "127.0.0.1:0"
	a, _ := newTestApp(t, cfg, nil)
	require.NotNil(t, a.health)

	rec := httptest.NewRecorder()
	a.health.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"postgres":"ok"}`, rec.Body.String())
}

func TestCloseReleasesEverything(t *testing.T) {
	pub := &closingPublisher{}
	a, mock := newTestApp(t, testConfig(t), pub)
	mock.ExpectClose()

	require.NoError(t, a.Close())
	assert.True(t, pub.closed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeeders(t *testing.T) {
	cfg := testConfig(t)
	seeders, err := Seeders(cfg)
	require.NoError(t, err)
	assert.Empty(t, seeders)

	cfg.Catalog.SeedFile = writeFile(t, "catalog.yaml", `
films:
  - uuid: 0F8FAD5B-D9CB-469F-A165-70867728950E
    name: Dune
    type: action
cinemas: []
`)
	seeders, err = Seeders(cfg)
	require.NoError(t, err)
	assert.Len(t, seeders, 1)

	cfg.Catalog.SeedFile = writeFile(t, "broken.yaml", "films:\n  - uuid: nope\n")
	_, err = Seeders(cfg)
	assert.Error(t, err)
}

func TestPublisherDisabled(t *testing.T) {
	assert.Equal(t, events.NopPublisher{}, Publisher(context.Background(), BrokerConfig{}))
	assert.Nil(t, NewRedisClient(context.Background(), RedisConfig{}))
}
