package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/cinebot/bot/action"
	"github.com/m3rciful/cinebot/bot/events"
	"github.com/m3rciful/cinebot/bot/handlers"
	"github.com/m3rciful/cinebot/bot/menu"
	"github.com/m3rciful/cinebot/bot/store"
	"github.com/m3rciful/cinebot/core/bootstrap"
	corecmd "github.com/m3rciful/cinebot/core/cmd"
	"github.com/m3rciful/cinebot/core/health"
	"github.com/m3rciful/cinebot/core/logger"
	tg "github.com/m3rciful/cinebot/core/telegram"
	"github.com/m3rciful/cinebot/core/telegram/router"
	"github.com/m3rciful/cinebot/core/telegram/state"
)

const (
	menuIdle        = 24 * time.Hour
	shutdownTimeout = 5 * time.Second
)

// Infra holds connections owned by the App once New succeeds.
type Infra struct {
	DB    *sqlx.DB
	Redis *redis.Client
	// Events defaults to a no-op publisher.
	Events events.Publisher
}

// App is the assembled bot.
type App struct {
	cfg   *Config
	infra Infra

	registry *tg.Registry
	router   *handlers.Router
	menus    state.Manager
	health   *health.Server
}

// New builds the stores, caches and router over infra and registers the
// bot's handlers.
func New(cfg *Config, infra Infra) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	if infra.DB == nil {
		return nil, fmt.Errorf("app: nil database")
	}
	if infra.Events == nil {
		infra.Events = events.NopPublisher{}
	}

	// A nil *redis.Client must not leak into redis.Cmdable as a typed nil.
	var (
		rdb   redis.Cmdable
		stash action.Stash = action.NewMemoryStash()
	)
	if infra.Redis != nil {
		rdb = infra.Redis
		stash = action.NewRedisStash(infra.Redis)
	}

	films := store.NewFilmStore(infra.DB)
	menus := state.NewMemoryManager(menu.StateHome, menuIdle)
	r := handlers.New(handlers.Deps{
		Films:     films,
		Cinemas:   store.NewCinemaStore(infra.DB),
		Favorites: store.NewFavoriteStore(infra.DB),
		Catalog:   store.NewCatalogCache(films, rdb, cfg.Catalog.CacheTTL),
		Packer:    action.NewPacker(stash, cfg.Catalog.StashTTL),
		Menus:     menus,
		Events:    infra.Events,
		Language:  cfg.Catalog.Language,
	})

	reg := tg.NewRegistry()
	if err := r.Register(reg); err != nil {
		return nil, fmt.Errorf("app: register handlers: %w", err)
	}

	a := &App{cfg: cfg, infra: infra, registry: reg, router: r, menus: menus}
	if cfg.Health.Listen != "" {
		a.health = health.NewServer(cfg.Health.Listen, a.checks()...)
	}
	return a, nil
}

func (a *App) checks() []health.Check {
	checks := []health.Check{{Name: "postgres", Ping: a.infra.DB.PingContext}}
	if a.infra.Redis != nil {
		checks = append(checks, health.Check{
			Name: "redis",
			Ping: func(ctx context.Context) error { return a.infra.Redis.Ping(ctx).Err() },
		})
	}
	return checks
}

// TelegramRunOptions implements cmd.TelegramApp.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()
	mws := append(tg.DefaultMiddlewares(core, a.router.OnLimited),
		tg.Middleware{Name: "menu_state", Use: state.WithState(a.menus)},
	)
	return tg.RunOptions{
		Config:      core,
		Registry:    a.registry,
		Middlewares: mws,
		Routes:      a.router.Routes(a.registry, router.CommandRouteOptions{AdminID: core.Telegram.AdminID}),
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt tg.Runtime) error {
	if a.health != nil {
		a.health.Start()
	}
	logger.Info(ctx, "app", "wired",
		slog.String("username", rt.Bot.Me.Username),
		slog.Int("count", len(a.registry.ListActions())),
		slog.Bool("cache", a.infra.Redis != nil),
	)
	return nil
}

func (a *App) onStop(ctx context.Context, _ tg.Runtime) error {
	if a.health == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return a.health.Shutdown(ctx)
}

// Close releases the publisher, Redis and the database, in that order.
func (a *App) Close() error {
	var errs []error
	if err := a.infra.Events.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close events: %w", err))
	}
	if a.infra.Redis != nil {
		if err := a.infra.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	if err := a.infra.DB.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close db: %w", err))
	}
	return errors.Join(errs...)
}

// Bootstrap is the cmd.Options.Bootstrap hook: it runs the core bootstrap
// pipeline, then connects the optional Redis and broker backends.
func Bootstrap(ctx context.Context, carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	seeders, err := Seeders(cfg)
	if err != nil {
		return nil, err
	}
	res, err := bootstrap.Run(ctx, bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
		Seeders:  seeders,
	})
	if err != nil {
		return nil, err
	}

	infra := Infra{
		DB:     res.DB,
		Redis:  NewRedisClient(ctx, cfg.Redis),
		Events: Publisher(ctx, cfg.Broker),
	}
	a, err := New(cfg, infra)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}
	return a, nil
}

// Seeders returns the catalog seeder when a seed file is configured.
func Seeders(cfg *Config) ([]bootstrap.Seeder, error) {
	if cfg.Catalog.SeedFile == "" {
		return nil, nil
	}
	catalog, err := store.LoadCatalog(cfg.Catalog.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("app: load seed file: %w", err)
	}
	return []bootstrap.Seeder{store.NewSeeder(catalog)}, nil
}

// Publisher dials the broker, or returns a no-op publisher when the broker
// is disabled or unreachable.
func Publisher(ctx context.Context, cfg BrokerConfig) events.Publisher {
	if cfg.URL == "" {
		return events.NopPublisher{}
	}
	pub, err := events.Dial(cfg.URL, cfg.Exchange)
	if err != nil {
		logger.Warn(ctx, "events", "broker.connect",
			slog.String("status", "fail"),
			slog.String("exchange", cfg.Exchange),
			logger.Err(err),
		)
		return events.NopPublisher{}
	}
	return pub
}
