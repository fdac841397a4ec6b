package store

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/cinebot/bot/model"
	"github.com/m3rciful/cinebot/bot/query"
	"github.com/m3rciful/cinebot/core/logger"
)

const cinemaColumns = "uuid, name, link, lat, lon, films"

// CinemaStore reads cinemas.
type CinemaStore struct {
	db *sqlx.DB
}

// NewCinemaStore returns a CinemaStore over db.
func NewCinemaStore(db *sqlx.DB) *CinemaStore {
	return &CinemaStore{db: db}
}

// Find returns cinemas matching f in catalog order. Only query.ForUUIDs and
// query.ForRandom filters apply to cinemas.
func (s *CinemaStore) Find(ctx context.Context, f query.Filter) ([]model.Cinema, error) {
	if f.MatchesNothing() {
		return []model.Cinema{}, nil
	}
	where, args := f.Where(1)
	q := "SELECT " + cinemaColumns + " FROM cinemas WHERE " + where + " ORDER BY id"

	var cinemas []model.Cinema
	if err := s.db.SelectContext(ctx, &cinemas, q, args...); err != nil {
		logger.Error(ctx, "store.cinemas", "query.failed", slog.String("filter", f.String()), logger.Err(err))
		return nil, unavailable(err, "select cinemas")
	}
	if cinemas == nil {
		cinemas = []model.Cinema{}
	}
	return cinemas, nil
}

// All returns every cinema.
func (s *CinemaStore) All(ctx context.Context) ([]model.Cinema, error) {
	return s.Find(ctx, query.ForRandom())
}

// Get returns the cinema with the given UUID or ErrNotFound.
func (s *CinemaStore) Get(ctx context.Context, id string) (model.Cinema, error) {
	var c model.Cinema
	err := s.db.GetContext(ctx, &c, "SELECT "+cinemaColumns+" FROM cinemas WHERE uuid = $1", id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model.Cinema{}, errors.Wrapf(ErrNotFound, "cinema %s", id)
	case err != nil:
		logger.Error(ctx, "store.cinemas", "get.failed", slog.String("cinema_uuid", id), logger.Err(err))
		return model.Cinema{}, unavailable(err, "get cinema")
	}
	return c, nil
}
