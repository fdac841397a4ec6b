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

const filmColumns = "uuid, name, type, year, rating, poster, runtime, country, language, link, cinemas"

// FilmStore reads films.
type FilmStore struct {
	db *sqlx.DB
}

// NewFilmStore returns a FilmStore over db.
func NewFilmStore(db *sqlx.DB) *FilmStore {
	return &FilmStore{db: db}
}

// Find returns the films matching f in catalog order. It never returns nil
// on success.
func (s *FilmStore) Find(ctx context.Context, f query.Filter) ([]model.Film, error) {
	if f.MatchesNothing() {
		return []model.Film{}, nil
	}
	where, args := f.Where(1)
	q := "SELECT " + filmColumns + " FROM films WHERE " + where + " ORDER BY id"

	var films []model.Film
	if err := s.db.SelectContext(ctx, &films, q, args...); err != nil {
		logger.Error(ctx, "store.films", "query.failed", slog.String("filter", f.String()), logger.Err(err))
		return nil, unavailable(err, "select films")
	}
	if films == nil {
		films = []model.Film{}
	}
	return films, nil
}

// All returns every film.
func (s *FilmStore) All(ctx context.Context) ([]model.Film, error) {
	return s.Find(ctx, query.ForRandom())
}

// Get returns the film with the given UUID or ErrNotFound.
func (s *FilmStore) Get(ctx context.Context, id string) (model.Film, error) {
	var f model.Film
	err := s.db.GetContext(ctx, &f, "SELECT "+filmColumns+" FROM films WHERE uuid = $1", id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return model.Film{}, errors.Wrapf(ErrNotFound, "film %s", id)
	case err != nil:
		logger.Error(ctx, "store.films", "get.failed", slog.String("film_uuid", id), logger.Err(err))
		return model.Film{}, unavailable(err, "get film")
	}
	return f, nil
}
