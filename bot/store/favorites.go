package store

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/cinebot/core/logger"
)

const (
	qIsFavorite = `SELECT EXISTS (SELECT 1 FROM users WHERE telegram_id = $1 AND $2 = ANY(favorites))`

	qFavorites = `SELECT favorites FROM users WHERE telegram_id = $1`

	qToggle = `INSERT INTO users (telegram_id, favorites) VALUES ($1, ARRAY[$2::text])
ON CONFLICT (telegram_id) DO UPDATE SET favorites = CASE
	WHEN $2::text = ANY(users.favorites) THEN array_remove(users.favorites, $2::text)
	ELSE array_append(users.favorites, $2::text)
END
RETURNING $2::text = ANY(favorites)`

	qSetFavorite = `INSERT INTO users (telegram_id, favorites)
VALUES ($1, CASE WHEN $3::boolean THEN ARRAY[$2::text] ELSE '{}'::text[] END)
ON CONFLICT (telegram_id) DO UPDATE SET favorites = CASE
	WHEN $3::boolean AND NOT ($2::text = ANY(users.favorites)) THEN array_append(users.favorites, $2::text)
	WHEN NOT $3::boolean THEN array_remove(users.favorites, $2::text)
	ELSE users.favorites
END
RETURNING $2::text = ANY(favorites)`
)

// FavoriteStore keeps each user's favourite film set. Every mutation is a
// single statement, so the set never holds duplicates.
type FavoriteStore struct {
	db *sqlx.DB
}

// NewFavoriteStore returns a FavoriteStore over db.
func NewFavoriteStore(db *sqlx.DB) *FavoriteStore {
	return &FavoriteStore{db: db}
}

// IsFavorite reports whether filmUUID is in the user's set. Unknown users
// have an empty set.
func (s *FavoriteStore) IsFavorite(ctx context.Context, userID int64, filmUUID string) (bool, error) {
	var fav bool
	if err := s.db.QueryRowxContext(ctx, qIsFavorite, userID, filmUUID).Scan(&fav); err != nil {
		return false, s.fail(ctx, "is_favorite", userID, err)
	}
	return fav, nil
}

// Favorites returns the user's favourite film UUIDs.
func (s *FavoriteStore) Favorites(ctx context.Context, userID int64) ([]string, error) {
	var favs pq.StringArray
	err := s.db.QueryRowxContext(ctx, qFavorites, userID).Scan(&favs)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return []string{}, nil
	case err != nil:
		return nil, s.fail(ctx, "favorites", userID, err)
	}
	if favs == nil {
		return []string{}, nil
	}
	return favs, nil
}

// Toggle flips filmUUID's membership, creating the user on first use, and
// returns the new membership.
func (s *FavoriteStore) Toggle(ctx context.Context, userID int64, filmUUID string) (bool, error) {
	var fav bool
	if err := s.db.QueryRowxContext(ctx, qToggle, userID, filmUUID).Scan(&fav); err != nil {
		return false, s.fail(ctx, "toggle", userID, err)
	}
	return fav, nil
}

// SetFavorite makes filmUUID's membership equal want, creating the user on
// first use. Membership is checked and changed in one statement, so repeated
// calls with the same want are no-ops. It returns the resulting membership.
func (s *FavoriteStore) SetFavorite(ctx context.Context, userID int64, filmUUID string, want bool) (bool, error) {
	var fav bool
	if err := s.db.QueryRowxContext(ctx, qSetFavorite, userID, filmUUID, want).Scan(&fav); err != nil {
		return false, s.fail(ctx, "set_favorite", userID, err)
	}
	return fav, nil
}

func (s *FavoriteStore) fail(ctx context.Context, op string, userID int64, err error) error {
	logger.Error(ctx, "store.favorites", op+".failed", slog.Int64("user_id", userID), logger.Err(err))
	return unavailable(err, op)
}
