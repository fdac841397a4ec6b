package store

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/cinebot/bot/model"
	"github.com/m3rciful/cinebot/core/logger"
)

const (
	qUpsertFilm = `INSERT INTO films (uuid, name, type, year, rating, poster, runtime, country, language, link, cinemas)
VALUES (:uuid, :name, :type, :year, :rating, :poster, :runtime, :country, :language, :link, :cinemas)
ON CONFLICT (uuid) DO UPDATE SET
	name = EXCLUDED.name, type = EXCLUDED.type, year = EXCLUDED.year, rating = EXCLUDED.rating,
	poster = EXCLUDED.poster, runtime = EXCLUDED.runtime, country = EXCLUDED.country,
	language = EXCLUDED.language, link = EXCLUDED.link, cinemas = EXCLUDED.cinemas`

	qUpsertCinema = `INSERT INTO cinemas (uuid, name, link, lat, lon, films)
VALUES (:uuid, :name, :link, :lat, :lon, :films)
ON CONFLICT (uuid) DO UPDATE SET
	name = EXCLUDED.name, link = EXCLUDED.link, lat = EXCLUDED.lat, lon = EXCLUDED.lon, films = EXCLUDED.films`
)

// Catalog is the seed file layout.
type Catalog struct {
	Films   []model.Film   `yaml:"films"`
	Cinemas []model.Cinema `yaml:"cinemas"`
}

// LoadCatalog reads and validates a YAML seed file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, errors.Wrapf(err, "read catalog %s", path)
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, errors.Wrapf(err, "parse catalog %s", path)
	}
	if err := c.normalize(); err != nil {
		return Catalog{}, errors.Wrapf(err, "catalog %s", path)
	}
	return c, nil
}

// normalize lower-cases every UUID, drops repeated references and rejects
// malformed ones.
func (c *Catalog) normalize() error {
	canon := func(what, s string) (string, error) {
		u, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return "", errors.Newf("%s: invalid uuid %q", what, s)
		}
		return u.String(), nil
	}
	canonAll := func(what string, ids []string) ([]string, error) {
		out := ids[:0]
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			v, err := canon(what, id)
			if err != nil {
				return nil, err
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
		return out, nil
	}
	for i := range c.Films {
		f := &c.Films[i]
		var err error
		if f.UUID, err = canon("film "+f.Name, f.UUID); err != nil {
			return err
		}
		if f.Cinemas, err = canonAll("film "+f.Name+" cinemas", f.Cinemas); err != nil {
			return err
		}
	}
	for i := range c.Cinemas {
		cn := &c.Cinemas[i]
		var err error
		if cn.UUID, err = canon("cinema "+cn.Name, cn.UUID); err != nil {
			return err
		}
		if cn.Films, err = canonAll("cinema "+cn.Name+" films", cn.Films); err != nil {
			return err
		}
	}
	return nil
}

// Seeder upserts a Catalog by UUID in one transaction.
type Seeder struct {
	catalog Catalog
}

// NewSeeder returns a Seeder for c.
func NewSeeder(c Catalog) *Seeder {
	return &Seeder{catalog: c}
}

// Seed implements bootstrap.Seeder.
func (s *Seeder) Seed(ctx context.Context, db *sqlx.DB) (err error) {
	start := time.Now()
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "seed: begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, f := range s.catalog.Films {
		if _, err = tx.NamedExecContext(ctx, qUpsertFilm, f); err != nil {
			return errors.Wrapf(err, "seed: film %s", f.UUID)
		}
	}
	for _, c := range s.catalog.Cinemas {
		if _, err = tx.NamedExecContext(ctx, qUpsertCinema, c); err != nil {
			return errors.Wrapf(err, "seed: cinema %s", c.UUID)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "seed: commit")
	}

	logger.SEED.LogAttrs(ctx, slog.LevelInfo, "catalog seeded",
		slog.String("event", "seed.catalog"),
		slog.Int("films", len(s.catalog.Films)),
		slog.Int("cinemas", len(s.catalog.Cinemas)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
