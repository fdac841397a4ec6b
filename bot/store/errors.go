// Package store is the Postgres-backed content store: films, cinemas and
// per-user favourite sets.
package store

import "github.com/cockroachdb/errors"

var (
	// ErrNotFound is returned when a single-entity lookup has no row.
	ErrNotFound = errors.New("store: not found")
	// ErrUnavailable marks transient backend failures.
	ErrUnavailable = errors.New("store: unavailable")
)

func unavailable(err error, op string) error {
	return errors.Mark(errors.Wrap(err, "store: "+op), ErrUnavailable)
}
