// Package model holds the catalog records shared by the store, presentation
// and routing layers.
package model

import (
	"github.com/lib/pq"
)

// Film is a catalog entry. Language is nil when the catalog does not say.
type Film struct {
	UUID     string         `db:"uuid" yaml:"uuid" json:"uuid"`
	Name     string         `db:"name" yaml:"name" json:"name"`
	Type     string         `db:"type" yaml:"type" json:"type"`
	Year     int            `db:"year" yaml:"year" json:"year"`
	Rating   float64        `db:"rating" yaml:"rating" json:"rating"`
	Poster   string         `db:"poster" yaml:"poster" json:"poster"`
	Runtime  string         `db:"runtime" yaml:"runtime" json:"runtime"`
	Country  string         `db:"country" yaml:"country" json:"country"`
	Language *string        `db:"language" yaml:"language" json:"language,omitempty"`
	Link     string         `db:"link" yaml:"link" json:"link"`
	Cinemas  pq.StringArray `db:"cinemas" yaml:"cinemas" json:"cinemas"`
}

// Cinema is a venue with a map position.
type Cinema struct {
	UUID  string         `db:"uuid" yaml:"uuid" json:"uuid"`
	Name  string         `db:"name" yaml:"name" json:"name"`
	Link  string         `db:"link" yaml:"link" json:"link"`
	Lat   float64        `db:"lat" yaml:"lat" json:"lat"`
	Lon   float64        `db:"lon" yaml:"lon" json:"lon"`
	Films pq.StringArray `db:"films" yaml:"films" json:"films"`
}

// User is a chat user with a set of favourite film UUIDs.
type User struct {
	TelegramID int64          `db:"telegram_id"`
	Favorites  pq.StringArray `db:"favorites"`
}

// Genre tags used by the films submenu.
const (
	GenreAction = "action"
	GenreComedy = "comedy"
)
