// Package action encodes the intents carried by inline buttons into
// callback_data and decodes them back.
package action

// Kind discriminates the closed set of button intents.
type Kind string

const (
	KindToggleFavorite Kind = "toggle-favorite"
	KindShowCinemas    Kind = "show-cinemas"
	KindShowLocation   Kind = "show-cinemas-location"
	KindShowFilms      Kind = "show-films"
)

// Kinds lists every Kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindToggleFavorite, KindShowCinemas, KindShowLocation, KindShowFilms}
}

// Intent is one of ToggleFavorite, ShowCinemas, ShowLocation or ShowFilms.
type Intent interface {
	Kind() Kind
	isIntent()
}

// ToggleFavorite asks to flip a film's favourite flag. IsFav is the flag the
// button was rendered with.
type ToggleFavorite struct {
	FilmUUID string
	IsFav    bool
}

// ShowCinemas asks for the listed cinemas.
type ShowCinemas struct {
	CinemaUUIDs []string
}

// ShowLocation asks for a map pin at the given coordinate.
type ShowLocation struct {
	Lat float64
	Lon float64
}

// ShowFilms asks for the listed films.
type ShowFilms struct {
	FilmUUIDs []string
}

func (ToggleFavorite) Kind() Kind { return KindToggleFavorite }
func (ShowCinemas) Kind() Kind    { return KindShowCinemas }
func (ShowLocation) Kind() Kind   { return KindShowLocation }
func (ShowFilms) Kind() Kind      { return KindShowFilms }

func (ToggleFavorite) isIntent() {}
func (ShowCinemas) isIntent()    {}
func (ShowLocation) isIntent()   {}
func (ShowFilms) isIntent()      {}
