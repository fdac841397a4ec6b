package menu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const filmID = "123e4567-e89b-12d3-a456-426614174000"

func TestClassify(t *testing.T) {
	tests := []struct {
		text string
		want Classified
	}{
		{"/start", Classified{Intent: Start}},
		{"/start@cinebot", Classified{Intent: Start}},
		{"Films", Classified{Intent: Films}},
		{" cinemas ", Classified{Intent: Cinemas}},
		{"Favourite", Classified{Intent: Favourites}},
		{"Random", Classified{Intent: GenreRandom}},
		{"Action", Classified{Intent: GenreAction}},
		{"COMEDY", Classified{Intent: GenreComedy}},
		{"Back", Classified{Intent: Back}},
		{"/f" + filmID, Classified{Intent: FilmLink, UUID: filmID}},
		{"/c" + filmID + "@cinebot", Classified{Intent: CinemaLink, UUID: filmID}},
		{"/f123E4567-E89B-12D3-A456-426614174000", Classified{Intent: FilmLink, UUID: filmID}},
		{"/fnot-a-uuid", Classified{}},
		{"/x" + filmID, Classified{}},
		{"/help", Classified{}},
		{"hello there", Classified{}},
		{"", Classified{}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestParseDeepLinkRejectsBraces(t *testing.T) {
	_, _, ok := ParseDeepLink("/f{" + filmID + "}")
	assert.False(t, ok)
	_, _, ok = ParseDeepLink("/furn:uuid:" + filmID)
	assert.False(t, ok)
}

func TestTarget(t *testing.T) {
	assert.Equal(t, StateHome, Start.Target(StateFilms))
	assert.Equal(t, StateHome, Back.Target(StateCinemas))
	assert.Equal(t, StateFilms, GenreComedy.Target(StateHome))
	assert.Equal(t, StateCinemas, Cinemas.Target(StateHome))
	assert.Equal(t, StateFilms, FilmLink.Target(StateFilms))
	assert.Equal(t, StateCinemas, None.Target(StateCinemas))
}

func TestIntentString(t *testing.T) {
	assert.Equal(t, "genre_comedy", GenreComedy.String())
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "unknown", Intent(99).String())
}
