package store

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/cinebot/bot/model"
	"github.com/m3rciful/cinebot/bot/query"
)

const (
	filmA   = "123e4567-e89b-12d3-a456-426614174000"
	filmB   = "9b2f7d2e-55a4-4c3e-9a43-1f0a3c9e2b11"
	cinemaA = "5f1d8f6a-0f5c-4d3e-8a52-2b7f1c0d9e01"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	db := sqlx.NewDb(raw, "postgres")
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func filmRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"uuid", "name", "type", "year", "rating", "poster", "runtime", "country", "language", "link", "cinemas"})
}

func TestFilmStoreFindGenre(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + filmColumns + " FROM films WHERE lower(type) = $1 ORDER BY id")).
		WithArgs("comedy").
		WillReturnRows(filmRows().
			AddRow(filmA, "The Mask", "comedy", 1994, 6.9, "https://img/mask.jpg", "101 min", "USA", nil, "https://films/mask", "{"+cinemaA+"}").
			AddRow(filmB, "Hot Fuzz", "comedy", 2007, 7.8, "https://img/fuzz.jpg", "121 min", "UK", "English", "https://films/fuzz", "{}"))

	films, err := NewFilmStore(db).Find(context.Background(), query.ForGenre("Comedy"))
	require.NoError(t, err)
	require.Len(t, films, 2)
	assert.Equal(t, "The Mask", films[0].Name)
	assert.Nil(t, films[0].Language)
	assert.Equal(t, []string{cinemaA}, []string(films[0].Cinemas))
	require.NotNil(t, films[1].Language)
	assert.Equal(t, "English", *films[1].Language)
	assert.Empty(t, films[1].Cinemas)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFilmStoreFindEmptyUUIDsSkipsQuery(t *testing.T) {
	db, mock := newMock(t)

	films, err := NewFilmStore(db).Find(context.Background(), query.ForUUIDs(nil))
	require.NoError(t, err)
	assert.NotNil(t, films)
	assert.Empty(t, films)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFilmStoreFindNoRows(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM films WHERE uuid = ANY($1) ORDER BY id")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(filmRows())

	films, err := NewFilmStore(db).Find(context.Background(), query.ForUUIDs([]string{filmA}))
	require.NoError(t, err)
	assert.NotNil(t, films)
	assert.Empty(t, films)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFilmStoreUnavailable(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery("FROM films WHERE TRUE").WillReturnError(errors.New("connection refused"))

	_, err := NewFilmStore(db).All(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFilmStoreGet(t *testing.T) {
	db, mock := newMock(t)
	q := regexp.QuoteMeta("SELECT " + filmColumns + " FROM films WHERE uuid = $1")
	mock.ExpectQuery(q).WithArgs(filmA).
		WillReturnRows(filmRows().AddRow(filmA, "The Mask", "comedy", 1994, 6.9, "", "", "", nil, "", "{}"))
	mock.ExpectQuery(q).WithArgs(filmB).WillReturnRows(filmRows())

	s := NewFilmStore(db)
	f, err := s.Get(context.Background(), filmA)
	require.NoError(t, err)
	assert.Equal(t, filmA, f.UUID)

	_, err = s.Get(context.Background(), filmB)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCinemaStore(t *testing.T) {
	db, mock := newMock(t)
	cols := []string{"uuid", "name", "link", "lat", "lon", "films"}
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + cinemaColumns + " FROM cinemas WHERE TRUE ORDER BY id")).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(cinemaA, "Kyiv", "https://kyiv", 50.4501, 30.5234, "{"+filmA+","+filmB+"}"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + cinemaColumns + " FROM cinemas WHERE uuid = $1")).
		WithArgs(filmA).
		WillReturnRows(sqlmock.NewRows(cols))

	s := NewCinemaStore(db)
	all, err := s.All(context.Background())
	require.NoError(t, err)
	require.Equal(t, []model.Cinema{{
		UUID: cinemaA, Name: "Kyiv", Link: "https://kyiv", Lat: 50.4501, Lon: 30.5234,
		Films: []string{filmA, filmB},
	}}, all)

	_, err = s.Get(context.Background(), filmA)
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	empty, err := s.Find(context.Background(), query.ForUUIDs([]string{}))
	require.NoError(t, err)
	assert.Empty(t, empty)
	require.NoError(t, mock.ExpectationsWereMet())
}
