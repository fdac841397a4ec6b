package query

import (
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestWhere(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		clause   string
		args     []any
		nothing  bool
		describe string
	}{
		{"genre", ForGenre(" Comedy "), "lower(type) = $1", []any{"comedy"}, false, "genre:comedy"},
		{"random", ForRandom(), "TRUE", nil, false, "all"},
		{"zero value", Filter{}, "TRUE", nil, false, "all"},
		{"uuids", ForUUIDs([]string{"a", "b"}), "uuid = ANY($1)", []any{pq.StringArray{"a", "b"}}, false, "uuids:2"},
		{"empty uuids", ForUUIDs(nil), "FALSE", nil, true, "uuids:0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := tt.filter.Where(1)
			assert.Equal(t, tt.clause, clause)
			assert.Equal(t, tt.args, args)
			assert.Equal(t, tt.nothing, tt.filter.MatchesNothing())
			assert.Equal(t, tt.describe, tt.filter.String())
		})
	}
}

func TestWherePlaceholderOffset(t *testing.T) {
	clause, _ := ForGenre("action").Where(3)
	assert.Equal(t, "lower(type) = $3", clause)
}

func TestForUUIDsCopiesInput(t *testing.T) {
	ids := []string{"a"}
	f := ForUUIDs(ids)
	ids[0] = "z"
	_, args := f.Where(1)
	assert.Equal(t, []any{pq.StringArray{"a"}}, args)
}
