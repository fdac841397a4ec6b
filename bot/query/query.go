// Package query translates user intents into content-store filters.
package query

import (
	"strconv"
	"strings"

	"github.com/lib/pq"
)

type filterKind int

const (
	kindAll filterKind = iota
	kindGenre
	kindUUIDs
)

// Filter is an opaque store predicate. The zero value matches everything.
type Filter struct {
	kind  filterKind
	genre string
	uuids []string
}

// ForGenre matches films whose type equals tag, case-insensitively.
func ForGenre(tag string) Filter {
	return Filter{kind: kindGenre, genre: strings.ToLower(strings.TrimSpace(tag))}
}

// ForRandom matches the entire corpus.
func ForRandom() Filter {
	return Filter{kind: kindAll}
}

// ForUUIDs matches any identifier in ids. An empty list matches nothing.
func ForUUIDs(ids []string) Filter {
	return Filter{kind: kindUUIDs, uuids: append([]string(nil), ids...)}
}

// MatchesNothing reports whether the filter can be answered without a query.
func (f Filter) MatchesNothing() bool {
	return f.kind == kindUUIDs && len(f.uuids) == 0
}

// Where renders the filter as a SQL boolean expression. Placeholders are
// numbered from argIndex.
func (f Filter) Where(argIndex int) (string, []any) {
	switch f.kind {
	case kindGenre:
		return "lower(type) = $" + strconv.Itoa(argIndex), []any{f.genre}
	case kindUUIDs:
		if len(f.uuids) == 0 {
			return "FALSE", nil
		}
		return "uuid = ANY($" + strconv.Itoa(argIndex) + ")", []any{pq.StringArray(f.uuids)}
	default:
		return "TRUE", nil
	}
}

// String describes the filter for logs.
func (f Filter) String() string {
	switch f.kind {
	case kindGenre:
		return "genre:" + f.genre
	case kindUUIDs:
		return "uuids:" + strconv.Itoa(len(f.uuids))
	default:
		return "all"
	}
}
