package action

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// MaxPayloadLen is Telegram's callback_data limit in bytes.
const MaxPayloadLen = 64

const (
	version     = '1'
	codeToggle  = 't'
	codeCinemas = 'c'
	codeFilms   = 'f'
	codeLoc     = 'l'
	codeRef     = 'r'

	compactUUIDLen = 22
)

var (
	// ErrDecode marks payloads that are malformed, of unknown kind or missing fields.
	ErrDecode = errors.New("action: undecodable payload")
	// ErrPayloadTooLarge is returned by Encode when the payload exceeds MaxPayloadLen.
	ErrPayloadTooLarge = errors.New("action: payload too large")
	// ErrInvalid marks intents that cannot be encoded.
	ErrInvalid = errors.New("action: invalid intent")

	b64 = base64.RawURLEncoding.Strict()
)

func decodeErr(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrDecode)
}

func invalidErr(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrInvalid)
}

// Encode serializes i into its compact form. The result is deterministic and
// at most MaxPayloadLen bytes; longer payloads fail with ErrPayloadTooLarge
// (use a Packer to stash them). Identifiers must be canonical lower-case
// UUIDs and lists must not repeat an identifier; anything else fails with
// ErrInvalid, so distinct intents never share a payload.
func Encode(i Intent) (string, error) {
	s, err := marshal(i)
	if err != nil {
		return "", err
	}
	if len(s) > MaxPayloadLen {
		return "", errors.Wrapf(ErrPayloadTooLarge, "%s needs %d bytes", i.Kind(), len(s))
	}
	return s, nil
}

func marshal(i Intent) (string, error) {
	var b strings.Builder
	b.WriteByte(version)
	switch v := i.(type) {
	case ToggleFavorite:
		id, err := compactUUID(v.FilmUUID)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeToggle)
		b.WriteString(id)
		if v.IsFav {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	case ShowCinemas:
		b.WriteByte(codeCinemas)
		if err := writeUUIDs(&b, v.CinemaUUIDs); err != nil {
			return "", err
		}
	case ShowFilms:
		b.WriteByte(codeFilms)
		if err := writeUUIDs(&b, v.FilmUUIDs); err != nil {
			return "", err
		}
	case ShowLocation:
		if err := checkCoord(v.Lat, v.Lon); err != nil {
			return "", errors.Mark(err, ErrInvalid)
		}
		b.WriteByte(codeLoc)
		b.WriteString(strconv.FormatFloat(v.Lat, 'f', -1, 64))
		b.WriteByte(',')
		b.WriteString(strconv.FormatFloat(v.Lon, 'f', -1, 64))
	default:
		return "", invalidErr("action: unsupported intent %T", i)
	}
	return b.String(), nil
}

func compactUUID(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil || u.String() != s {
		return "", invalidErr("action: non-canonical uuid %q", s)
	}
	return b64.EncodeToString(u[:]), nil
}

func writeUUIDs(b *strings.Builder, ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return invalidErr("action: repeated uuid %s", id)
		}
		seen[id] = struct{}{}
		c, err := compactUUID(id)
		if err != nil {
			return err
		}
		b.WriteString(c)
	}
	return nil
}

func checkCoord(lat, lon float64) error {
	if !(lat >= -90 && lat <= 90) || !(lon >= -180 && lon <= 180) {
		return errors.Newf("action: coordinate out of range (%v, %v)", lat, lon)
	}
	return nil
}

// Decode parses a payload produced by Encode, or the JSON form
// {"kind": ..., "filmUuid", "isFav", "cinemaUuids", "filmUuids", "lat", "lon"}.
// Every failure is marked with ErrDecode. UUIDs come back in canonical
// lower-case form and empty lists come back nil.
func Decode(s string) (Intent, error) {
	switch {
	case s == "":
		return nil, decodeErr("action: empty payload")
	case s[0] == '{':
		return decodeJSON(s)
	case s[0] != version || len(s) < 2:
		return nil, decodeErr("action: unsupported payload version")
	}

	body := s[2:]
	switch s[1] {
	case codeToggle:
		if len(body) != compactUUIDLen+1 {
			return nil, decodeErr("action: toggle payload has %d bytes", len(body))
		}
		id, err := expandUUID(body[:compactUUIDLen])
		if err != nil {
			return nil, err
		}
		switch body[compactUUIDLen] {
		case '0':
			return ToggleFavorite{FilmUUID: id}, nil
		case '1':
			return ToggleFavorite{FilmUUID: id, IsFav: true}, nil
		}
		return nil, decodeErr("action: bad favourite flag")
	case codeCinemas:
		ids, err := expandUUIDs(body)
		if err != nil {
			return nil, err
		}
		return ShowCinemas{CinemaUUIDs: ids}, nil
	case codeFilms:
		ids, err := expandUUIDs(body)
		if err != nil {
			return nil, err
		}
		return ShowFilms{FilmUUIDs: ids}, nil
	case codeLoc:
		latS, lonS, ok := strings.Cut(body, ",")
		if !ok {
			return nil, decodeErr("action: location payload without separator")
		}
		lat, err1 := strconv.ParseFloat(latS, 64)
		lon, err2 := strconv.ParseFloat(lonS, 64)
		if err1 != nil || err2 != nil {
			return nil, decodeErr("action: location payload is not numeric")
		}
		if err := checkCoord(lat, lon); err != nil {
			return nil, errors.Mark(err, ErrDecode)
		}
		return ShowLocation{Lat: lat, Lon: lon}, nil
	case codeRef:
		return nil, decodeErr("action: stashed payload needs a packer")
	}
	return nil, decodeErr("action: unknown kind code %q", s[1])
}

func expandUUID(c string) (string, error) {
	raw, err := b64.DecodeString(c)
	if err != nil {
		return "", decodeErr("action: bad compact uuid")
	}
	u, err := uuid.FromBytes(raw)
	if err != nil {
		return "", decodeErr("action: bad compact uuid")
	}
	return u.String(), nil
}

func expandUUIDs(body string) ([]string, error) {
	if len(body)%compactUUIDLen != 0 {
		return nil, decodeErr("action: truncated uuid list")
	}
	var ids []string
	for i := 0; i < len(body); i += compactUUIDLen {
		id, err := expandUUID(body[i : i+compactUUIDLen])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

type jsonPayload struct {
	Kind        Kind      `json:"kind"`
	FilmUUID    *string   `json:"filmUuid"`
	IsFav       *bool     `json:"isFav"`
	CinemaUUIDs *[]string `json:"cinemaUuids"`
	FilmUUIDs   *[]string `json:"filmUuids"`
	Lat         *float64  `json:"lat"`
	Lon         *float64  `json:"lon"`
}

func decodeJSON(s string) (Intent, error) {
	var p jsonPayload
	if err := json.Unmarshal([]byte(s), &p); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "action: bad json payload"), ErrDecode)
	}
	switch p.Kind {
	case KindToggleFavorite:
		if p.FilmUUID == nil || p.IsFav == nil {
			return nil, decodeErr("action: %s needs filmUuid and isFav", p.Kind)
		}
		id, err := canonicalUUID(*p.FilmUUID)
		if err != nil {
			return nil, err
		}
		return ToggleFavorite{FilmUUID: id, IsFav: *p.IsFav}, nil
	case KindShowCinemas:
		if p.CinemaUUIDs == nil {
			return nil, decodeErr("action: %s needs cinemaUuids", p.Kind)
		}
		ids, err := canonicalUUIDs(*p.CinemaUUIDs)
		if err != nil {
			return nil, err
		}
		return ShowCinemas{CinemaUUIDs: ids}, nil
	case KindShowFilms:
		if p.FilmUUIDs == nil {
			return nil, decodeErr("action: %s needs filmUuids", p.Kind)
		}
		ids, err := canonicalUUIDs(*p.FilmUUIDs)
		if err != nil {
			return nil, err
		}
		return ShowFilms{FilmUUIDs: ids}, nil
	case KindShowLocation:
		if p.Lat == nil || p.Lon == nil {
			return nil, decodeErr("action: %s needs lat and lon", p.Kind)
		}
		if err := checkCoord(*p.Lat, *p.Lon); err != nil {
			return nil, errors.Mark(err, ErrDecode)
		}
		return ShowLocation{Lat: *p.Lat, Lon: *p.Lon}, nil
	case "":
		return nil, decodeErr("action: missing kind")
	}
	return nil, decodeErr("action: unknown kind %q", p.Kind)
}

func canonicalUUID(s string) (string, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", decodeErr("action: bad uuid %q", s)
	}
	return u.String(), nil
}

// canonicalUUIDs lower-cases in and drops repeats keeping the first one, so
// the result is always encodable.
func canonicalUUIDs(in []string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		id, err := canonicalUUID(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out, nil
}
