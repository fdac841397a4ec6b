package action

import (
	"context"
	"crypto/sha256"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const refPrefix = string(version) + string(codeRef)

// ErrStashMiss is returned by a Stash when the key is unknown or expired.
var ErrStashMiss = errors.New("action: stash entry not found")

// Stash keeps payloads that do not fit into callback_data.
type Stash interface {
	Put(ctx context.Context, key, payload string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
}

// Packer encodes intents like Encode but moves oversized payloads into a
// Stash and emits a short reference instead.
type Packer struct {
	stash Stash
	ttl   time.Duration
}

// NewPacker returns a Packer backed by stash. Entries live for ttl.
func NewPacker(stash Stash, ttl time.Duration) *Packer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Packer{stash: stash, ttl: ttl}
}

// Pack encodes i. Payloads over MaxPayloadLen are stashed under a key derived
// from their content, so packing the same intent twice yields the same data.
func (p *Packer) Pack(ctx context.Context, i Intent) (string, error) {
	s, err := marshal(i)
	if err != nil {
		return "", err
	}
	if len(s) <= MaxPayloadLen {
		return s, nil
	}
	if p == nil || p.stash == nil {
		return "", errors.Wrapf(ErrPayloadTooLarge, "%s needs %d bytes", i.Kind(), len(s))
	}
	key := stashKey(s)
	if err := p.stash.Put(ctx, key, s, p.ttl); err != nil {
		return "", errors.Wrap(err, "action: stash payload")
	}
	return refPrefix + key, nil
}

// Unpack decodes data, resolving stash references. Unknown or expired
// references are reported as ErrDecode.
func (p *Packer) Unpack(ctx context.Context, data string) (Intent, error) {
	key, ok := strings.CutPrefix(data, refPrefix)
	if !ok {
		return Decode(data)
	}
	if len(key) != compactUUIDLen || p == nil || p.stash == nil {
		return nil, decodeErr("action: bad stash reference")
	}
	s, err := p.stash.Get(ctx, key)
	if errors.Is(err, ErrStashMiss) {
		return nil, errors.Mark(errors.Wrapf(err, "action: reference %s", key), ErrDecode)
	}
	if err != nil {
		return nil, errors.Wrap(err, "action: load stashed payload")
	}
	if strings.HasPrefix(s, refPrefix) {
		return nil, decodeErr("action: nested stash reference")
	}
	return Decode(s)
}

func stashKey(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return b64.EncodeToString(sum[:16])
}
