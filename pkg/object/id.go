package object

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// IDSize is the length of a raw object id in bytes.
	IDSize = 20
	// HexSize is the length of a fully spelled-out hex object id.
	HexSize = IDSize * 2
)

// ID is the content hash of a stored object. Two objects with equal
// content have equal IDs; equality and ordering are byte-wise.
type ID [IDSize]byte

// ZeroID is the all-zero id, used as the "absent" marker.
var ZeroID ID

// IDFromBytes builds an ID from a raw hash.
func IDFromBytes(raw []byte) (ID, error) {
	var id ID
	if len(raw) != IDSize {
		return id, fmt.Errorf("object id: want %d raw bytes, got %d: %w", IDSize, len(raw), ErrInvalidArgument)
	}
	copy(id[:], raw)
	return id, nil
}

// ParseID parses a full 40-character hex id.
func ParseID(s string) (ID, error) {
	var id ID
	if len(s) != HexSize {
		return id, fmt.Errorf("object id: want %d hex chars, got %d: %w", HexSize, len(s), ErrInvalidArgument)
	}
	raw, err := hex.DecodeString(strings.ToLower(s))
	if err != nil {
		return id, fmt.Errorf("object id: bad hex %q: %w", s, ErrInvalidArgument)
	}
	copy(id[:], raw)
	return id, nil
}

// String returns the lowercase hex form.
func (id ID) String() string {
	return hex.EncodeToString(id[:])
}

// IsZero reports whether id is the all-zero id.
func (id ID) IsZero() bool {
	return id == ZeroID
}

// Compare orders ids lexicographically on raw bytes. The ordering is used
// for deterministic tree serialization and merge-base tie-breaks.
func (id ID) Compare(other ID) int {
	return bytes.Compare(id[:], other[:])
}

// Less reports whether id sorts before other.
func (id ID) Less(other ID) bool {
	return id.Compare(other) < 0
}

// Prefix is a partial hex id used for abbreviated lookup. A prefix must
// disambiguate to exactly one stored object or resolution fails.
type Prefix struct {
	hex string
}

// ParsePrefix validates and normalizes a partial hex id. Prefixes longer
// than a full id or containing non-hex characters are rejected.
func ParsePrefix(s string) (Prefix, error) {
	s = strings.ToLower(s)
	if s == "" || len(s) > HexSize {
		return Prefix{}, fmt.Errorf("object prefix: bad length %d: %w", len(s), ErrInvalidArgument)
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return Prefix{}, fmt.Errorf("object prefix: bad hex %q: %w", s, ErrInvalidArgument)
		}
	}
	return Prefix{hex: s}, nil
}

// String returns the normalized hex prefix.
func (p Prefix) String() string {
	return p.hex
}

// Len returns the prefix length in hex characters.
func (p Prefix) Len() int {
	return len(p.hex)
}

// Matches reports whether id starts with this prefix.
func (p Prefix) Matches(id ID) bool {
	return p.hex != "" && strings.HasPrefix(id.String(), p.hex)
}
