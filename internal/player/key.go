// Package player provides the shared player domain model.
// This package is used by the savedata, identity, assets, app, and output packages.
package player

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Key is a stable, globally unique player identifier.
// The canonical form is the hyphenated UUID; the short form (32 hex digits,
// hyphens stripped) is used as the on-disk and record key.
type Key struct {
	id uuid.UUID
}

// ParseKey parses a canonical hyphenated UUID string into a Key.
// Only the 36-character hyphenated form is accepted; the short form is a
// derived representation, not an input format.
func ParseKey(s string) (Key, error) {
	if len(s) != 36 {
		return Key{}, fmt.Errorf("player key %q: not in hyphenated form", s)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return Key{}, fmt.Errorf("player key %q: %w", s, err)
	}
	return Key{id: id}, nil
}

// String returns the canonical hyphenated form.
func (k Key) String() string {
	return k.id.String()
}

// Short returns the 32-hex-digit form with hyphens stripped.
func (k Key) Short() string {
	return strings.ReplaceAll(k.id.String(), "-", "")
}

// IsZero reports whether the key is the zero value.
func (k Key) IsZero() bool {
	return k.id == uuid.Nil
}
