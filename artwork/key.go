package artwork

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// EntityClass identifies which identifier namespace a raw id belongs to.
// Works are keyed by UPC, series by catalog member id.
type EntityClass int

const (
	Work EntityClass = iota + 1
	Series
)

func (c EntityClass) String() string {
	switch c {
	case Work:
		return "work"
	case Series:
		return "series"
	default:
		return "unknown"
	}
}

func ParseEntityClass(s string) (EntityClass, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "work", "album":
		return Work, nil
	case "series", "artist":
		return Series, nil
	default:
		return 0, fmt.Errorf("unknown entity class: %q", s)
	}
}

// Key is the namespaced identity of one artwork subject. The zero Key means
// no artwork is possible for the entity.
type Key struct {
	Class EntityClass
	ID    string
}

// KeyFor builds the key for rawID. An empty rawID yields the zero Key.
func KeyFor(class EntityClass, rawID string) Key {
	id := strings.TrimSpace(rawID)
	if id == "" {
		return Key{}
	}
	return Key{Class: class, ID: id}
}

func (k Key) IsZero() bool {
	return k.ID == ""
}

func (k Key) String() string {
	return k.Class.String() + ":" + k.ID
}

const artifactExt = ".jpg"

// FileName is the artifact name for k. Filesystem-safe ids are used as-is
// after a "-"; anything else is hashed after a "~", which no safe id can produce.
func (k Key) FileName() string {
	if isSafeID(k.ID) {
		return k.Class.String() + "-" + k.ID + artifactExt
	}
	sum := sha256.Sum256([]byte(k.ID))
	return k.Class.String() + "~" + hex.EncodeToString(sum[:]) + artifactExt
}

// keyFromFileName recovers the key for names written with a plain id.
// Hashed names cannot be reversed and report false.
func keyFromFileName(name string) (Key, bool) {
	if !strings.HasSuffix(name, artifactExt) {
		return Key{}, false
	}
	base := strings.TrimSuffix(name, artifactExt)
	class, id, ok := strings.Cut(base, "-")
	if !ok || !isSafeID(id) {
		return Key{}, false
	}
	c, err := ParseEntityClass(class)
	if err != nil || c.String() != class {
		return Key{}, false
	}
	return Key{Class: c, ID: id}, true
}

func isSafeID(id string) bool {
	if id == "" || id[0] == '.' || len(id) > 128 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}
