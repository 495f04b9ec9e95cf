// Package identity derives the keys that bind a state variable to the
// real-world unknown it represents.
//
// Keys are name-based (RFC 4122 version 5) UUIDs. Every concrete variable kind
// owns a namespace derived from its type name, and the key of an instance is
// derived from that namespace and the instance's defining metadata. Two
// variables built from the same kind and metadata always produce the same key,
// on any run and in any process; the graph treats key equality as "same
// variable".
//
//	k1 := identity.FromStamp("fuse.Point2D", stamp, identity.Nil)
//	k2 := identity.FromStamp("fuse.Point2D", stamp, identity.Nil)
//	// k1 == k2
package identity

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Key is an immutable 128-bit variable identifier. Keys compare with ==, can
// be used as map keys, and are totally ordered by Compare.
type Key uuid.UUID

// Nil is the zero Key. No successfully constructed variable reports it.
var Nil Key

// root anchors every kind namespace so keys from this module never collide
// with v5 UUIDs generated under the RFC 4122 predefined namespaces.
var root = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/tailored-agentic-units/fuse/variable"))

// Namespace returns the namespace key of a variable kind.
func Namespace(typeName string) Key {
	return Key(uuid.NewSHA1(root, []byte(typeName)))
}

// Generate derives a key for a variable of the given kind from its defining
// metadata. Each part is length-prefixed before hashing, so the split between
// parts is significant: Generate(t, a, bc) differs from Generate(t, ab, c).
func Generate(typeName string, parts ...[]byte) Key {
	size := 0
	for _, p := range parts {
		size += binary.MaxVarintLen64 + len(p)
	}

	name := make([]byte, 0, size)
	for _, p := range parts {
		name = binary.AppendUvarint(name, uint64(len(p)))
		name = append(name, p...)
	}

	return Key(uuid.NewSHA1(uuid.UUID(Namespace(typeName)), name))
}

// FromStamp derives the key of a timestamped variable, optionally scoped to
// a device. The stamp is encoded as whole Unix seconds followed by the
// nanosecond within the second, so every representable instant maps to its
// own key and location and monotonic clock readings do not affect the result.
func FromStamp(typeName string, stamp time.Time, device Key) Key {
	var ts [12]byte
	binary.BigEndian.PutUint64(ts[:8], uint64(stamp.Unix()))
	binary.BigEndian.PutUint32(ts[8:], uint32(stamp.Nanosecond()))
	return Generate(typeName, ts[:], device[:])
}

// Parse decodes the canonical textual form of a key.
func Parse(s string) (Key, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return Nil, fmt.Errorf("invalid identity key %q: %w", s, err)
	}
	return Key(u), nil
}

// MustParse is like Parse but panics on malformed input. Intended for
// constants and tests.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

// FromBytes builds a key from its 16-byte binary form.
func FromBytes(b []byte) (Key, error) {
	u, err := uuid.FromBytes(b)
	if err != nil {
		return Nil, fmt.Errorf("invalid identity key bytes: %w", err)
	}
	return Key(u), nil
}

// String returns the canonical xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx form.
func (k Key) String() string {
	return uuid.UUID(k).String()
}

// IsNil reports whether k is the zero key.
func (k Key) IsNil() bool {
	return k == Nil
}

// Compare orders keys by their binary form. It returns -1, 0 or +1.
func (k Key) Compare(other Key) int {
	return bytes.Compare(k[:], other[:])
}

// Less reports whether k sorts before other.
func (k Key) Less(other Key) bool {
	return k.Compare(other) < 0
}

func (k Key) MarshalText() ([]byte, error) {
	return uuid.UUID(k).MarshalText()
}

func (k *Key) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
