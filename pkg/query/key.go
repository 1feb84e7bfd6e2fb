package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a cached result as an ordered list of segments, e.g.
// K("orders", params) or K("admin-user-orders", userID, params).
//
// Segments are compared by their canonical JSON form: maps and structs with the
// same JSON shape address the same entry, and a key is related to every key
// that extends it.
type Key []any

// K builds a Key from segments.
func K(segments ...any) Key {
	return Key(segments)
}

// Canonical returns the canonical JSON encoding of each segment.
func (k Key) Canonical() []string {
	out := make([]string, len(k))
	for i, seg := range k {
		out[i] = canonicalSegment(seg)
	}
	return out
}

// String returns the key as a JSON array. Equal keys have equal strings.
func (k Key) String() string {
	return "[" + strings.Join(k.Canonical(), ",") + "]"
}

// HasPrefix reports whether k starts with every segment of prefix.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if canonicalSegment(k[i]) != canonicalSegment(prefix[i]) {
			return false
		}
	}
	return true
}

// ParseKey rebuilds a Key from the output of Canonical.
func ParseKey(canonical []string) (Key, error) {
	k := make(Key, len(canonical))
	for i, seg := range canonical {
		if !json.Valid([]byte(seg)) {
			return nil, fmt.Errorf("key segment %d is not valid JSON: %q", i, seg)
		}
		k[i] = json.RawMessage(seg)
	}
	return k, nil
}

// StoreKey returns the key under which a Store persists k. The store key of a
// prefix is a string prefix of the store key of every key extending it.
func (k Key) StoreKey() string {
	return storeKey(k.Canonical())
}

// storeKey renders canonical segments for a flat key-value store. Every segment
// is terminated, so the store key of a prefix is a string prefix of the store
// key of every key extending it, and of no other.
func storeKey(canonical []string) string {
	var b strings.Builder
	for _, seg := range canonical {
		b.WriteString(seg)
		b.WriteByte('|')
	}
	return b.String()
}

func canonicalSegment(seg any) string {
	switch v := seg.(type) {
	case nil:
		return "null"
	case json.RawMessage:
		return string(v)
	case string:
		b, _ := json.Marshal(v)
		return string(b)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	}

	raw, err := json.Marshal(seg)
	if err != nil {
		b, _ := json.Marshal(fmt.Sprintf("%v", seg))
		return string(b)
	}
	// Round-trip through an untyped value so struct fields come out in the
	// same sorted order as map keys.
	// UseNumber keeps integers beyond 2^53 distinct.
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var generic any
	if err := dec.Decode(&generic); err != nil {
		return string(raw)
	}
	normalised, err := json.Marshal(generic)
	if err != nil {
		return string(raw)
	}
	return string(normalised)
}
