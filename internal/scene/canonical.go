package scene

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for content-addressed snapshot hashing. The version
// suffix enables future algorithm migration.
const domainSnapshot = "slate/snapshot/v1"

// MarshalSnapshot produces canonical JSON for a wire snapshot.
//
// This is the ONLY serialization used for snapshot hashing and golden
// comparison. Differences from standard json.Marshal:
//  1. Object ids emitted in sorted order
//  2. No HTML escaping (< > & are NOT escaped)
//  3. Strings are NFC normalized
//  4. Coordinates are ints (the wire protocol has no floats)
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalCanonicalString(id)
		if err != nil {
			return nil, fmt.Errorf("snapshot key %q: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		obj, err := marshalWireObject(s[id])
		if err != nil {
			return nil, fmt.Errorf("snapshot object %q: %w", id, err)
		}
		buf.Write(obj)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SnapshotHash computes the content-addressed identity of a snapshot.
// Format: SHA256(domain + 0x00 + canonicalJSON). The null separator
// prevents domain/data boundary ambiguity.
func SnapshotHash(s Snapshot) (string, error) {
	canonical, err := MarshalSnapshot(s)
	if err != nil {
		return "", fmt.Errorf("SnapshotHash: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(domainSnapshot))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// marshalWireObject emits a wire object with keys in fixed sorted order:
// h, t, txt, w, x, y. Txt is omitted when empty, matching the wire format.
func marshalWireObject(w WireObject) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, `"h":%d,`, w.H)
	tag, err := marshalCanonicalString(w.T)
	if err != nil {
		return nil, err
	}
	buf.WriteString(`"t":`)
	buf.Write(tag)
	if w.Txt != "" {
		txt, err := marshalCanonicalString(w.Txt)
		if err != nil {
			return nil, err
		}
		buf.WriteString(`,"txt":`)
		buf.Write(txt)
	}
	fmt.Fprintf(&buf, `,"w":%d,"x":%d,"y":%d`, w.W, w.X, w.Y)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalCanonicalString NFC-normalizes and JSON-encodes a string without
// HTML escaping.
func marshalCanonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, fmt.Errorf("encode string: %w", err)
	}
	// Encoder appends a newline
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// NormalizeText NFC-normalizes a text payload before it goes on the wire.
// Remote stores compare field values byte-wise when diffing snapshots, so
// both writers and the diff must agree on one normal form.
func NormalizeText(s string) string {
	return norm.NFC.String(s)
}
