// Package payload reads the free-form JSON object attached to a change request.
//
// Update requests carry the proposed field values at the top level and may
// carry a snapshot of the entity under OriginalKey. Keys are compared in
// lowerCamelCase, so "FullName", "fullName" and "full_name" name the same field.
// Canonical keys are computed when reading; callers store the payload as received.
package payload

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// OriginalKey holds the entity snapshot taken when the request was created
const OriginalKey = "_original"

var (
	ErrNotObject         = errors.New("payload must be a single JSON object")
	ErrOriginalNotObject = errors.New("_original must be a JSON object")
)

// Canonicalize returns the lowerCamelCase form of a field name
func Canonicalize(key string) string {
	if key == "" || key == OriginalKey {
		return key
	}

	if strings.ContainsAny(key, "_-") {
		parts := strings.FieldsFunc(key, func(r rune) bool { return r == '_' || r == '-' })
		var b strings.Builder
		for i, part := range parts {
			if i == 0 {
				b.WriteString(lowerFirst(part))
				continue
			}
			r, size := utf8.DecodeRuneInString(part)
			b.WriteRune(unicode.ToUpper(r))
			b.WriteString(part[size:])
		}
		return b.String()
	}

	return lowerFirst(key)
}

func lowerFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || unicode.IsLower(r) {
		return s
	}
	return string(unicode.ToLower(r)) + s[size:]
}

// CanonicalizeKeys returns a copy of fields with every top-level key canonicalized.
// When two keys collapse onto the same name the one already in canonical form wins,
// otherwise the key that sorts first does.
func CanonicalizeKeys(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		canonical := Canonicalize(key)
		if _, taken := out[canonical]; taken && key != canonical {
			continue
		}
		out[canonical] = fields[key]
	}
	return out
}

// Decode parses raw as a JSON object. Numbers are kept as json.Number.
func Decode(raw json.RawMessage) (map[string]any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrNotObject
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotObject, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: unexpected data after the object", ErrNotObject)
	}
	return fields, nil
}

// Validate checks that raw is a JSON object whose snapshot, if any, is an object too
func Validate(raw json.RawMessage) error {
	_, _, err := SplitUpdate(raw)
	return err
}

// Proposed returns the payload without the snapshot. Keys are left as sent.
func Proposed(raw json.RawMessage) (map[string]any, error) {
	fields, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	delete(fields, OriginalKey)
	return fields, nil
}

// SplitUpdate separates the proposed values from the snapshot.
// Both maps have canonical keys; original is empty when no snapshot was sent.
func SplitUpdate(raw json.RawMessage) (proposed, original map[string]any, err error) {
	fields, err := Decode(raw)
	if err != nil {
		return nil, nil, err
	}

	original = map[string]any{}
	if snapshot, ok := fields[OriginalKey]; ok && snapshot != nil {
		obj, ok := snapshot.(map[string]any)
		if !ok {
			return nil, nil, ErrOriginalNotObject
		}
		original = CanonicalizeKeys(obj)
	}
	delete(fields, OriginalKey)

	return CanonicalizeKeys(fields), original, nil
}
