// Package dedup removes duplicate records and optionally orders the result.
package dedup

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/gowebpki/jcs"

	"github.com/starford/notesift/internal/checksum"
	"github.com/starford/notesift/internal/models"
)

// ErrUnhashable is returned when a record holds a nested object or array.
var ErrUnhashable = errors.New("dedup: record field is not a scalar")

// Canonical returns the RFC 8785 form of a flat record. Two records are
// duplicates iff their canonical forms are equal.
func Canonical(record map[string]any) ([]byte, error) {
	for k, v := range record {
		switch v.(type) {
		case nil, string, bool, float64, float32, int, int64, int32, uint, uint64, uint32, json.Number:
		default:
			return nil, fmt.Errorf("%w: field %q has type %T", ErrUnhashable, k, v)
		}
	}
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("dedup: marshal: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("dedup: canonicalize: %w", err)
	}
	return out, nil
}

// Digest returns the hex SHA-256 of the record's canonical form.
func Digest(record map[string]any) (string, error) {
	c, err := Canonical(record)
	if err != nil {
		return "", err
	}
	return checksum.Sum(c), nil
}

// Records keeps the first occurrence of every distinct record in input
// order. When sortKey is set the survivors are stably sorted ascending by
// that field; records missing the field sort first.
func Records(records []map[string]any, sortKey string) ([]map[string]any, error) {
	seen := make(map[string]struct{}, len(records))
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		key, err := Canonical(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[string(key)]; dup {
			continue
		}
		seen[string(key)] = struct{}{}
		out = append(out, r)
	}
	if sortKey != "" {
		sort.SliceStable(out, func(i, j int) bool {
			return less(out[i][sortKey], out[j][sortKey])
		})
	}
	return out, nil
}

// Notes is Records for typed note records. Note fields are always scalar.
func Notes(records []models.NoteRecord, sortKey string) []models.NoteRecord {
	maps := make([]map[string]any, len(records))
	for i, r := range records {
		maps[i] = r.Fields()
	}
	kept, err := Records(maps, sortKey)
	if err != nil {
		// Unreachable for NoteRecord.
		panic(err)
	}
	out := make([]models.NoteRecord, len(kept))
	for i, m := range kept {
		out[i] = models.RecordFromFields(m)
	}
	return out
}

// rank orders values of different kinds: missing, bool, number, string.
func rank(v any) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case string:
		return 3
	default:
		if _, ok := number(v); ok {
			return 2
		}
		return 4
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func less(a, b any) bool {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra < rb
	}
	switch x := a.(type) {
	case string:
		return x < b.(string)
	case bool:
		return !x && b.(bool)
	}
	fa, _ := number(a)
	fb, _ := number(b)
	return fa < fb
}
