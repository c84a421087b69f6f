// Package rawdata reads loosely typed upstream user records.
//
// A Record is the decoded JSON object exactly as the learning platform sent it.
// Accessors never mutate the record and treat a missing key, a JSON null and a
// value of the wrong type the same way: as absent.
package rawdata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Record is one decoded JSON object.
type Record map[string]any

// Decode parses data into a generic JSON value. Numbers are kept as json.Number
// so large millisecond timestamps survive intact.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("decode raw record: %w", err)
	}
	return v, nil
}

// AsRecord converts v to a Record if it is a JSON object.
func AsRecord(v any) (Record, bool) {
	switch m := v.(type) {
	case Record:
		return m, m != nil
	case map[string]any:
		return Record(m), m != nil
	default:
		return nil, false
	}
}

// Number converts a JSON-ish numeric value to float64. NaN and infinities are rejected.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint64:
		f = float64(n)
	case uint32:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Truthy mirrors how the upstream's own clients test optional flags.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	}
	if f, ok := Number(v); ok {
		return f != 0
	}
	_, isMap := AsRecord(v)
	_, isList := v.([]any)
	return isMap || isList
}

// Get returns the raw value stored at key.
func (r Record) Get(key string) (any, bool) {
	if r == nil {
		return nil, false
	}
	v, ok := r[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// Path walks nested objects, e.g. Path("streakData", "currentStreak", "endDate").
func (r Record) Path(keys ...string) (any, bool) {
	cur := r
	for i, k := range keys {
		v, ok := cur.Get(k)
		if !ok {
			return nil, false
		}
		if i == len(keys)-1 {
			return v, true
		}
		next, ok := AsRecord(v)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Float returns the number at key.
func (r Record) Float(key string) (float64, bool) {
	v, ok := r.Get(key)
	if !ok {
		return 0, false
	}
	return Number(v)
}

// Int returns the number at key truncated to an int.
func (r Record) Int(key string) (int, bool) {
	f, ok := r.Float(key)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// FirstFloat returns the first key holding a number, even if that number is zero.
func (r Record) FirstFloat(keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := r.Float(k); ok {
			return f, true
		}
	}
	return 0, false
}

// FirstNonZero returns the first key holding a non-zero number.
func (r Record) FirstNonZero(keys ...string) (float64, bool) {
	for _, k := range keys {
		if f, ok := r.Float(k); ok && f != 0 {
			return f, true
		}
	}
	return 0, false
}

// String returns the string at key. Numbers are formatted so numeric ids read as strings.
func (r Record) String(key string) (string, bool) {
	v, ok := r.Get(key)
	if !ok {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	}
	if f, ok := Number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64), true
	}
	return "", false
}

// Str returns the string at key or "".
func (r Record) Str(key string) string {
	s, _ := r.String(key)
	return s
}

// Bool returns the boolean at key. Only real booleans count.
func (r Record) Bool(key string) (bool, bool) {
	v, ok := r.Get(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// FirstBool returns the first key holding a boolean.
func (r Record) FirstBool(keys ...string) (bool, bool) {
	for _, k := range keys {
		if b, ok := r.Bool(k); ok {
			return b, true
		}
	}
	return false, false
}

// Truthy reports whether the value at key is truthy.
func (r Record) Truthy(key string) bool {
	v, _ := r.Get(key)
	return Truthy(v)
}

// Record returns the nested object at key.
func (r Record) Record(key string) (Record, bool) {
	v, ok := r.Get(key)
	if !ok {
		return nil, false
	}
	return AsRecord(v)
}

// List returns the array at key, or nil.
func (r Record) List(key string) []any {
	v, ok := r.Get(key)
	if !ok {
		return nil
	}
	l, _ := v.([]any)
	return l
}

// Records returns the objects of the array at key, skipping non-object items.
func (r Record) Records(key string) []Record {
	return Records(r.List(key))
}

// Records filters a JSON array down to its object items.
func Records(items []any) []Record {
	out := make([]Record, 0, len(items))
	for _, item := range items {
		if rec, ok := AsRecord(item); ok {
			out = append(out, rec)
		}
	}
	return out
}

// Entry is one key/value pair of an object keyed by an identifier such as a language code.
type Entry struct {
	Key   string
	Value Record
}

// Entries returns the object-valued members of the object at key, sorted by key
// so that iteration order is stable across calls.
func (r Record) Entries(key string) []Entry {
	m, ok := r.Record(key)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		if rec, ok := m.Record(k); ok {
			out = append(out, Entry{Key: k, Value: rec})
		}
	}
	return out
}

// Clone returns a shallow copy of r; nested values are shared.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// ContainsFold reports whether s contains substr, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
