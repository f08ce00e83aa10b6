package models

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
)

// Record is an insertion-ordered mapping from field name to value, the
// in-memory shape of one observation (e.g., one trading day) or of a whole
// response envelope.
//
// Allowed value types:
//   - string, bool, nil
//   - int64, float64
//   - *Record (nested object)
//   - []any (list; elements follow the same rules)
//
// Key order is preserved across Set/Delete and across JSON
// marshal/unmarshal, so a transformed envelope serializes with the same
// field order the upstream adapter produced.
type Record struct {
	keys   []string
	values map[string]any
}

// NewRecord creates an empty Record.
func NewRecord() *Record {
	return &Record{values: make(map[string]any)}
}

// Set stores value under key, appending the key to the order on first use.
func (r *Record) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get returns the value stored under key and whether the key is present.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Has reports whether key is present.
func (r *Record) Has(key string) bool {
	_, ok := r.values[key]
	return ok
}

// Delete removes key and its value. Unknown keys are a no-op.
func (r *Record) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	for i, k := range r.keys {
		if k == key {
			r.keys = append(r.keys[:i], r.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of fields.
func (r *Record) Len() int {
	return len(r.keys)
}

// Keys returns the field names in insertion order. The slice is a copy.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Range calls fn for each field in insertion order until fn returns false.
func (r *Record) Range(fn func(key string, value any) bool) {
	for _, k := range r.keys {
		if !fn(k, r.values[k]) {
			return
		}
	}
}

// First resolves a logical field through an ordered list of candidate key
// synonyms: the first candidate that is present with a non-nil value wins.
// This makes historical field-name fallbacks (tarih → date → timestamp …)
// an explicit, testable contract.
func (r *Record) First(candidates ...string) (key string, value any, ok bool) {
	for _, c := range candidates {
		if v, present := r.values[c]; present && v != nil {
			return c, v, true
		}
	}
	return "", nil, false
}

// Clone returns a deep copy. Nested Records and lists are copied; scalar
// values are shared (they are immutable).
func (r *Record) Clone() *Record {
	out := NewRecord()
	for _, k := range r.keys {
		out.Set(k, cloneValue(r.values[k]))
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Record:
		return t.Clone()
	case []any:
		items := make([]any, len(t))
		for i, it := range t {
			items[i] = cloneValue(it)
		}
		return items
	default:
		return v
	}
}

// MarshalJSON serializes fields in insertion order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value of %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a JSON object preserving key order. Numbers without
// a fractional part become int64, all others float64.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("read token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("expected object, got %v", tok)
	}

	rec, err := decodeObject(dec)
	if err != nil {
		return err
	}
	*r = *rec
	return nil
}

func decodeObject(dec *json.Decoder) (*Record, error) {
	rec := NewRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return nil, fmt.Errorf("value of %q: %w", key, err)
		}
		rec.Set(key, val)
	}
	if _, err := dec.Token(); err != nil { // consume '}'
		return nil, fmt.Errorf("close object: %w", err)
	}
	return rec, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if t == '{' {
			return decodeObject(dec)
		}
		// '['
		items := []any{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		if _, err := dec.Token(); err != nil { // consume ']'
			return nil, err
		}
		return items, nil
	case json.Number:
		if i, err := strconv.ParseInt(string(t), 10, 64); err == nil {
			return i, nil
		}
		return t.Float64()
	default:
		// string, bool or nil
		return tok, nil
	}
}
