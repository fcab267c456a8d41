// Package docstore holds the pieces both DocumentGateway implementations
// share: the server timestamp token, JSON normalisation and ordering.
package docstore

import (
	"encoding/json"
	"fmt"
	"time"

	"portfolio-backend/internal/domain"
)

// Timestamp is the token returned by ServerTimestamp.
type Timestamp struct{}

// FormatTime renders t the way resolved timestamps are stored.
func FormatTime(t time.Time) string {
	return t.UTC().Format(domain.TimestampLayout)
}

// Resolve replaces top-level Timestamp tokens with now.
func Resolve(doc domain.Document, now time.Time) domain.Document {
	out := make(domain.Document, len(doc))
	for k, v := range doc {
		if _, ok := v.(Timestamp); ok {
			out[k] = FormatTime(now)
			continue
		}
		out[k] = v
	}
	return out
}

// Normalize round-trips doc through JSON so that it holds only maps,
// slices, strings, float64, bool and nil. It doubles as a deep copy.
func Normalize(doc domain.Document) (domain.Document, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var out domain.Document
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return out, nil
}

// NormalizeValue is Normalize for a single value.
func NormalizeValue(v interface{}) (interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Compare orders two normalised values: missing < bool < number < string.
func Compare(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch av := a.(type) {
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv := b.(string)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return 0
}

func rank(v interface{}) int {
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	default:
		return 4
	}
}

// Encode converts a typed value into a Document.
func Encode(v interface{}) (domain.Document, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return doc, nil
}

// Decode fills out from a Document.
func Decode(doc domain.Document, out interface{}) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
