package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidPredicate is returned for filter expressions without a key.
var ErrInvalidPredicate = errors.New("invalid filter")

// Predicate requires the value at Path to stringify to Value.
type Predicate struct {
	Path  Path
	Value string
}

// NewPredicate builds a predicate from a dotted key and its expected value.
func NewPredicate(key, value string) (Predicate, error) {
	if key == "" {
		return Predicate{}, fmt.Errorf("%w: empty key", ErrInvalidPredicate)
	}
	p, err := ParsePath(key)
	if err != nil {
		return Predicate{}, fmt.Errorf("%w: %w", ErrInvalidPredicate, err)
	}
	return Predicate{Path: p, Value: value}, nil
}

// ParsePredicate parses "key=value". The first '=' separates key from value,
// so the value itself may contain '='.
func ParsePredicate(expr string) (Predicate, error) {
	key, value, ok := strings.Cut(expr, "=")
	if !ok {
		return Predicate{}, fmt.Errorf("%w: %q: expected key=value", ErrInvalidPredicate, expr)
	}
	return NewPredicate(key, value)
}

func (p Predicate) String() string { return p.Path.String() + "=" + p.Value }

// Matches reports whether record satisfies the predicate. A path that does
// not resolve never matches.
func (p Predicate) Matches(record any) bool {
	v, ok := Resolve(record, p.Path)
	if !ok {
		return false
	}
	return Stringify(v) == p.Value
}

// Passes reports whether record satisfies every predicate. Evaluation stops
// at the first failure; no predicates means every record passes.
func Passes(record any, predicates []Predicate) bool {
	for _, p := range predicates {
		if !p.Matches(record) {
			return false
		}
	}
	return true
}

// Stringify converts a decoded JSON value to the text used for comparisons.
// Strings are returned as is, numbers keep their literal form, null is "null"
// and containers are compact JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case map[string]any, []any:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}
