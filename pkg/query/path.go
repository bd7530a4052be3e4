package query

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySegment is returned when a dotted path contains an empty segment.
var ErrEmptySegment = errors.New("empty path segment")

// Path is a dot-separated key path split into its segments.
// Literal dots inside keys cannot be escaped.
type Path struct {
	raw      string
	segments []string
}

// ParsePath splits a dotted path such as "metadata.labels.app".
// An empty string yields the empty path, which resolves to the value itself.
func ParsePath(s string) (Path, error) {
	if s == "" {
		return Path{}, nil
	}
	segments := strings.Split(s, ".")
	for i, seg := range segments {
		if seg == "" {
			return Path{}, fmt.Errorf("path %q segment %d: %w", s, i, ErrEmptySegment)
		}
	}
	return Path{raw: s, segments: segments}, nil
}

// MustParsePath is like ParsePath but panics on error. Intended for tests and constants.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the original dotted form.
func (p Path) String() string { return p.raw }

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segments) }

// Resolve walks path through v. Objects are descended by key. When an array
// is met, the remaining segments are applied to each element in order and
// the first element that fully resolves wins. Scalars with segments left
// do not resolve.
//
// A key present with a null value resolves to (nil, true).
func Resolve(v any, p Path) (any, bool) {
	return resolve(v, p.segments)
}

func resolve(cur any, segments []string) (any, bool) {
	for i, seg := range segments {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			rest := segments[i:]
			for _, elem := range node {
				if found, ok := resolve(elem, rest); ok {
					return found, true
				}
			}
			return nil, false
		default:
			return nil, false
		}
	}
	return cur, true
}
