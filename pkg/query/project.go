package query

import (
	"errors"
	"fmt"
)

// ErrConflictingProjection is returned when both a selector and keys are set.
var ErrConflictingProjection = errors.New("cannot use selector and keys at the same time")

// ProjectionKind identifies which part of a record is shown.
type ProjectionKind int

const (
	ProjectFull ProjectionKind = iota
	ProjectSelector
	ProjectKeys
)

func (k ProjectionKind) String() string {
	switch k {
	case ProjectSelector:
		return "selector"
	case ProjectKeys:
		return "keys"
	default:
		return "full"
	}
}

// Projection selects what to display from a matched record.
type Projection struct {
	kind     ProjectionKind
	selector Path
	keys     []Path
}

// NewProjection builds a projection from the raw selector and key list.
// An empty selector and no keys gives the full record.
func NewProjection(selector string, keys []string) (Projection, error) {
	if selector != "" && len(keys) > 0 {
		return Projection{}, ErrConflictingProjection
	}
	if selector != "" {
		p, err := ParsePath(selector)
		if err != nil {
			return Projection{}, fmt.Errorf("selector: %w", err)
		}
		return Projection{kind: ProjectSelector, selector: p}, nil
	}
	if len(keys) > 0 {
		paths := make([]Path, 0, len(keys))
		for _, k := range keys {
			p, err := ParsePath(k)
			if err != nil {
				return Projection{}, fmt.Errorf("keys: %w", err)
			}
			if p.Len() == 0 {
				return Projection{}, fmt.Errorf("keys: %w", ErrEmptySegment)
			}
			paths = append(paths, p)
		}
		return Projection{kind: ProjectKeys, keys: paths}, nil
	}
	return Projection{kind: ProjectFull}, nil
}

// Full returns the projection that passes records through whole.
func Full() Projection { return Projection{kind: ProjectFull} }

// Selector returns a projection extracting the value at p.
func Selector(p Path) Projection { return Projection{kind: ProjectSelector, selector: p} }

// Keys returns a projection building an object from the given paths.
// Unlike NewProjection, an empty list is kept as a key projection and
// therefore never shows anything.
func Keys(paths ...Path) Projection {
	return Projection{kind: ProjectKeys, keys: append([]Path(nil), paths...)}
}

// Kind reports the projection variant.
func (p Projection) Kind() ProjectionKind { return p.kind }

// Project returns the value to display for record, or nil when there is
// nothing to show.
//
// Keys projections map each original dotted key to its resolved value,
// skipping keys that do not resolve; a resolved null is kept.
func (p Projection) Project(record any) any {
	switch p.kind {
	case ProjectSelector:
		v, ok := Resolve(record, p.selector)
		if !ok {
			return nil
		}
		return v
	case ProjectKeys:
		out := make(map[string]any, len(p.keys))
		for _, k := range p.keys {
			if v, ok := Resolve(record, k); ok {
				out[k.String()] = v
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return record
	}
}
