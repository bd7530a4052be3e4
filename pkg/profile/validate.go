package profile

import (
	"fmt"

	"github.com/modoterra/jstern/pkg/query"
)

// Validate checks the profile file for structural correctness.
func Validate(f *File) []error {
	var errs []error

	if f.Version != 1 {
		errs = append(errs, fmt.Errorf("version must be 1, got %d", f.Version))
	}

	if len(f.Profiles) == 0 {
		errs = append(errs, fmt.Errorf("file must define at least one profile"))
	}

	for _, name := range f.Names() {
		p := f.Profiles[name]
		switch p.SourceKind() {
		case SourceStern:
			if p.Query == "" {
				errs = append(errs, fmt.Errorf("profile %q (stern): query is required", name))
			}
		case SourceJournald:
			if p.Unit == "" {
				errs = append(errs, fmt.Errorf("profile %q (journald): unit is required", name))
			}
		case SourceFile:
			if p.File == "" {
				errs = append(errs, fmt.Errorf("profile %q (file): file is required", name))
			}
		default:
			errs = append(errs, fmt.Errorf("profile %q: unknown source %q", name, p.Source))
		}

		if _, err := p.Projection(); err != nil {
			errs = append(errs, fmt.Errorf("profile %q: %w", name, err))
		}
		if _, err := p.Predicates(); err != nil {
			errs = append(errs, fmt.Errorf("profile %q: %w", name, err))
		}
	}

	return errs
}

// Projection builds the profile's projection.
func (p Profile) Projection() (query.Projection, error) {
	return query.NewProjection(p.Selector, p.Keys)
}

// Predicates builds the profile's filters in order.
func (p Profile) Predicates() ([]query.Predicate, error) {
	preds := make([]query.Predicate, 0, len(p.Filters))
	for i, f := range p.Filters {
		pred, err := query.NewPredicate(f.Key, f.Value)
		if err != nil {
			return nil, fmt.Errorf("filter[%d]: %w", i, err)
		}
		preds = append(preds, pred)
	}
	return preds, nil
}
