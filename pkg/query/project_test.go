package query

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestNewProjection(t *testing.T) {
	tests := []struct {
		selector string
		keys     []string
		want     ProjectionKind
		wantErr  error
	}{
		{"", nil, ProjectFull, nil},
		{"a.b", nil, ProjectSelector, nil},
		{"", []string{"a", "b.c"}, ProjectKeys, nil},
		{"a", []string{"b"}, 0, ErrConflictingProjection},
		{"a..b", nil, 0, ErrEmptySegment},
		{"", []string{""}, 0, ErrEmptySegment},
	}
	for _, tt := range tests {
		p, err := NewProjection(tt.selector, tt.keys)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("(%q, %v): expected %v, got %v", tt.selector, tt.keys, tt.wantErr, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("(%q, %v): unexpected error: %v", tt.selector, tt.keys, err)
			continue
		}
		if p.Kind() != tt.want {
			t.Errorf("(%q, %v): kind %s, want %s", tt.selector, tt.keys, p.Kind(), tt.want)
		}
	}
}

func TestProjectFull(t *testing.T) {
	rec := decode(t, `{"pod":"web-1","level":"info"}`)
	if got := Full().Project(rec); !reflect.DeepEqual(got, rec) {
		t.Errorf("got %#v, want %#v", got, rec)
	}
}

func TestProjectSelector(t *testing.T) {
	rec := decode(t, `{"meta":{"labels":{"app":"x"},"n":null},"items":[{"id":1},{"id":2}]}`)
	tests := []struct {
		selector string
		want     any
	}{
		{"meta.labels.app", "x"},
		{"items.id", json.Number("1")},
		{"meta.n", nil},
		{"meta.none", nil},
		{"meta.labels", map[string]any{"app": "x"}},
	}
	for _, tt := range tests {
		got := Selector(MustParsePath(tt.selector)).Project(rec)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %#v, want %#v", tt.selector, got, tt.want)
		}
	}
}

func TestProjectKeys(t *testing.T) {
	rec := decode(t, `{"ts":"12:00","msg":"hi","meta":{"app":"x","n":null}}`)

	got := Keys(MustParsePath("msg"), MustParsePath("meta.app"), MustParsePath("meta.n"), MustParsePath("nope")).Project(rec)
	want := map[string]any{"msg": "hi", "meta.app": "x", "meta.n": nil}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %#v, want %#v", got, want)
	}

	if got := Keys(MustParsePath("nope")).Project(rec); got != nil {
		t.Errorf("no resolved keys: got %#v, want nil", got)
	}
	if got := Keys().Project(rec); got != nil {
		t.Errorf("empty key list: got %#v, want nil", got)
	}
}
