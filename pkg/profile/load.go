package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is the profile file looked up in the working directory.
const DefaultFileName = "jstern.yaml"

// Parse decodes a profile file and interpolates ${var} references.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse profiles: %w", err)
	}
	interpolate(&f)
	return &f, nil
}

// Load reads and parses the profile file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Save writes f to path as YAML.
func Save(f *File, path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// SearchPaths lists where a profile file is looked for, in order.
func SearchPaths() []string {
	paths := []string{DefaultFileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "jstern", DefaultFileName))
	}
	return paths
}

// Find returns explicit when set, otherwise the first existing search path.
// It returns "" when no file exists.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	for _, p := range SearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", nil
}

// Get returns the named profile.
func (f *File) Get(name string) (Profile, error) {
	p, ok := f.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile not found: %s", name)
	}
	return p, nil
}

// Names returns the profile names sorted.
func (f *File) Names() []string {
	names := make([]string, 0, len(f.Profiles))
	for name := range f.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Example returns a starter profile file.
func Example() *File {
	tail := 10
	return &File{
		Version: 1,
		Vars:    map[string]string{"ns": "default"},
		Profiles: map[string]Profile{
			"errors": {
				Query:     "web-.*",
				Namespace: "${ns}",
				Tail:      &tail,
				Filters:   []Filter{{Key: "level", Value: "error"}},
				Keys:      []string{"time", "msg", "error"},
				Separator: true,
			},
			"messages": {
				Query:     "web-.*",
				Namespace: "${ns}",
				Selector:  "msg",
			},
		},
	}
}
