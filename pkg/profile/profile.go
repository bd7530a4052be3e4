package profile

// File represents a jstern.yaml configuration file.
type File struct {
	Version  int                `yaml:"version"           json:"version"`
	Vars     map[string]string  `yaml:"vars,omitempty"    json:"vars,omitempty"`
	Profiles map[string]Profile `yaml:"profiles"          json:"profiles"`
}

// Source kinds a profile can read from.
const (
	SourceStern    = "stern"
	SourceJournald = "journald"
	SourceFile     = "file"
)

// Profile is a named set of source, filter and projection settings.
type Profile struct {
	Source    string   `yaml:"source,omitempty"    json:"source,omitempty"`    // stern (default), journald, file
	Query     string   `yaml:"query,omitempty"     json:"query,omitempty"`     // stern
	Namespace string   `yaml:"namespace,omitempty" json:"namespace,omitempty"` // stern
	Context   string   `yaml:"context,omitempty"   json:"context,omitempty"`   // stern: kube context
	Since     string   `yaml:"since,omitempty"     json:"since,omitempty"`     // stern
	Tail      *int     `yaml:"tail,omitempty"      json:"tail,omitempty"`      // stern
	Args      []string `yaml:"args,omitempty"      json:"args,omitempty"`      // stern: extra arguments
	Unit      string   `yaml:"unit,omitempty"      json:"unit,omitempty"`      // journald
	Output    string   `yaml:"output,omitempty"    json:"output,omitempty"`    // journald: -o mode
	File      string   `yaml:"file,omitempty"      json:"file,omitempty"`      // file
	Follow    bool     `yaml:"follow,omitempty"    json:"follow,omitempty"`    // file
	Filters   []Filter `yaml:"filters,omitempty"   json:"filters,omitempty"`
	Keys      []string `yaml:"keys,omitempty"      json:"keys,omitempty"`
	Selector  string   `yaml:"selector,omitempty"  json:"selector,omitempty"`
	Separator bool     `yaml:"separator,omitempty" json:"separator,omitempty"`
	Padding   bool     `yaml:"padding,omitempty"   json:"padding,omitempty"`
}

// Filter is one key=value equality requirement.
type Filter struct {
	Key   string `yaml:"key"   json:"key"`
	Value string `yaml:"value" json:"value"`
}

// SourceKind returns the profile's source, defaulting to stern.
func (p Profile) SourceKind() string {
	if p.Source == "" {
		return SourceStern
	}
	return p.Source
}
