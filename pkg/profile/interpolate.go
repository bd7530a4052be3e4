package profile

import (
	"os"
	"regexp"
)

// refPattern matches ${name}. A bare $ is left alone since queries are regexes.
var refPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolate expands ${name} in string settings. Names come from vars
// first, then the environment; unknown names are left untouched.
func interpolate(f *File) {
	expand := func(s string) string {
		return refPattern.ReplaceAllStringFunc(s, func(ref string) string {
			name := refPattern.FindStringSubmatch(ref)[1]
			if v, ok := f.Vars[name]; ok {
				return v
			}
			if v, ok := os.LookupEnv(name); ok {
				return v
			}
			return ref
		})
	}

	for name, p := range f.Profiles {
		p.Query = expand(p.Query)
		p.Namespace = expand(p.Namespace)
		p.Context = expand(p.Context)
		p.Since = expand(p.Since)
		p.Unit = expand(p.Unit)
		p.File = expand(p.File)
		p.Selector = expand(p.Selector)
		for i := range p.Keys {
			p.Keys[i] = expand(p.Keys[i])
		}
		for i := range p.Args {
			p.Args[i] = expand(p.Args[i])
		}
		for i := range p.Filters {
			p.Filters[i].Key = expand(p.Filters[i].Key)
			p.Filters[i].Value = expand(p.Filters[i].Value)
		}
		f.Profiles[name] = p
	}
}
