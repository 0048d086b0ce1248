package classify

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// regexPrefix marks a registry pattern as a full regular expression instead
// of a literal contains-match.
const regexPrefix = "regex:"

// Override is one curated verified-venue record. A PlaceID match takes
// precedence over a name-pattern match; Score defaults to 100.
type Override struct {
	NamePattern string `yaml:"name_pattern"`
	PlaceID     string `yaml:"place_id,omitempty"`
	Score       int    `yaml:"score,omitempty"`
	Note        string `yaml:"note,omitempty"`

	re *regexp.Regexp
}

// Registry holds the curated verified-venue overrides, loaded once at
// startup and immutable afterwards.
type Registry struct {
	byPlaceID map[string]*Override
	byName    []*Override
}

// defaultOverrides seed the registry when no fixture file is configured.
var defaultOverrides = []Override{
	{NamePattern: "d-edge", Note: "electronic music club, Barra Funda"},
	{NamePattern: "audio club", Note: "concert hall and club"},
	{NamePattern: "clash club", Note: "electronic music club"},
	{NamePattern: "love story", Note: "after-hours club, centro"},
	{NamePattern: "regex:^vila seu (justino|butantan)", Note: "bar group, multiple units"},
}

// NewRegistry builds a registry from the given overrides.
func NewRegistry(overrides []Override) (*Registry, error) {
	r := &Registry{byPlaceID: make(map[string]*Override)}
	for i := range overrides {
		o := overrides[i]
		if o.Score == 0 {
			o.Score = 100
		}
		if strings.HasPrefix(o.NamePattern, regexPrefix) {
			re, err := regexp.Compile(strings.TrimPrefix(o.NamePattern, regexPrefix))
			if err != nil {
				return nil, eris.Wrapf(err, "registry: compile pattern %q", o.NamePattern)
			}
			o.re = re
		}
		if o.PlaceID != "" {
			r.byPlaceID[o.PlaceID] = &o
		}
		if o.NamePattern != "" {
			r.byName = append(r.byName, &o)
		}
	}
	return r, nil
}

// DefaultRegistry returns a registry seeded with the built-in overrides.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultOverrides)
	if err != nil {
		// Built-in patterns are compile-checked by tests.
		panic(err)
	}
	return r
}

// registryFile is the YAML shape of a registry fixture.
type registryFile struct {
	Overrides []Override `yaml:"overrides"`
}

// LoadRegistry reads a YAML fixture of overrides from path.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read fixture")
	}

	var f registryFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal fixture")
	}

	return NewRegistry(f.Overrides)
}

// Match returns the override for the given place, or nil. Exact place-ID
// matches win over name patterns; name matching is case- and
// accent-insensitive.
func (r *Registry) Match(placeID, name string) *Override {
	if o, ok := r.byPlaceID[placeID]; ok {
		return o
	}

	folded := fold(name)
	for _, o := range r.byName {
		if o.re != nil {
			if o.re.MatchString(folded) {
				return o
			}
			continue
		}
		if strings.Contains(folded, fold(o.NamePattern)) {
			return o
		}
	}
	return nil
}
