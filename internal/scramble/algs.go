package scramble

import (
	"embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed algs/*.yaml
var algFiles embed.FS

// Case is one algorithm case: a name, an optional group and equivalent
// solutions in preference order.
type Case struct {
	Name  string   `yaml:"name"`
	Group string   `yaml:"group,omitempty"`
	Algs  []string `yaml:"algs"`
}

// Usable returns the first algorithm made only of face turns and
// rotations.
func (c Case) Usable() (string, bool) {
	for _, alg := range c.Algs {
		if Supported(alg) {
			return alg, true
		}
	}
	return "", false
}

// AlgSet is an ordered list of cases.
type AlgSet struct {
	Name  string `yaml:"-"`
	Cases []Case `yaml:"cases"`
}

// Built-in sets.
const (
	SetF2L = "f2l"
	SetOLL = "oll"
)

// LoadAlgSet loads a built-in set by name.
func LoadAlgSet(name string) (*AlgSet, error) {
	data, err := algFiles.ReadFile("algs/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("unknown algorithm set %q: %w", name, err)
	}
	return ParseAlgSet(name, data)
}

// ParseAlgSet parses a YAML case list.
func ParseAlgSet(name string, data []byte) (*AlgSet, error) {
	set := &AlgSet{Name: name}
	if err := yaml.Unmarshal(data, set); err != nil {
		return nil, fmt.Errorf("failed to parse algorithm set %q: %w", name, err)
	}
	if len(set.Cases) == 0 {
		return nil, fmt.Errorf("algorithm set %q has no cases", name)
	}
	return set, nil
}

// Case returns the case at index i.
func (s *AlgSet) Case(i int) (Case, bool) {
	if i < 0 || i >= len(s.Cases) {
		return Case{}, false
	}
	return s.Cases[i], true
}
