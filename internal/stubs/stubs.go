// Package stubs provides declarations for PHP's built-in classes and
// interfaces, the last resort when resolving inherited names.
package stubs

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/phpdocgen/internal/model"
)

//go:embed stubs.yaml
var builtin []byte

// Stub is one built-in declaration as written in a stubs file.
type Stub struct {
	Name       string   `yaml:"name"`
	Kind       string   `yaml:"kind"`
	Parent     string   `yaml:"parent,omitempty"`
	Interfaces []string `yaml:"interfaces,omitempty"`
	Abstract   bool     `yaml:"abstract,omitempty"`
	Final      bool     `yaml:"final,omitempty"`
	Doc        string   `yaml:"doc,omitempty"`
}

// Set indexes stubs by lower-cased name.
type Set struct {
	byName map[string]model.Declaration
}

// Load returns the embedded stubs merged with any extra YAML documents.
// Later documents override earlier entries of the same name.
func Load(extra ...[]byte) (*Set, error) {
	s := &Set{byName: make(map[string]model.Declaration)}
	if err := s.add(builtin, "embedded stubs"); err != nil {
		return nil, err
	}
	for i, data := range extra {
		if err := s.add(data, fmt.Sprintf("stubs document %d", i+1)); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Set) add(data []byte, source string) error {
	var list []Stub
	if err := yaml.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("parsing %s: %w", source, err)
	}
	for _, st := range list {
		d, err := st.declaration()
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
		s.byName[strings.ToLower(d.Name)] = d
	}
	return nil
}

func (st Stub) declaration() (model.Declaration, error) {
	kind := model.Kind(strings.ToLower(st.Kind))
	if st.Name == "" || !kind.ClassLike() {
		return model.Declaration{}, fmt.Errorf("invalid stub %q of kind %q", st.Name, st.Kind)
	}
	d := model.Declaration{
		Name:       strings.TrimLeft(st.Name, `\`),
		Kind:       kind,
		Origin:     model.FromBuiltin,
		Abstract:   st.Abstract,
		Final:      st.Final,
		Parent:     strings.TrimLeft(st.Parent, `\`),
		Interfaces: make([]string, 0, len(st.Interfaces)),
	}
	for _, i := range st.Interfaces {
		d.Interfaces = append(d.Interfaces, strings.TrimLeft(i, `\`))
	}
	if st.Doc != "" {
		d.DocComment = "/** " + st.Doc + " */"
	}
	return d, nil
}

// Lookup finds a built-in declaration by name, ignoring case.
func (s *Set) Lookup(name string) (model.Declaration, bool) {
	d, ok := s.byName[strings.ToLower(strings.TrimLeft(name, `\`))]
	return d, ok
}

// Len returns the number of known declarations.
func (s *Set) Len() int {
	return len(s.byName)
}
