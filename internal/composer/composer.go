// Package composer reads composer.json autoload rules so class names outside
// the scanned roots can be mapped to the files that declare them.
package composer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileName is the manifest file looked up at the root of a project.
const FileName = "composer.json"

// vendorGlob locates installed package manifests below a root.
const vendorGlob = "vendor/*/*/" + FileName

// Manifest is the merged autoload configuration of a project and of every
// package installed under its vendor directory.
type Manifest struct {
	Path     string
	psr4     []rule
	psr0     []rule
	classmap []string
}

// rule maps a namespace prefix to base directories.
type rule struct {
	prefix string
	dirs   []string
}

type document struct {
	Autoload autoload `json:"autoload"`
}

type autoload struct {
	PSR4     map[string]paths `json:"psr-4"`
	PSR0     map[string]paths `json:"psr-0"`
	Classmap []string         `json:"classmap"`
}

// paths accepts both "dir" and ["dir", "other"].
type paths []string

func (p *paths) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*p = paths{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*p = many
	return nil
}

// Load reads root/composer.json and the manifests of installed vendor
// packages. A missing project manifest is reported with an error matching
// fs.ErrNotExist.
func Load(root string) (*Manifest, error) {
	path := filepath.Join(root, FileName)
	m := &Manifest{Path: path}
	if err := m.merge(root, path); err != nil {
		return nil, err
	}

	vendored, err := doublestar.Glob(os.DirFS(root), vendorGlob)
	if err != nil {
		return nil, fmt.Errorf("globbing vendor manifests: %w", err)
	}
	sort.Strings(vendored)
	for _, rel := range vendored {
		pkgRoot := filepath.Join(root, filepath.Dir(filepath.FromSlash(rel)))
		if err := m.merge(pkgRoot, filepath.Join(root, filepath.FromSlash(rel))); err != nil {
			return nil, err
		}
	}

	// Longest prefix first so the most specific rule is tried first.
	for _, rules := range [][]rule{m.psr4, m.psr0} {
		sort.SliceStable(rules, func(i, j int) bool {
			return len(rules[i].prefix) > len(rules[j].prefix)
		})
	}
	return m, nil
}

func (m *Manifest) merge(base, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	add := func(dst *[]rule, src map[string]paths) {
		prefixes := make([]string, 0, len(src))
		for p := range src {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)
		for _, p := range prefixes {
			r := rule{prefix: strings.TrimLeft(p, `\`)}
			for _, d := range src[p] {
				r.dirs = append(r.dirs, filepath.Join(base, filepath.FromSlash(d)))
			}
			*dst = append(*dst, r)
		}
	}
	add(&m.psr4, doc.Autoload.PSR4)
	add(&m.psr0, doc.Autoload.PSR0)
	for _, c := range doc.Autoload.Classmap {
		m.classmap = append(m.classmap, filepath.Join(base, filepath.FromSlash(c)))
	}
	return nil
}

// Candidates returns the files that may declare fqn under the PSR-4 and
// PSR-0 rules, most specific first. Files are not checked for existence.
func (m *Manifest) Candidates(fqn string) []string {
	fqn = strings.TrimLeft(fqn, `\`)
	var out []string
	for _, r := range m.psr4 {
		if r.prefix != "" && !strings.HasPrefix(strings.ToLower(fqn), strings.ToLower(r.prefix)) {
			continue
		}
		rel := strings.ReplaceAll(fqn[len(r.prefix):], `\`, "/") + ".php"
		for _, d := range r.dirs {
			out = append(out, filepath.Join(d, filepath.FromSlash(rel)))
		}
	}
	for _, r := range m.psr0 {
		if r.prefix != "" && !strings.HasPrefix(strings.ToLower(fqn), strings.ToLower(r.prefix)) {
			continue
		}
		for _, d := range r.dirs {
			out = append(out, filepath.Join(d, filepath.FromSlash(psr0Path(fqn))))
		}
	}
	return out
}

// psr0Path maps Ns\Sub_Class to Ns/Sub/Class.php: underscores in the class
// part are directory separators.
func psr0Path(fqn string) string {
	ns, class := "", fqn
	if i := strings.LastIndexByte(fqn, '\\'); i >= 0 {
		ns, class = fqn[:i+1], fqn[i+1:]
	}
	return strings.ReplaceAll(ns, `\`, "/") + strings.ReplaceAll(class, "_", "/") + ".php"
}

// ClassmapFiles lists the PHP files named by classmap entries; directories
// are searched recursively. Missing entries are skipped.
func (m *Manifest) ClassmapFiles() ([]string, error) {
	var out []string
	for _, entry := range m.classmap {
		info, err := os.Stat(entry)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			out = append(out, entry)
			continue
		}
		matches, err := doublestar.Glob(os.DirFS(entry), "**/*.{php,inc}")
		if err != nil {
			return nil, fmt.Errorf("globbing classmap %s: %w", entry, err)
		}
		sort.Strings(matches)
		for _, rel := range matches {
			out = append(out, filepath.Join(entry, filepath.FromSlash(rel)))
		}
	}
	return out, nil
}
