// Package catalog assembles the documentation model of one build: the
// deduplicated, sorted class-like entities, the free functions in discovery
// order, the inheritance hierarchy and the error log.
package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/phobologic/phpdocgen/internal/entity"
	"github.com/phobologic/phpdocgen/internal/errlog"
	"github.com/phobologic/phpdocgen/internal/graph"
	"github.com/phobologic/phpdocgen/internal/model"
)

// ErrNotFound is returned by Strict for names no source declares.
var ErrNotFound = errors.New("entity not found")

// Table is the symbol table a catalog is built from. *source.Table
// implements it.
type Table interface {
	Declarations() []model.Declaration
	Lookup(name string) (model.Declaration, bool)
}

// Catalog is the immutable result of a build.
type Catalog struct {
	env       *entity.Env
	classes   []*entity.Class
	functions []*entity.Function
	hierarchy *graph.Hierarchy

	mu     sync.Mutex
	frozen []errlog.Record
	warmed bool
}

// Build wraps the table's root declarations. Docblocks are not parsed
// here; they normalize on first access or in Warm.
func Build(table Table, log *errlog.Log) *Catalog {
	env := entity.NewEnv(table, log)
	decls := table.Declarations()
	c := &Catalog{env: env, hierarchy: graph.Build(decls)}

	seenClass := make(map[string]struct{})
	seenFunc := make(map[string]struct{})
	for _, d := range decls {
		key := strings.ToLower(d.Name)
		if d.Kind.ClassLike() {
			if _, dup := seenClass[key]; dup {
				continue
			}
			seenClass[key] = struct{}{}
			c.classes = append(c.classes, env.Wrap(d))
			continue
		}
		if _, dup := seenFunc[key]; dup {
			continue
		}
		seenFunc[key] = struct{}{}
		c.functions = append(c.functions, entity.NewFunction(d, env))
	}

	sort.SliceStable(c.classes, func(i, j int) bool {
		return c.classes[i].Name() < c.classes[j].Name()
	})
	return c
}

// Classes returns a copy of the class-like entities sorted by name,
// byte-wise.
func (c *Catalog) Classes() []*entity.Class { return slices.Clone(c.classes) }

// Functions returns a copy of the free functions in discovery order.
func (c *Catalog) Functions() []*entity.Function { return slices.Clone(c.functions) }

// Hierarchy returns the inheritance hierarchy of the root declarations.
func (c *Catalog) Hierarchy() *graph.Hierarchy { return c.hierarchy }

// Log returns the error log entities report into.
func (c *Catalog) Log() *errlog.Log { return c.env.Log }

// Errors returns the errors recorded for this catalog. After Warm it is the
// snapshot taken there, which survives the log being reset by a later build.
// Before Warm it reads the live log, which is only valid until the next
// build reuses it.
func (c *Catalog) Errors() []errlog.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.warmed {
		return slices.Clone(c.frozen)
	}
	if c.env.Log == nil {
		return nil
	}
	return c.env.Log.All()
}

// Class resolves a class-like name, including inherited manifest and
// built-in declarations.
func (c *Catalog) Class(name string) (*entity.Class, bool) {
	return c.env.Class(name)
}

// Function finds a free function by name, ignoring case.
func (c *Catalog) Function(name string) (*entity.Function, bool) {
	name = strings.TrimLeft(name, `\`)
	for _, f := range c.functions {
		if strings.EqualFold(f.Name(), name) {
			return f, true
		}
	}
	return nil, false
}

// Strict resolves one class and parses its docblock without degrading.
// Unlike catalog traversal, a docblock that cannot be parsed at all is an
// error.
func (c *Catalog) Strict(name string) (*entity.Class, error) {
	cl, ok := c.env.Class(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	if _, err := cl.StrictDocBlock(); err != nil {
		return nil, fmt.Errorf("%s: %w", cl.Name(), err)
	}
	return cl, nil
}

// Subclasses returns the classes extending name, directly or not.
func (c *Catalog) Subclasses(name string) []*entity.Class {
	return c.resolve(c.hierarchy.Subclasses(name))
}

// Implementors returns the class-like entities implementing name.
func (c *Catalog) Implementors(name string) []*entity.Class {
	return c.resolve(c.hierarchy.Implementors(name))
}

func (c *Catalog) resolve(names []string) []*entity.Class {
	out := make([]*entity.Class, 0, len(names))
	for _, n := range names {
		if cl, ok := c.env.Class(n); ok {
			out = append(out, cl)
		}
	}
	return out
}

// Warm normalizes every docblock in the catalog so the error log is
// complete, then snapshots it for Errors.
func (c *Catalog) Warm() {
	for _, cl := range c.classes {
		cl.DocBlock()
		for _, m := range cl.Methods() {
			m.DocBlock()
			m.Parameters()
		}
		for _, p := range cl.Properties() {
			p.DocBlock()
		}
		for _, k := range cl.Constants() {
			k.DocBlock()
		}
	}
	for _, f := range c.functions {
		f.DocBlock()
		f.Parameters()
	}

	var records []errlog.Record
	if c.env.Log != nil {
		records = c.env.Log.All()
	}
	c.mu.Lock()
	c.frozen = records
	c.warmed = true
	c.mu.Unlock()
}

// View is a selection of the catalog for the text index.
type View struct {
	Classes   []*entity.Class
	Functions []*entity.Function
	Edges     []graph.Edge
	// Ranks maps lower-cased class names to their hierarchy rank.
	Ranks map[string]float64
}

// View returns the whole catalog.
func (c *Catalog) View() View {
	return View{
		Classes:   c.Classes(),
		Functions: c.Functions(),
		Edges:     c.hierarchy.Edges(),
		Ranks:     c.hierarchy.Rank(),
	}
}
