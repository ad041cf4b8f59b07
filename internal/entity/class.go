package entity

import (
	"strings"
	"sync"

	"github.com/phobologic/phpdocgen/internal/docblock"
	"github.com/phobologic/phpdocgen/internal/model"
	"github.com/phobologic/phpdocgen/internal/tag"
)

// Class documents a class, interface, trait or enum.
type Class struct {
	decl model.Declaration
	env  *Env
	doc  lazyDoc

	membersOnce sync.Once
	methods     []*Method
	properties  []*Property
	constants   []*Constant
}

var (
	_ Entity       = (*Class)(nil)
	_ Deprecatable = (*Class)(nil)
)

func newClass(d model.Declaration, env *Env) *Class {
	return &Class{decl: d, env: env}
}

func (c *Class) Name() string         { return c.decl.Name }
func (c *Class) ShortName() string    { return c.decl.ShortName() }
func (c *Class) Namespace() string    { return c.decl.Namespace }
func (c *Class) Kind() model.Kind     { return c.decl.Kind }
func (c *Class) IsInterface() bool    { return c.decl.Kind == model.Interface }
func (c *Class) IsTrait() bool        { return c.decl.Kind == model.Trait }
func (c *Class) IsEnum() bool         { return c.decl.Kind == model.Enum }
func (c *Class) IsAbstract() bool     { return c.decl.Abstract }
func (c *Class) IsFinal() bool        { return c.decl.Final }
func (c *Class) Origin() model.Origin { return c.decl.Origin }
func (c *Class) Filename() string     { return c.decl.File }
func (c *Class) Line() int            { return c.decl.Line }
func (c *Class) String() string       { return c.decl.Name }
func (c *Class) ParentName() string   { return c.decl.Parent }

// InterfaceNames returns the immediately implemented (or, for interfaces,
// extended) interface names.
func (c *Class) InterfaceNames() []string { return c.decl.Interfaces }

// TraitNames returns the names of the traits the class uses.
func (c *Class) TraitNames() []string { return c.decl.Traits }

// Types is the name resolution context of the declaring file.
func (c *Class) Types() tag.Context {
	return tag.Context{Namespace: c.decl.Namespace, Imports: c.decl.Imports}
}

// DocBlock returns the normalized class docblock, never nil.
func (c *Class) DocBlock() *docblock.DocBlock {
	return c.doc.get(c.decl.DocComment, func() docblock.Context {
		return docContext(c.env, c.Types(), c)
	})
}

// StrictDocBlock parses the docblock without degrading: a comment that is
// not a documentation block is an error.
func (c *Class) StrictDocBlock() (*docblock.DocBlock, error) {
	return docblock.ParseStrict(c.decl.DocComment, docContext(c.env, c.Types(), c))
}

func (c *Class) IsDeprecated() bool {
	ok, _ := deprecation(c.DocBlock())
	return ok
}

func (c *Class) DeprecatedDescription() string {
	_, desc := deprecation(c.DocBlock())
	return desc
}

// Parent returns the parent class, or nil when there is none or it cannot
// be resolved.
func (c *Class) Parent() *Class {
	if c.decl.Parent == "" {
		return nil
	}
	p, _ := c.env.Class(c.decl.Parent)
	return p
}

// Interfaces returns the immediate interfaces that resolve.
func (c *Class) Interfaces() []*Class {
	return c.resolveAll(c.decl.Interfaces)
}

// Traits returns the used traits that resolve.
func (c *Class) Traits() []*Class {
	return c.resolveAll(c.decl.Traits)
}

func (c *Class) resolveAll(names []string) []*Class {
	out := make([]*Class, 0, len(names))
	for _, n := range names {
		if r, ok := c.env.Class(n); ok {
			out = append(out, r)
		}
	}
	return out
}

// AllInterfaces returns the names of every interface the class implements,
// directly, through interface inheritance or through its ancestors.
func (c *Class) AllInterfaces() []string {
	var out []string
	seen := make(map[string]struct{})
	visited := make(map[*Class]struct{})
	var walk func(k *Class)
	walk = func(k *Class) {
		if _, ok := visited[k]; ok {
			return
		}
		visited[k] = struct{}{}
		for _, name := range k.decl.Interfaces {
			key := strings.ToLower(name)
			if _, ok := seen[key]; !ok {
				seen[key] = struct{}{}
				out = append(out, name)
			}
			if i, ok := k.env.Class(name); ok {
				walk(i)
			}
		}
		if p := k.Parent(); p != nil {
			walk(p)
		}
	}
	walk(c)
	return out
}

// Ancestors returns the parent chain, nearest first.
func (c *Class) Ancestors() []*Class {
	var out []*Class
	visited := map[*Class]struct{}{c: {}}
	for p := c.Parent(); p != nil; p = p.Parent() {
		if _, loop := visited[p]; loop {
			break
		}
		visited[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

func (c *Class) loadMembers() {
	c.membersOnce.Do(func() {
		declared := make(map[string]struct{})
		for i := range c.decl.Methods {
			m := &Method{class: c, decl: c.decl.Methods[i]}
			c.methods = append(c.methods, m)
			declared[strings.ToLower(m.Name())] = struct{}{}
		}
		doc := c.DocBlock()
		for _, mt := range doc.Methods() {
			if _, dup := declared[strings.ToLower(mt.MethodName)]; dup {
				continue
			}
			declared[strings.ToLower(mt.MethodName)] = struct{}{}
			c.methods = append(c.methods, &Method{class: c, magic: mt})
		}

		props := make(map[string]struct{})
		for i := range c.decl.Properties {
			p := &Property{class: c, decl: c.decl.Properties[i]}
			c.properties = append(c.properties, p)
			props[p.Name()] = struct{}{}
		}
		for _, name := range []string{"property", "property-read", "property-write"} {
			for _, t := range doc.Tags(name) {
				v, ok := t.(*tag.Var)
				if !ok || v.Variable == "" {
					continue
				}
				if _, dup := props[v.Variable]; dup {
					continue
				}
				props[v.Variable] = struct{}{}
				c.properties = append(c.properties, &Property{class: c, magic: v})
			}
		}

		for i := range c.decl.Constants {
			c.constants = append(c.constants, &Constant{class: c, decl: c.decl.Constants[i]})
		}
	})
}

// Methods returns the declared methods followed by magic @method ones.
func (c *Class) Methods() []*Method {
	c.loadMembers()
	return c.methods
}

// Method finds a method by name, ignoring case.
func (c *Class) Method(name string) *Method {
	for _, m := range c.Methods() {
		if strings.EqualFold(m.Name(), name) {
			return m
		}
	}
	return nil
}

// AllMethods returns the class's methods followed by those it inherits from
// traits and ancestors that it does not override.
func (c *Class) AllMethods() []*Method {
	var out []*Method
	seen := make(map[string]struct{})
	visited := make(map[*Class]struct{})
	var walk func(k *Class)
	walk = func(k *Class) {
		if _, ok := visited[k]; ok {
			return
		}
		visited[k] = struct{}{}
		for _, m := range k.Methods() {
			key := strings.ToLower(m.Name())
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, m)
		}
		for _, t := range k.Traits() {
			walk(t)
		}
		if p := k.Parent(); p != nil {
			walk(p)
		}
	}
	walk(c)
	return out
}

// Properties returns declared and promoted properties followed by magic
// @property ones.
func (c *Class) Properties() []*Property {
	c.loadMembers()
	return c.properties
}

// Property finds a property by name (case-sensitive, without $).
func (c *Class) Property(name string) *Property {
	name = strings.TrimPrefix(name, "$")
	for _, p := range c.Properties() {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// Constants returns class constants and enum cases.
func (c *Class) Constants() []*Constant {
	c.loadMembers()
	return c.constants
}

// Constant finds a constant by name (case-sensitive).
func (c *Class) Constant(name string) *Constant {
	for _, k := range c.Constants() {
		if k.Name() == name {
			return k
		}
	}
	return nil
}

// Signature renders the declaration header, e.g.
// "abstract class Car extends Vehicle implements Countable".
func (c *Class) Signature() string {
	var b strings.Builder
	if c.decl.Abstract && c.decl.Kind == model.Class {
		b.WriteString("abstract ")
	}
	if c.decl.Final {
		b.WriteString("final ")
	}
	b.WriteString(string(c.decl.Kind))
	b.WriteString(" ")
	b.WriteString(c.ShortName())
	if c.decl.Parent != "" {
		b.WriteString(" extends ")
		b.WriteString(c.decl.Parent)
	}
	if len(c.decl.Interfaces) > 0 {
		if c.IsInterface() {
			b.WriteString(" extends ")
		} else {
			b.WriteString(" implements ")
		}
		b.WriteString(strings.Join(c.decl.Interfaces, ", "))
	}
	return b.String()
}
