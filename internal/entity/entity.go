// Package entity wraps raw declarations in read-only documentation views.
//
// Every kind exposes an explicit accessor set; shared behavior is expressed
// through the small capability interfaces below rather than forwarding to
// the wrapped declaration. Docblocks are normalized lazily, once, on first
// access.
package entity

import (
	"strings"
	"sync"

	"github.com/phobologic/phpdocgen/internal/docblock"
	"github.com/phobologic/phpdocgen/internal/errlog"
	"github.com/phobologic/phpdocgen/internal/model"
	"github.com/phobologic/phpdocgen/internal/tag"
)

// Entity is implemented by every documented element.
type Entity interface {
	Name() string
	Signature() string
	DocBlock() *docblock.DocBlock
	Filename() string
	Line() int
	// String identifies the entity in error reports.
	String() string
}

// HasVisibility is implemented by class members.
type HasVisibility interface {
	Visibility() string
}

// HasDeclaringClass is implemented by class members.
type HasDeclaringClass interface {
	Class() *Class
}

// HasTypeString is implemented by entities with a value type.
type HasTypeString interface {
	TypeString() string
}

// Deprecatable is implemented by entities that can carry @deprecated.
type Deprecatable interface {
	IsDeprecated() bool
	DeprecatedDescription() string
}

// Symbols resolves class-like names. *source.Table implements it.
type Symbols interface {
	Lookup(name string) (model.Declaration, bool)
}

// Env is shared by all entities of one build. It owns the class registry so
// a name always maps to the same *Class.
type Env struct {
	Symbols Symbols
	Log     *errlog.Log

	mu      sync.Mutex
	classes map[string]*Class
}

// NewEnv returns an Env resolving through symbols and reporting to log.
func NewEnv(symbols Symbols, log *errlog.Log) *Env {
	return &Env{Symbols: symbols, Log: log, classes: make(map[string]*Class)}
}

// Wrap returns the Class registered for d's name, creating it from d when
// the name is new. The first declaration wrapped for a name wins.
func (e *Env) Wrap(d model.Declaration) *Class {
	key := strings.ToLower(d.Name)
	e.mu.Lock()
	defer e.mu.Unlock()
	if c, ok := e.classes[key]; ok {
		return c
	}
	c := newClass(d, e)
	e.classes[key] = c
	return c
}

// Class resolves name to a Class, loading it through Symbols if needed.
func (e *Env) Class(name string) (*Class, bool) {
	name = strings.TrimLeft(name, `\`)
	if name == "" {
		return nil, false
	}
	key := strings.ToLower(name)
	e.mu.Lock()
	c, ok := e.classes[key]
	e.mu.Unlock()
	if ok {
		return c, true
	}
	if e.Symbols == nil {
		return nil, false
	}
	d, ok := e.Symbols.Lookup(name)
	if !ok {
		return nil, false
	}
	return e.Wrap(d), true
}

// lazyDoc normalizes a raw comment on first use.
type lazyDoc struct {
	once  sync.Once
	block *docblock.DocBlock
}

func (l *lazyDoc) get(raw string, ctx func() docblock.Context) *docblock.DocBlock {
	l.once.Do(func() {
		l.block = docblock.Parse(raw, ctx())
	})
	return l.block
}

func docContext(env *Env, types tag.Context, owner errlog.Ref) docblock.Context {
	return docblock.Context{Types: types, Owner: owner, Log: env.Log}
}

// summaryBlock is the docblock of a magic member: its tag description.
func summaryBlock(desc string) *docblock.DocBlock {
	d := docblock.Empty()
	d.Summary = desc
	return d
}

func deprecation(d *docblock.DocBlock) (bool, string) {
	if dep := d.Deprecated(); dep != nil {
		return true, dep.Desc
	}
	return false, ""
}
