package entity

import (
	"strings"
	"sync"

	"github.com/phobologic/phpdocgen/internal/docblock"
	"github.com/phobologic/phpdocgen/internal/model"
	"github.com/phobologic/phpdocgen/internal/tag"
)

// Function documents a free function.
type Function struct {
	decl model.Declaration
	env  *Env
	doc  lazyDoc

	paramsOnce sync.Once
	params     []*Parameter
}

var (
	_ Entity       = (*Function)(nil)
	_ Deprecatable = (*Function)(nil)
)

// NewFunction wraps a function declaration.
func NewFunction(d model.Declaration, env *Env) *Function {
	return &Function{decl: d, env: env}
}

func (f *Function) Name() string      { return f.decl.Name }
func (f *Function) ShortName() string { return f.decl.ShortName() }
func (f *Function) Namespace() string { return f.decl.Namespace }
func (f *Function) Filename() string  { return f.decl.File }
func (f *Function) Line() int         { return f.decl.Line }
func (f *Function) String() string    { return f.decl.Name + "()" }
func (f *Function) ReturnsRef() bool  { return f.decl.ByRef }

func (f *Function) types() tag.Context {
	return tag.Context{Namespace: f.decl.Namespace, Imports: f.decl.Imports}
}

func (f *Function) DocBlock() *docblock.DocBlock {
	return f.doc.get(f.decl.DocComment, func() docblock.Context {
		return docContext(f.env, f.types(), f)
	})
}

func (f *Function) IsDeprecated() bool {
	ok, _ := deprecation(f.DocBlock())
	return ok
}

func (f *Function) DeprecatedDescription() string {
	_, desc := deprecation(f.DocBlock())
	return desc
}

// Parameters binds declared parameters to their @param tags.
func (f *Function) Parameters() []*Parameter {
	f.paramsOnce.Do(func() {
		f.params = declaredParams(f, f.decl.Params, f.DocBlock(), f.types())
	})
	return f.params
}

// Parameter finds a parameter by name (case-sensitive, without $).
func (f *Function) Parameter(name string) *Parameter {
	return findParam(f.Parameters(), name)
}

// ReturnType is the @return type, or the declared one normalized.
func (f *Function) ReturnType() string {
	return returnType(f.DocBlock(), f.decl.ReturnType, f.types())
}

// Throws returns the @throws tags in order.
func (f *Function) Throws() []*tag.Throws {
	return f.DocBlock().Throws()
}

// Signature renders e.g. "function add(integer $a, integer $b = 1): integer".
func (f *Function) Signature() string {
	return callSignature("function ", f.decl.ByRef, f.ShortName(), f.Parameters(), f.ReturnType())
}

// Method documents a declared method or a magic @method.
type Method struct {
	class *Class
	decl  model.Method
	magic *tag.Method
	doc   lazyDoc

	paramsOnce sync.Once
	params     []*Parameter
}

var (
	_ Entity            = (*Method)(nil)
	_ HasVisibility     = (*Method)(nil)
	_ HasDeclaringClass = (*Method)(nil)
	_ Deprecatable      = (*Method)(nil)
)

func (m *Method) Name() string {
	if m.magic != nil {
		return m.magic.MethodName
	}
	return m.decl.Name
}

func (m *Method) Class() *Class    { return m.class }
func (m *Method) Filename() string { return m.class.Filename() }
func (m *Method) String() string   { return m.class.Name() + "::" + m.Name() + "()" }
func (m *Method) IsMagic() bool    { return m.magic != nil }
func (m *Method) IsAbstract() bool { return m.decl.Abstract }
func (m *Method) IsFinal() bool    { return m.decl.Final }
func (m *Method) ReturnsRef() bool { return m.decl.ByRef }
func (m *Method) IsConstructor() bool {
	return strings.EqualFold(m.Name(), "__construct")
}

func (m *Method) IsStatic() bool {
	if m.magic != nil {
		return m.magic.Static
	}
	return m.decl.Static
}

// Visibility defaults to public.
func (m *Method) Visibility() string {
	if m.magic != nil || m.decl.Visibility == "" {
		return "public"
	}
	return m.decl.Visibility
}

// Line is the method's line, or the class line for magic methods.
func (m *Method) Line() int {
	if m.magic != nil {
		return m.class.Line()
	}
	return m.decl.Line
}

func (m *Method) DocBlock() *docblock.DocBlock {
	if m.magic != nil {
		m.doc.once.Do(func() { m.doc.block = summaryBlock(m.magic.Desc) })
		return m.doc.block
	}
	return m.doc.get(m.decl.DocComment, func() docblock.Context {
		return docContext(m.class.env, m.class.Types(), m)
	})
}

func (m *Method) IsDeprecated() bool {
	ok, _ := deprecation(m.DocBlock())
	return ok
}

func (m *Method) DeprecatedDescription() string {
	_, desc := deprecation(m.DocBlock())
	return desc
}

func (m *Method) Parameters() []*Parameter {
	m.paramsOnce.Do(func() {
		if m.magic != nil {
			m.params = magicParams(m, m.magic.Params)
			return
		}
		m.params = declaredParams(m, m.decl.Params, m.DocBlock(), m.class.Types())
	})
	return m.params
}

func (m *Method) Parameter(name string) *Parameter {
	return findParam(m.Parameters(), name)
}

func (m *Method) ReturnType() string {
	if m.magic != nil {
		return m.magic.Return.String()
	}
	return returnType(m.DocBlock(), m.decl.ReturnType, m.class.Types())
}

func (m *Method) Throws() []*tag.Throws {
	return m.DocBlock().Throws()
}

// Signature renders e.g. "public static function make(): static".
func (m *Method) Signature() string {
	var b strings.Builder
	if m.IsAbstract() && !m.class.IsInterface() {
		b.WriteString("abstract ")
	}
	if m.IsFinal() {
		b.WriteString("final ")
	}
	b.WriteString(m.Visibility())
	b.WriteString(" ")
	if m.IsStatic() {
		b.WriteString("static ")
	}
	b.WriteString("function ")
	return callSignature(b.String(), m.ReturnsRef(), m.Name(), m.Parameters(), m.ReturnType())
}

func returnType(doc *docblock.DocBlock, declared string, types tag.Context) string {
	if r := doc.Return(); r != nil && !r.Type.IsEmpty() {
		return r.Type.String()
	}
	return tag.NormalizeType(declared, types).String()
}

func callSignature(prefix string, byRef bool, name string, params []*Parameter, ret string) string {
	var b strings.Builder
	b.WriteString(prefix)
	if byRef {
		b.WriteString("&")
	}
	b.WriteString(name)
	b.WriteString("(")
	for i, p := range params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Signature())
	}
	b.WriteString(")")
	if ret != "" {
		b.WriteString(": ")
		b.WriteString(ret)
	}
	return b.String()
}
