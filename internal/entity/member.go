package entity

import (
	"strings"

	"github.com/phobologic/phpdocgen/internal/docblock"
	"github.com/phobologic/phpdocgen/internal/model"
	"github.com/phobologic/phpdocgen/internal/tag"
)

// Property documents a declared, promoted or magic @property property.
type Property struct {
	class *Class
	decl  model.Property
	magic *tag.Var
	doc   lazyDoc
}

var (
	_ Entity            = (*Property)(nil)
	_ HasVisibility     = (*Property)(nil)
	_ HasDeclaringClass = (*Property)(nil)
	_ HasTypeString     = (*Property)(nil)
	_ Deprecatable      = (*Property)(nil)
)

func (p *Property) Name() string {
	if p.magic != nil {
		return p.magic.Variable
	}
	return p.decl.Name
}

func (p *Property) Class() *Class    { return p.class }
func (p *Property) Filename() string { return p.class.Filename() }
func (p *Property) String() string   { return p.class.Name() + "::$" + p.Name() }
func (p *Property) IsMagic() bool    { return p.magic != nil }
func (p *Property) IsStatic() bool   { return p.decl.Static }
func (p *Property) Default() string  { return p.decl.Default }
func (p *Property) HasDefault() bool { return p.decl.HasDefault }

// IsReadonly is true for readonly properties and @property-read tags.
func (p *Property) IsReadonly() bool {
	if p.magic != nil {
		return p.magic.TagName == "property-read"
	}
	return p.decl.Readonly
}

// IsWriteOnly is true for @property-write tags.
func (p *Property) IsWriteOnly() bool {
	return p.magic != nil && p.magic.TagName == "property-write"
}

func (p *Property) Visibility() string {
	if p.magic != nil || p.decl.Visibility == "" {
		return "public"
	}
	return p.decl.Visibility
}

func (p *Property) Line() int {
	if p.magic != nil {
		return p.class.Line()
	}
	return p.decl.Line
}

func (p *Property) DocBlock() *docblock.DocBlock {
	if p.magic != nil {
		p.doc.once.Do(func() { p.doc.block = summaryBlock(p.magic.Desc) })
		return p.doc.block
	}
	return p.doc.get(p.decl.DocComment, func() docblock.Context {
		return docContext(p.class.env, p.class.Types(), p)
	})
}

func (p *Property) IsDeprecated() bool {
	ok, _ := deprecation(p.DocBlock())
	return ok
}

func (p *Property) DeprecatedDescription() string {
	_, desc := deprecation(p.DocBlock())
	return desc
}

// TypeString is the @var type when present, otherwise the declared type.
func (p *Property) TypeString() string {
	if p.magic != nil {
		return p.magic.Type.String()
	}
	if v := p.DocBlock().Var(); v != nil && !v.Type.IsEmpty() {
		return v.Type.String()
	}
	return tag.NormalizeType(p.decl.Type, p.class.Types()).String()
}

// Signature renders e.g. "private static string|null $brand = null".
func (p *Property) Signature() string {
	parts := []string{p.Visibility()}
	if p.IsStatic() {
		parts = append(parts, "static")
	}
	if p.decl.Readonly {
		parts = append(parts, "readonly")
	}
	if t := p.TypeString(); t != "" {
		parts = append(parts, t)
	}
	parts = append(parts, "$"+p.Name())
	if p.HasDefault() {
		parts = append(parts, "=", p.Default())
	}
	return strings.Join(parts, " ")
}

// Constant documents a class constant or an enum case.
type Constant struct {
	class *Class
	decl  model.Constant
	doc   lazyDoc
}

var (
	_ Entity            = (*Constant)(nil)
	_ HasVisibility     = (*Constant)(nil)
	_ HasDeclaringClass = (*Constant)(nil)
	_ HasTypeString     = (*Constant)(nil)
	_ Deprecatable      = (*Constant)(nil)
)

func (k *Constant) Name() string       { return k.decl.Name }
func (k *Constant) Class() *Class      { return k.class }
func (k *Constant) Filename() string   { return k.class.Filename() }
func (k *Constant) Line() int          { return k.decl.Line }
func (k *Constant) String() string     { return k.class.Name() + "::" + k.decl.Name }
func (k *Constant) IsFinal() bool      { return k.decl.Final }
func (k *Constant) IsCase() bool       { return k.decl.Case }
func (k *Constant) Value() model.Value { return k.decl.Value }

// Visibility defaults to public.
func (k *Constant) Visibility() string {
	if k.decl.Visibility == "" {
		return "public"
	}
	return k.decl.Visibility
}

// ValueAsString renders a scalar without quotes and an array as its
// element values joined with "|".
func (k *Constant) ValueAsString() string {
	if k.decl.Value.IsArray {
		return strings.Join(k.decl.Value.Items, "|")
	}
	return k.decl.Value.Scalar
}

func (k *Constant) DocBlock() *docblock.DocBlock {
	return k.doc.get(k.decl.DocComment, func() docblock.Context {
		return docContext(k.class.env, k.class.Types(), k)
	})
}

func (k *Constant) IsDeprecated() bool {
	ok, _ := deprecation(k.DocBlock())
	return ok
}

func (k *Constant) DeprecatedDescription() string {
	_, desc := deprecation(k.DocBlock())
	return desc
}

// TypeString is the @var type, or "" when undocumented.
func (k *Constant) TypeString() string {
	if v := k.DocBlock().Var(); v != nil {
		return v.Type.String()
	}
	return ""
}

// Signature renders e.g. "protected const LEGS = 4".
func (k *Constant) Signature() string {
	if k.decl.Case {
		if k.decl.Value.Raw == "" {
			return "case " + k.decl.Name
		}
		return "case " + k.decl.Name + " = " + k.decl.Value.Raw
	}
	prefix := k.Visibility() + " const "
	if k.decl.Final {
		prefix = "final " + prefix
	}
	return prefix + k.decl.Name + " = " + k.decl.Value.Raw
}
