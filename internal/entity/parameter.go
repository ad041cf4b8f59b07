package entity

import (
	"strings"

	"github.com/phobologic/phpdocgen/internal/docblock"
	"github.com/phobologic/phpdocgen/internal/model"
	"github.com/phobologic/phpdocgen/internal/tag"
)

// Parameter documents one parameter of a function or method.
type Parameter struct {
	owner    Entity
	position int

	name       string
	declared   tag.Type
	nullable   bool
	def        string
	hasDefault bool
	variadic   bool
	byRef      bool
	promoted   bool
	tag        *tag.Param
}

var (
	_ Entity        = (*Parameter)(nil)
	_ HasTypeString = (*Parameter)(nil)
)

func declaredParams(owner Entity, decls []model.Param, doc *docblock.DocBlock, types tag.Context) []*Parameter {
	out := make([]*Parameter, 0, len(decls))
	for i, d := range decls {
		out = append(out, &Parameter{
			owner:      owner,
			position:   i,
			name:       d.Name,
			declared:   tag.NormalizeType(d.Type, types),
			nullable:   d.Nullable(),
			def:        d.Default,
			hasDefault: d.HasDefault,
			variadic:   d.Variadic,
			byRef:      d.ByRef,
			promoted:   d.Promoted,
			tag:        doc.Param(d.Name),
		})
	}
	return out
}

func magicParams(owner Entity, params []tag.MethodParam) []*Parameter {
	out := make([]*Parameter, 0, len(params))
	for i, p := range params {
		out = append(out, &Parameter{
			owner:      owner,
			position:   i,
			name:       p.Name,
			declared:   p.Type,
			nullable:   p.HasDefault && strings.EqualFold(p.Default, "null"),
			def:        p.Default,
			hasDefault: p.HasDefault,
			variadic:   p.Variadic,
			byRef:      p.ByRef,
		})
	}
	return out
}

func findParam(params []*Parameter, name string) *Parameter {
	name = strings.TrimPrefix(name, "$")
	for _, p := range params {
		if p.name == name {
			return p
		}
	}
	return nil
}

// Name is the parameter name without $.
func (p *Parameter) Name() string     { return p.name }
func (p *Parameter) Position() int    { return p.position }
func (p *Parameter) Default() string  { return p.def }
func (p *Parameter) HasDefault() bool { return p.hasDefault }
func (p *Parameter) IsVariadic() bool { return p.variadic }
func (p *Parameter) IsByRef() bool    { return p.byRef }
func (p *Parameter) IsPromoted() bool { return p.promoted }
func (p *Parameter) Owner() Entity    { return p.owner }
func (p *Parameter) Filename() string { return p.owner.Filename() }
func (p *Parameter) Line() int        { return p.owner.Line() }
func (p *Parameter) String() string   { return p.owner.String() + " $" + p.name }

// Tag returns the bound @param tag, or nil.
func (p *Parameter) Tag() *tag.Param { return p.tag }

// Description is the @param description.
func (p *Parameter) Description() string {
	if p.tag == nil {
		return ""
	}
	return p.tag.Desc
}

// DocBlock holds the @param description as its summary.
func (p *Parameter) DocBlock() *docblock.DocBlock {
	return summaryBlock(p.Description())
}

// TypeString is the @param type when given, otherwise the declared type.
// null is appended when the parameter is nullable or defaults to null.
func (p *Parameter) TypeString() string {
	t := p.declared
	if p.tag != nil && !p.tag.Type.IsEmpty() {
		t = p.tag.Type
	}
	if p.nullable {
		t = t.WithNull()
	}
	return t.String()
}

// Signature renders e.g. "string|null $name = null".
func (p *Parameter) Signature() string {
	var b strings.Builder
	if t := p.TypeString(); t != "" {
		b.WriteString(t)
		b.WriteString(" ")
	}
	if p.byRef {
		b.WriteString("&")
	}
	if p.variadic {
		b.WriteString("...")
	}
	b.WriteString("$")
	b.WriteString(p.name)
	if p.hasDefault {
		b.WriteString(" = ")
		b.WriteString(p.def)
	}
	return b.String()
}
