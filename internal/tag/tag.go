// Package tag models the docblock annotations phpdocgen understands.
//
// Tag is a closed sum type: the only implementations are the pointer types
// declared in this package, and consumers dispatch on them with a type
// switch.
package tag

// Tag is one parsed docblock annotation.
type Tag interface {
	// Name is the tag name as written, without the leading @.
	Name() string
	// Description is the free text following the structured part.
	Description() string
	// TypeString is the normalized type, or "" for tags without one.
	TypeString() string

	sealed()
}

// Param is a @param tag.
type Param struct {
	Type     Type
	Variable string // without the leading $
	Variadic bool
	ByRef    bool
	Desc     string
}

// Return is a @return tag.
type Return struct {
	Type Type
	Desc string
}

// Throws is a @throws tag.
type Throws struct {
	Type Type
	Desc string
}

// See is a @see tag. Reference is either a URL or a structural element
// name such as Foo\Bar, Foo\Bar::baz() or baz().
type See struct {
	Reference string
	IsURL     bool
	Desc      string
}

// Deprecated is a @deprecated tag.
type Deprecated struct {
	Version string
	Desc    string
}

// Method is a @method tag declaring a magic method.
type Method struct {
	Static     bool
	Return     Type
	MethodName string
	Params     []MethodParam
	Desc       string
}

// MethodParam is one parameter of a @method tag.
type MethodParam struct {
	Name       string
	Type       Type
	Default    string
	HasDefault bool
	Variadic   bool
	ByRef      bool
}

// Var is a @var, @property, @property-read or @property-write tag.
type Var struct {
	TagName  string
	Type     Type
	Variable string
	Desc     string
}

// Generic is any tag without a dedicated model.
type Generic struct {
	TagName string
	Desc    string
}

func (*Param) Name() string      { return "param" }
func (*Return) Name() string     { return "return" }
func (*Throws) Name() string     { return "throws" }
func (*See) Name() string        { return "see" }
func (*Deprecated) Name() string { return "deprecated" }
func (*Method) Name() string     { return "method" }
func (v *Var) Name() string      { return v.TagName }
func (g *Generic) Name() string  { return g.TagName }

func (t *Param) Description() string      { return t.Desc }
func (t *Return) Description() string     { return t.Desc }
func (t *Throws) Description() string     { return t.Desc }
func (t *See) Description() string        { return t.Desc }
func (t *Deprecated) Description() string { return t.Desc }
func (t *Method) Description() string     { return t.Desc }
func (t *Var) Description() string        { return t.Desc }
func (t *Generic) Description() string    { return t.Desc }

func (t *Param) TypeString() string    { return t.Type.String() }
func (t *Return) TypeString() string   { return t.Type.String() }
func (t *Throws) TypeString() string   { return t.Type.String() }
func (*See) TypeString() string        { return "" }
func (*Deprecated) TypeString() string { return "" }
func (t *Method) TypeString() string   { return t.Return.String() }
func (t *Var) TypeString() string      { return t.Type.String() }
func (*Generic) TypeString() string    { return "" }

func (*Param) sealed()      {}
func (*Return) sealed()     {}
func (*Throws) sealed()     {}
func (*See) sealed()        {}
func (*Deprecated) sealed() {}
func (*Method) sealed()     {}
func (*Var) sealed()        {}
func (*Generic) sealed()    {}
