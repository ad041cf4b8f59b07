// Package model defines the raw declaration records extracted from PHP source.
package model

import "strings"

// Kind indicates the syntactic kind of a top-level declaration.
type Kind string

const (
	Class     Kind = "class"
	Interface Kind = "interface"
	Trait     Kind = "trait"
	Enum      Kind = "enum"
	Function  Kind = "function"
)

// ClassLike reports whether k declares a class, interface, trait or enum.
func (k Kind) ClassLike() bool {
	return k == Class || k == Interface || k == Trait || k == Enum
}

// Origin records which resolution source produced a declaration.
type Origin string

const (
	FromRoot     Origin = "root"
	FromManifest Origin = "manifest"
	FromBuiltin  Origin = "builtin"
)

// Declaration is one class-like or free-function declaration located in source.
type Declaration struct {
	Name       string // fully qualified, no leading backslash
	Kind       Kind
	File       string
	Line       int
	DocComment string
	Origin     Origin

	// Name-resolution context of the enclosing file.
	Namespace string
	Imports   map[string]string

	Abstract   bool
	Final      bool
	Parent     string
	Interfaces []string
	Traits     []string
	Methods    []Method
	Properties []Property
	Constants  []Constant

	// Free functions only.
	Params     []Param
	ReturnType string
	ByRef      bool
}

// ShortName returns the last namespace segment of the declaration's name.
func (d *Declaration) ShortName() string {
	for i := len(d.Name) - 1; i >= 0; i-- {
		if d.Name[i] == '\\' {
			return d.Name[i+1:]
		}
	}
	return d.Name
}

// Method is a function declared in a class-like body.
type Method struct {
	Name       string
	Visibility string
	Static     bool
	Abstract   bool
	Final      bool
	ByRef      bool
	Params     []Param
	ReturnType string
	DocComment string
	Line       int
}

// Property is a property declared in a class-like body, including promoted
// constructor parameters.
type Property struct {
	Name       string // without the leading $
	Visibility string
	Static     bool
	Readonly   bool
	Type       string
	Default    string
	HasDefault bool
	DocComment string
	Line       int
}

// Constant is a class constant or enum case.
type Constant struct {
	Name       string
	Visibility string
	Final      bool
	Case       bool // enum case
	Value      Value
	DocComment string
	Line       int
}

// Value is a constant initializer. Array literals keep their element values
// in Items.
type Value struct {
	Raw     string
	Scalar  string
	IsArray bool
	Items   []string
}

// Param is one formal parameter of a function or method.
type Param struct {
	Name       string // without the leading $
	Type       string // declared type as written, e.g. "?string"
	Default    string
	HasDefault bool
	Variadic   bool
	ByRef      bool
	Promoted   bool
}

// Nullable reports whether the declared type or the default admits null.
func (p Param) Nullable() bool {
	if len(p.Type) > 0 && p.Type[0] == '?' {
		return true
	}
	return p.HasDefault && strings.EqualFold(p.Default, "null")
}
