package tag

import (
	"strings"
)

// canonical maps short primitive names to the long names rendered in docs.
var canonical = map[string]string{
	"int":  "integer",
	"bool": "boolean",
}

var keywords = map[string]struct{}{
	"array": {}, "bool": {}, "boolean": {}, "callable": {}, "false": {},
	"float": {}, "double": {}, "int": {}, "integer": {}, "iterable": {},
	"mixed": {}, "never": {}, "null": {}, "object": {}, "resource": {},
	"scalar": {}, "number": {}, "self": {}, "static": {}, "parent": {},
	"string": {}, "true": {}, "void": {}, "$this": {}, "list": {},
	"callable-string": {}, "class-string": {}, "non-empty-string": {},
	"positive-int": {}, "negative-int": {}, "non-empty-array": {},
}

// Context resolves relative class names the way PHP does for the file a
// docblock belongs to.
type Context struct {
	Namespace string
	// Imports maps lower-cased aliases to fully qualified names.
	Imports map[string]string
}

// Resolve returns the fully qualified form of a class name, without a
// leading backslash. Keywords and primitives are returned unchanged.
func (c Context) Resolve(name string) string {
	if _, ok := keywords[strings.ToLower(name)]; ok {
		return name
	}
	return c.ResolveClass(name)
}

// ResolveClass resolves a name written in an extends, implements or trait
// use clause. Only self, static and parent are reserved there; docblock
// pseudo-types such as resource or number are ordinary class names.
func (c Context) ResolveClass(name string) string {
	if name == "" {
		return ""
	}
	if strings.HasPrefix(name, `\`) {
		return strings.TrimLeft(name, `\`)
	}
	switch strings.ToLower(name) {
	case "self", "static", "parent":
		return name
	}
	first, rest, qualified := strings.Cut(name, `\`)
	if fqn, ok := c.Imports[strings.ToLower(first)]; ok {
		if qualified {
			return fqn + `\` + rest
		}
		return fqn
	}
	if c.Namespace == "" {
		return name
	}
	if strings.EqualFold(first, "namespace") && qualified {
		return c.Namespace + `\` + rest
	}
	return c.Namespace + `\` + name
}

// Type is a normalized type expression: a list of alternatives.
type Type struct {
	Alternatives []string
}

// String joins the alternatives with "|".
func (t Type) String() string {
	return strings.Join(t.Alternatives, "|")
}

// IsEmpty reports whether the type has no alternatives.
func (t Type) IsEmpty() bool {
	return len(t.Alternatives) == 0
}

// Has reports whether name is one of the alternatives (case-insensitive).
func (t Type) Has(name string) bool {
	for _, a := range t.Alternatives {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// WithNull returns t with a trailing null alternative unless it already
// allows null. An empty type stays empty.
func (t Type) WithNull() Type {
	if t.IsEmpty() || t.Has("null") || t.Has("mixed") {
		return t
	}
	alts := make([]string, 0, len(t.Alternatives)+1)
	alts = append(alts, t.Alternatives...)
	return Type{Alternatives: append(alts, "null")}
}

// NormalizeType parses a docblock or declared type expression.
// Leading namespace separators are stripped, int and bool become integer and
// boolean, class names are resolved through ctx, and a ?T shorthand becomes
// T|null.
func NormalizeType(raw string, ctx Context) Type {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Type{}
	}
	nullable := false
	if strings.HasPrefix(raw, "?") {
		nullable = true
		raw = strings.TrimSpace(raw[1:])
	}

	var alts []string
	for _, part := range splitTopLevel(raw, '|') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, "(") && strings.HasSuffix(part, ")") {
			alts = append(alts, NormalizeType(part[1:len(part)-1], ctx).Alternatives...)
			continue
		}
		alts = append(alts, normalizeAtom(part, ctx))
	}
	t := Type{Alternatives: alts}
	if nullable {
		t = t.WithNull()
	}
	return t
}

func normalizeAtom(atom string, ctx Context) string {
	suffix := ""
	for strings.HasSuffix(atom, "[]") {
		suffix += "[]"
		atom = strings.TrimSuffix(atom, "[]")
	}
	generic := ""
	if i := strings.IndexAny(atom, "<{"); i > 0 {
		generic = atom[i:]
		atom = atom[:i]
	}
	if long, ok := canonical[strings.ToLower(atom)]; ok {
		return long + generic + suffix
	}
	if _, ok := keywords[strings.ToLower(atom)]; ok {
		return atom + generic + suffix
	}
	return ctx.Resolve(atom) + generic + suffix
}

// splitTopLevel splits s on sep, ignoring separators nested in brackets.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
