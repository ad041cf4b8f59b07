package tag

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SyntaxError reports a tag body that its kind parser rejected.
// The message wording is low level; docblock rewrites it for display.
type SyntaxError struct {
	Tag      string
	Fragment string
	Empty    bool
}

func (e *SyntaxError) Error() string {
	if e.Empty {
		return `expected a non-empty value, got ""`
	}
	return fmt.Sprintf(`the tag "%s" does not seem to be wellformed, please check it for errors`,
		strings.TrimSpace("@"+e.Tag+" "+e.Fragment))
}

var (
	urlRe      = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.\-]*://\S+$`)
	fqsenRe    = regexp.MustCompile(`^\\?(?:[A-Za-z_\x80-\x{10FFFF}][\w\x80-\x{10FFFF}]*\\)*[A-Za-z_\x80-\x{10FFFF}][\w\x80-\x{10FFFF}]*(?:\(\))?(?:::\$?[A-Za-z_\x80-\x{10FFFF}][\w\x80-\x{10FFFF}]*(?:\(\))?)?$`)
	classRe    = regexp.MustCompile(`^\\?(?:[A-Za-z_\x80-\x{10FFFF}][\w\x80-\x{10FFFF}]*\\)*[A-Za-z_\x80-\x{10FFFF}][\w\x80-\x{10FFFF}]*$`)
	versionRe  = regexp.MustCompile(`^v?\d+(?:\.\d+)*(?:[-+][\w.]+)?$`)
	methodRe   = regexp.MustCompile(`(?s)^([A-Za-z_\x80-\x{10FFFF}][\w\x80-\x{10FFFF}]*)\s*\(([^)]*)\)\s*(.*)$`)
	variableRe = regexp.MustCompile(`^&?(?:\.\.\.)?\$[A-Za-z_\x80-\x{10FFFF}][\w\x80-\x{10FFFF}]*$`)
)

// Parse dispatches a tag body to the parser for its kind. name is the tag
// name without @, body the text after it with continuation lines joined.
func Parse(name, body string, ctx Context) (Tag, error) {
	body = strings.TrimSpace(body)
	malformed := func() error {
		return &SyntaxError{Tag: name, Fragment: collapse(body)}
	}
	if err := checkInline(body); err != nil {
		return nil, malformed()
	}

	switch strings.ToLower(name) {
	case "param":
		return parseParam(body, ctx, malformed)
	case "return", "returns":
		if body == "" {
			return nil, &SyntaxError{Tag: name, Empty: true}
		}
		typ, desc := nextToken(body)
		if strings.HasPrefix(typ, "$") && typ != "$this" {
			return nil, malformed()
		}
		return &Return{Type: NormalizeType(typ, ctx), Desc: desc}, nil
	case "throws", "throw":
		if body == "" {
			return nil, &SyntaxError{Tag: name, Empty: true}
		}
		typ, desc := nextToken(body)
		for _, alt := range splitTopLevel(typ, '|') {
			if !classRe.MatchString(alt) {
				return nil, malformed()
			}
		}
		return &Throws{Type: NormalizeType(typ, ctx), Desc: desc}, nil
	case "see":
		return parseSee(name, body, malformed)
	case "deprecated":
		return parseDeprecated(body), nil
	case "method":
		return parseMethod(name, body, ctx, malformed)
	case "var", "property", "property-read", "property-write":
		return parseVar(name, body, ctx)
	default:
		return &Generic{TagName: name, Desc: body}, nil
	}
}

func parseParam(body string, ctx Context, malformed func() error) (Tag, error) {
	if body == "" {
		return nil, &SyntaxError{Tag: "param", Empty: true}
	}
	first, rest := nextToken(body)
	p := &Param{}
	variable := first
	if !strings.Contains(first, "$") {
		p.Type = NormalizeType(first, ctx)
		variable, rest = nextToken(rest)
	}
	if !variableRe.MatchString(variable) {
		return nil, malformed()
	}
	if strings.HasPrefix(variable, "&") {
		p.ByRef = true
		variable = variable[1:]
	}
	if strings.HasPrefix(variable, "...") {
		p.Variadic = true
		variable = variable[3:]
	}
	p.Variable = strings.TrimPrefix(variable, "$")
	p.Desc = rest
	return p, nil
}

func parseSee(name, body string, malformed func() error) (Tag, error) {
	if body == "" {
		return nil, &SyntaxError{Tag: name, Empty: true}
	}
	ref, desc := nextToken(body)
	if urlRe.MatchString(ref) {
		return &See{Reference: ref, IsURL: true, Desc: desc}, nil
	}
	if !fqsenRe.MatchString(ref) {
		return nil, malformed()
	}
	return &See{Reference: strings.TrimPrefix(ref, `\`), Desc: desc}, nil
}

func parseDeprecated(body string) Tag {
	d := &Deprecated{}
	if first, rest := nextToken(body); versionRe.MatchString(first) {
		d.Version = first
		body = rest
	}
	d.Desc = upperFirst(body)
	return d
}

func parseMethod(name, body string, ctx Context, malformed func() error) (Tag, error) {
	if body == "" {
		return nil, &SyntaxError{Tag: name, Empty: true}
	}
	out := &Method{}
	var typ string
	m := methodRe.FindStringSubmatch(body)
	if m == nil {
		tok, rest := nextToken(body)
		if strings.EqualFold(tok, "static") {
			out.Static = true
			if m = methodRe.FindStringSubmatch(rest); m != nil {
				// "@method static foo()" declares a non-static method returning static.
				out.Static = false
				typ = "static"
			} else {
				tok, rest = nextToken(rest)
			}
		}
		if m == nil {
			typ = tok
			m = methodRe.FindStringSubmatch(rest)
		}
	}
	if m == nil {
		return nil, malformed()
	}
	out.MethodName = m[1]
	out.Desc = strings.TrimSpace(m[3])
	if typ != "" {
		out.Return = NormalizeType(typ, ctx)
	}

	params := strings.TrimSpace(m[2])
	if params == "" {
		return out, nil
	}
	for _, raw := range splitTopLevel(params, ',') {
		p, ok := parseMethodParam(strings.TrimSpace(raw), ctx)
		if !ok {
			return nil, malformed()
		}
		out.Params = append(out.Params, p)
	}
	return out, nil
}

func parseMethodParam(raw string, ctx Context) (MethodParam, bool) {
	var p MethodParam
	decl, def, hasDefault := strings.Cut(raw, "=")
	if hasDefault {
		p.Default = strings.TrimSpace(def)
		p.HasDefault = true
	}
	fields := strings.Fields(decl)
	if len(fields) == 0 || len(fields) > 2 {
		return p, false
	}
	variable := fields[len(fields)-1]
	if !variableRe.MatchString(variable) {
		return p, false
	}
	if len(fields) == 2 {
		p.Type = NormalizeType(fields[0], ctx)
	}
	if strings.HasPrefix(variable, "&") {
		p.ByRef = true
		variable = variable[1:]
	}
	if strings.HasPrefix(variable, "...") {
		p.Variadic = true
		variable = variable[3:]
	}
	p.Name = strings.TrimPrefix(variable, "$")
	return p, true
}

func parseVar(name, body string, ctx Context) (Tag, error) {
	if body == "" {
		return nil, &SyntaxError{Tag: name, Empty: true}
	}
	v := &Var{TagName: strings.ToLower(name)}
	first, rest := nextToken(body)
	if strings.HasPrefix(first, "$") {
		v.Variable = strings.TrimPrefix(first, "$")
		v.Desc = rest
		return v, nil
	}
	v.Type = NormalizeType(first, ctx)
	if next, after := nextToken(rest); strings.HasPrefix(next, "$") {
		v.Variable = strings.TrimPrefix(next, "$")
		rest = after
	}
	v.Desc = rest
	return v, nil
}

// nextToken splits off the first whitespace-delimited token of s, keeping
// bracketed type expressions such as array<int, string> in one piece.
func nextToken(s string) (string, string) {
	s = strings.TrimSpace(s)
	depth := 0
	for i, r := range s {
		switch r {
		case '<', '(', '{', '[':
			depth++
		case '>', ')', '}', ']':
			if depth > 0 {
				depth--
			}
		default:
			if depth == 0 && unicode.IsSpace(r) {
				return s[:i], strings.TrimSpace(s[i:])
			}
		}
	}
	return s, ""
}

// checkInline verifies that every inline {@...} tag in s is closed.
func checkInline(s string) error {
	for {
		i := strings.Index(s, "{@")
		if i < 0 {
			return nil
		}
		j := strings.IndexByte(s[i:], '}')
		if j < 0 {
			return fmt.Errorf("unterminated inline tag at %q", s[i:])
		}
		s = s[i+j+1:]
	}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
