// Package parse extracts class-like and function declarations from PHP
// source using tree-sitter. Nothing is executed: the syntax tree is walked
// in document order so namespace and use-import context can be tracked.
package parse

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/phpdocgen/internal/lang"
	"github.com/phobologic/phpdocgen/internal/model"
	"github.com/phobologic/phpdocgen/internal/tag"
)

// Result is what one file contributes to the symbol table.
type Result struct {
	Declarations []model.Declaration
	// HasErrors is set when tree-sitter recovered from syntax errors. The
	// declarations are then best effort.
	HasErrors bool
}

// File parses source and returns its declarations in source order.
// The parser must be created for PHP. filePath is recorded on every
// declaration and is not opened.
func File(ctx context.Context, parser *sitter.Parser, source []byte, filePath string) (Result, error) {
	if len(source) == 0 {
		return Result{}, nil
	}
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return Result{}, fmt.Errorf("parsing %s: %w", filePath, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	w := &walker{src: source, file: filePath}
	w.statements(root)
	return Result{Declarations: w.decls, HasErrors: root.HasError()}, nil
}

type walker struct {
	src   []byte
	file  string
	ns    string
	uses  map[string]string
	decls []model.Declaration
}

func (w *walker) text(n *sitter.Node) string {
	return lang.NodeText(n, w.src)
}

func (w *walker) resolver() tag.Context {
	return tag.Context{Namespace: w.ns, Imports: w.uses}
}

func (w *walker) statements(parent *sitter.Node) {
	for i := 0; i < int(parent.NamedChildCount()); i++ {
		n := parent.NamedChild(i)
		switch n.Type() {
		case "namespace_definition":
			w.namespace(n)
		case "namespace_use_declaration":
			w.useDeclaration(n)
		case "class_declaration", "interface_declaration", "trait_declaration", "enum_declaration":
			w.decls = append(w.decls, w.classLike(n))
		case "function_definition":
			w.decls = append(w.decls, w.function(n))
		case "if_statement", "else_clause", "else_if_clause", "compound_statement", "colon_block":
			// Conditional declarations such as
			// if (!function_exists('x')) { function x() {} }
			w.statements(n)
		}
	}
}

func (w *walker) namespace(n *sitter.Node) {
	name := ""
	if nn := n.ChildByFieldName("name"); nn != nil {
		name = strings.TrimLeft(w.text(nn), `\`)
	} else if nn := lang.ChildOfType(n, "namespace_name"); nn != nil {
		name = w.text(nn)
	}
	body := n.ChildByFieldName("body")
	if body == nil {
		body = lang.ChildOfType(n, "compound_statement")
	}
	if body == nil {
		// namespace Foo; applies to the statements that follow it.
		w.ns = name
		w.uses = nil
		return
	}
	outerNS, outerUses := w.ns, w.uses
	w.ns, w.uses = name, nil
	w.statements(body)
	w.ns, w.uses = outerNS, outerUses
}

// useDeclaration records class imports. Function and const imports are
// ignored since only class names are resolved.
func (w *walker) useDeclaration(n *sitter.Node) {
	for alias, fqn := range parseUse(w.text(n)) {
		if w.uses == nil {
			w.uses = make(map[string]string)
		}
		w.uses[alias] = fqn
	}
}

// parseUse reads the text of a use statement: single, aliased, comma
// separated or grouped with braces. It returns lower-cased alias to FQN.
func parseUse(stmt string) map[string]string {
	stmt = strings.TrimSpace(stmt)
	stmt = strings.TrimSuffix(stmt, ";")
	stmt = strings.TrimSpace(strings.TrimPrefix(stmt, "use"))
	lower := strings.ToLower(stmt)
	if strings.HasPrefix(lower, "function ") || strings.HasPrefix(lower, "const ") {
		return nil
	}

	out := make(map[string]string)
	add := func(prefix, clause string) {
		clause = lang.CollapseWhitespace(clause)
		if clause == "" {
			return
		}
		l := strings.ToLower(clause)
		if strings.HasPrefix(l, "function ") || strings.HasPrefix(l, "const ") {
			return
		}
		name, alias := clause, ""
		if i := strings.Index(l, " as "); i >= 0 {
			name, alias = strings.TrimSpace(clause[:i]), strings.TrimSpace(clause[i+4:])
		}
		fqn := strings.TrimLeft(prefix+name, `\`)
		if alias == "" {
			alias = fqn
			if j := strings.LastIndexByte(fqn, '\\'); j >= 0 {
				alias = fqn[j+1:]
			}
		}
		out[strings.ToLower(alias)] = fqn
	}

	if open := strings.IndexByte(stmt, '{'); open >= 0 {
		prefix := strings.TrimSpace(stmt[:open])
		if !strings.HasSuffix(prefix, `\`) {
			prefix += `\`
		}
		inner := strings.TrimSuffix(strings.TrimSpace(stmt[open+1:]), "}")
		for _, clause := range strings.Split(inner, ",") {
			add(prefix, clause)
		}
		return out
	}
	for _, clause := range strings.Split(stmt, ",") {
		add("", clause)
	}
	return out
}

func (w *walker) qualify(name string) string {
	if w.ns == "" {
		return name
	}
	return w.ns + `\` + name
}

func (w *walker) importsCopy() map[string]string {
	if len(w.uses) == 0 {
		return nil
	}
	out := make(map[string]string, len(w.uses))
	for k, v := range w.uses {
		out[k] = v
	}
	return out
}

func (w *walker) classLike(n *sitter.Node) model.Declaration {
	d := model.Declaration{
		File:       w.file,
		Line:       lang.Line(n),
		DocComment: w.docComment(n),
		Origin:     model.FromRoot,
		Namespace:  w.ns,
		Imports:    w.importsCopy(),
	}
	switch n.Type() {
	case "interface_declaration":
		d.Kind = model.Interface
	case "trait_declaration":
		d.Kind = model.Trait
	case "enum_declaration":
		d.Kind = model.Enum
	default:
		d.Kind = model.Class
	}
	if nn := n.ChildByFieldName("name"); nn != nil {
		d.Name = w.qualify(w.text(nn))
	}
	d.Abstract = lang.HasModifier(n, w.src, "abstract")
	d.Final = lang.HasModifier(n, w.src, "final")

	res := w.resolver()
	if base := lang.ChildOfType(n, "base_clause"); base != nil {
		names := w.names(base)
		if d.Kind == model.Interface {
			d.Interfaces = append(d.Interfaces, names...)
		} else if len(names) > 0 {
			d.Parent = res.ResolveClass(names[0])
		}
	}
	if impl := lang.ChildOfType(n, "class_interface_clause"); impl != nil {
		d.Interfaces = append(d.Interfaces, w.names(impl)...)
	}
	for i, iface := range d.Interfaces {
		d.Interfaces[i] = res.ResolveClass(iface)
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		body = lang.ChildOfType(n, "declaration_list", "enum_declaration_list")
	}
	if body != nil {
		w.members(body, &d)
	}
	return d
}

// names returns the class names listed in an extends, implements or trait
// use clause.
func (w *walker) names(n *sitter.Node) []string {
	var out []string
	for _, c := range lang.NamedChildren(n) {
		switch c.Type() {
		case "name", "qualified_name", "namespace_name":
			out = append(out, w.text(c))
		}
	}
	return out
}

func (w *walker) members(body *sitter.Node, d *model.Declaration) {
	res := w.resolver()
	for _, m := range lang.NamedChildren(body) {
		switch m.Type() {
		case "method_declaration":
			method := w.method(m, d.Kind)
			d.Methods = append(d.Methods, method)
			if strings.EqualFold(method.Name, "__construct") {
				d.Properties = append(d.Properties, w.promoted(m)...)
			}
		case "property_declaration":
			d.Properties = append(d.Properties, w.properties(m)...)
		case "const_declaration":
			d.Constants = append(d.Constants, w.constants(m)...)
		case "enum_case":
			d.Constants = append(d.Constants, w.enumCase(m))
		case "use_declaration":
			for _, t := range w.names(m) {
				d.Traits = append(d.Traits, res.ResolveClass(t))
			}
		}
	}
}

func (w *walker) method(n *sitter.Node, owner model.Kind) model.Method {
	m := model.Method{
		Visibility: lang.Visibility(n, w.src, "public"),
		Static:     lang.HasModifier(n, w.src, "static"),
		Abstract:   lang.HasModifier(n, w.src, "abstract") || owner == model.Interface,
		Final:      lang.HasModifier(n, w.src, "final"),
		ByRef:      w.returnsRef(n),
		DocComment: w.docComment(n),
		Line:       lang.Line(n),
	}
	if nn := n.ChildByFieldName("name"); nn != nil {
		m.Name = w.text(nn)
	}
	if ps := n.ChildByFieldName("parameters"); ps != nil {
		m.Params = w.params(ps)
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		m.ReturnType = lang.CollapseWhitespace(w.text(rt))
	}
	return m
}

func (w *walker) function(n *sitter.Node) model.Declaration {
	d := model.Declaration{
		Kind:       model.Function,
		File:       w.file,
		Line:       lang.Line(n),
		DocComment: w.docComment(n),
		Origin:     model.FromRoot,
		Namespace:  w.ns,
		Imports:    w.importsCopy(),
		ByRef:      w.returnsRef(n),
	}
	if nn := n.ChildByFieldName("name"); nn != nil {
		d.Name = w.qualify(w.text(nn))
	}
	if ps := n.ChildByFieldName("parameters"); ps != nil {
		d.Params = w.params(ps)
	}
	if rt := n.ChildByFieldName("return_type"); rt != nil {
		d.ReturnType = lang.CollapseWhitespace(w.text(rt))
	}
	return d
}

// returnsRef reports a & between the function keyword and the name.
func (w *walker) returnsRef(n *sitter.Node) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		switch {
		case c.Type() == "name", c.Type() == "formal_parameters":
			return false
		case c.Type() == "reference_modifier", w.text(c) == "&":
			return true
		}
	}
	return false
}

func (w *walker) params(list *sitter.Node) []model.Param {
	var out []model.Param
	for _, p := range lang.NamedChildren(list) {
		switch p.Type() {
		case "simple_parameter", "variadic_parameter", "property_promotion_parameter":
		default:
			continue
		}
		param := model.Param{
			Variadic: p.Type() == "variadic_parameter",
			Promoted: p.Type() == "property_promotion_parameter",
		}
		if nn := p.ChildByFieldName("name"); nn != nil {
			param.Name = strings.TrimPrefix(w.text(nn), "$")
		} else if nn := lang.ChildOfType(p, "variable_name"); nn != nil {
			param.Name = strings.TrimPrefix(w.text(nn), "$")
		}
		if t := w.typeOf(p); t != "" {
			param.Type = t
		}
		if def := p.ChildByFieldName("default_value"); def != nil {
			param.Default = lang.CollapseWhitespace(w.text(def))
			param.HasDefault = true
		}
		for i := 0; i < int(p.ChildCount()); i++ {
			c := p.Child(i)
			if c.Type() == "variable_name" {
				break
			}
			switch {
			case c.Type() == "reference_modifier", w.text(c) == "&":
				param.ByRef = true
			case w.text(c) == "...":
				param.Variadic = true
			}
		}
		out = append(out, param)
	}
	return out
}

var typeNodes = []string{
	"named_type", "primitive_type", "optional_type", "union_type",
	"intersection_type", "disjunctive_normal_form_type", "type_list",
	"bottom_type", "nullable_type",
}

// typeOf returns the declared type of a parameter or property, as written.
func (w *walker) typeOf(n *sitter.Node) string {
	t := n.ChildByFieldName("type")
	if t == nil {
		t = lang.ChildOfType(n, typeNodes...)
	}
	if t == nil {
		return ""
	}
	return lang.CollapseWhitespace(w.text(t))
}

// promoted turns constructor property promotion parameters into
// properties.
func (w *walker) promoted(ctor *sitter.Node) []model.Property {
	ps := ctor.ChildByFieldName("parameters")
	if ps == nil {
		return nil
	}
	var out []model.Property
	for _, p := range lang.NamedChildren(ps) {
		if p.Type() != "property_promotion_parameter" {
			continue
		}
		prop := model.Property{
			Visibility: lang.Visibility(p, w.src, "public"),
			Readonly:   lang.HasModifier(p, w.src, "readonly"),
			Type:       w.typeOf(p),
			Line:       lang.Line(p),
		}
		if nn := lang.ChildOfType(p, "variable_name"); nn != nil {
			prop.Name = strings.TrimPrefix(w.text(nn), "$")
		}
		if def := p.ChildByFieldName("default_value"); def != nil {
			prop.Default = lang.CollapseWhitespace(w.text(def))
			prop.HasDefault = true
		}
		out = append(out, prop)
	}
	return out
}

func (w *walker) properties(n *sitter.Node) []model.Property {
	base := model.Property{
		Visibility: lang.Visibility(n, w.src, "public"),
		Static:     lang.HasModifier(n, w.src, "static"),
		Readonly:   lang.HasModifier(n, w.src, "readonly"),
		Type:       w.typeOf(n),
		DocComment: w.docComment(n),
	}
	var out []model.Property
	for _, el := range lang.NamedChildren(n) {
		if el.Type() != "property_element" {
			continue
		}
		p := base
		p.Line = lang.Line(el)
		if nn := lang.ChildOfType(el, "variable_name"); nn != nil {
			p.Name = strings.TrimPrefix(w.text(nn), "$")
		}
		if def, ok := w.initializer(el); ok {
			p.Default, p.HasDefault = def, true
		}
		out = append(out, p)
	}
	return out
}

// initializer returns the text after "=" in a property or constant element.
func (w *walker) initializer(el *sitter.Node) (string, bool) {
	if def := el.ChildByFieldName("default_value"); def != nil {
		return lang.CollapseWhitespace(w.text(def)), true
	}
	if pi := lang.ChildOfType(el, "property_initializer"); pi != nil {
		el = pi
	}
	_, after, ok := strings.Cut(w.text(el), "=")
	if !ok {
		return "", false
	}
	return lang.CollapseWhitespace(after), true
}

func (w *walker) constants(n *sitter.Node) []model.Constant {
	vis := lang.Visibility(n, w.src, "public")
	final := lang.HasModifier(n, w.src, "final")
	doc := w.docComment(n)
	var out []model.Constant
	for _, el := range lang.NamedChildren(n) {
		if el.Type() != "const_element" {
			continue
		}
		c := model.Constant{
			Visibility: vis,
			Final:      final,
			DocComment: doc,
			Line:       lang.Line(el),
		}
		kids := lang.NamedChildren(el)
		for _, k := range kids {
			if k.Type() == "name" {
				c.Name = w.text(k)
				break
			}
		}
		if len(kids) > 1 {
			c.Value = w.value(kids[len(kids)-1])
		}
		out = append(out, c)
	}
	return out
}

func (w *walker) enumCase(n *sitter.Node) model.Constant {
	c := model.Constant{
		Visibility: "public",
		Case:       true,
		DocComment: w.docComment(n),
		Line:       lang.Line(n),
	}
	kids := lang.NamedChildren(n)
	for _, k := range kids {
		if k.Type() == "name" {
			c.Name = w.text(k)
			break
		}
	}
	if v := n.ChildByFieldName("value"); v != nil {
		c.Value = w.value(v)
	} else if len(kids) > 1 && kids[len(kids)-1].Type() != "name" {
		c.Value = w.value(kids[len(kids)-1])
	}
	return c
}

// value describes a constant initializer. String literals lose their
// quotes; array literals keep each element's value.
func (w *walker) value(n *sitter.Node) model.Value {
	v := model.Value{Raw: lang.CollapseWhitespace(w.text(n))}
	if n.Type() != "array_creation_expression" {
		v.Scalar = unquote(v.Raw)
		return v
	}
	v.IsArray = true
	for _, el := range lang.NamedChildren(n) {
		if el.Type() != "array_element_initializer" {
			continue
		}
		kids := lang.NamedChildren(el)
		if len(kids) == 0 {
			continue
		}
		// key => value keeps only the value.
		v.Items = append(v.Items, unquote(lang.CollapseWhitespace(w.text(kids[len(kids)-1]))))
	}
	return v
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// docComment returns the /** */ comment immediately preceding n, or "".
func (w *walker) docComment(n *sitter.Node) string {
	prev := n.PrevSibling()
	if prev == nil || prev.Type() != "comment" {
		return ""
	}
	text := w.text(prev)
	if !strings.HasPrefix(text, "/**") {
		return ""
	}
	return text
}
