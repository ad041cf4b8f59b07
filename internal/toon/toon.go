// Package toon encodes the catalog index and error report in TOON
// (Token-Oriented Object Notation).
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/phpdocgen/internal/catalog"
	"github.com/phobologic/phpdocgen/internal/errlog"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Options controls the header and optional tables of Encode.
type Options struct {
	Project string
	Roots   []string
	// Members adds a table of every method, property and constant of the
	// encoded classes.
	Members bool
}

// Encode renders a catalog view as a TOON index.
func Encode(v catalog.View, opts Options) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("project: %s", encodeValue(opts.Project)))
	parts = append(parts, fmt.Sprintf("roots: %s", encodeValue(strings.Join(opts.Roots, " "))))

	var classRows [][]string
	for _, c := range v.Classes {
		classRows = append(classRows, []string{
			c.Name(),
			string(c.Kind()),
			c.Filename(),
			fmt.Sprintf("%d", c.Line()),
			fmt.Sprintf("%.4f", v.Ranks[strings.ToLower(c.Name())]),
			fmt.Sprintf("%t", c.IsDeprecated()),
			c.DocBlock().Summary,
		})
	}
	parts = append(parts, formatTabular("classes",
		[]string{"name", "kind", "file", "line", "rank", "deprecated", "summary"}, classRows))

	var funcRows [][]string
	for _, f := range v.Functions {
		funcRows = append(funcRows, []string{
			f.Name(),
			f.Filename(),
			fmt.Sprintf("%d", f.Line()),
			f.Signature(),
			f.DocBlock().Summary,
		})
	}
	parts = append(parts, formatTabular("functions",
		[]string{"name", "file", "line", "signature", "summary"}, funcRows))

	var edgeRows [][]string
	for _, e := range v.Edges {
		edgeRows = append(edgeRows, []string{e.Child, e.Parent, string(e.Relation)})
	}
	parts = append(parts, formatTabular("hierarchy", []string{"child", "parent", "relation"}, edgeRows))

	if opts.Members {
		var memberRows [][]string
		for _, c := range v.Classes {
			for _, m := range c.Methods() {
				memberRows = append(memberRows, []string{c.Name(), m.Name(), "method", m.Visibility(), m.Signature()})
			}
			for _, p := range c.Properties() {
				memberRows = append(memberRows, []string{c.Name(), p.Name(), "property", p.Visibility(), p.Signature()})
			}
			for _, k := range c.Constants() {
				memberRows = append(memberRows, []string{c.Name(), k.Name(), "constant", k.Visibility(), k.Signature()})
			}
		}
		parts = append(parts, formatTabular("members",
			[]string{"class", "name", "kind", "visibility", "signature"}, memberRows))
	}

	return strings.Join(parts, "\n")
}

// EncodeErrors renders error records as a TOON table.
func EncodeErrors(records []errlog.Record) string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Entity, r.Message, r.Filename, fmt.Sprintf("%d", r.Line)})
	}
	return formatTabular("errors", []string{"entity", "message", "file", "line"}, rows)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
