// Package ranking narrows a catalog view for the text index: the
// top-ranked classes, or those matching a symbol or file query.
package ranking

import (
	"sort"
	"strings"

	"github.com/phobologic/phpdocgen/internal/catalog"
	"github.com/phobologic/phpdocgen/internal/entity"
	"github.com/phobologic/phpdocgen/internal/graph"
)

// SelectClasses keeps the maxClasses highest-ranked classes, in their
// original order, and the edges between them. If maxClasses is <= 0 or
// covers every class, v is returned unchanged.
func SelectClasses(v catalog.View, maxClasses int) catalog.View {
	if maxClasses <= 0 || maxClasses >= len(v.Classes) {
		return v
	}

	byRank := make([]*entity.Class, len(v.Classes))
	copy(byRank, v.Classes)
	sort.SliceStable(byRank, func(i, j int) bool {
		return v.Ranks[key(byRank[i].Name())] > v.Ranks[key(byRank[j].Name())]
	})
	selected := make(map[string]struct{}, maxClasses)
	for _, c := range byRank[:maxClasses] {
		selected[key(c.Name())] = struct{}{}
	}

	out := v
	out.Classes = nil
	for _, c := range v.Classes {
		if _, ok := selected[key(c.Name())]; ok {
			out.Classes = append(out.Classes, c)
		}
	}
	out.Edges = nil
	for _, e := range v.Edges {
		_, childOK := selected[key(e.Child)]
		_, parentOK := selected[key(e.Parent)]
		if childOK && parentOK {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

// FilterBySymbol keeps classes and functions whose name contains substr
// (case-insensitive), the classes directly above and below matched
// classes in the hierarchy, and the edges touching matched classes.
//
// When withMembers is true and no class name matches, classes declaring a
// method, property or constant whose name contains substr are matched
// instead.
func FilterBySymbol(v catalog.View, substr string, withMembers bool) catalog.View {
	lower := strings.ToLower(substr)

	matched := make(map[string]struct{})
	for _, c := range v.Classes {
		if strings.Contains(key(c.Name()), lower) {
			matched[key(c.Name())] = struct{}{}
		}
	}
	if withMembers && len(matched) == 0 {
		for _, c := range v.Classes {
			if hasMember(c, lower) {
				matched[key(c.Name())] = struct{}{}
			}
		}
	}

	related := make(map[string]struct{})
	var edges []graph.Edge
	for _, e := range v.Edges {
		_, childOK := matched[key(e.Child)]
		_, parentOK := matched[key(e.Parent)]
		if childOK {
			related[key(e.Parent)] = struct{}{}
		}
		if parentOK {
			related[key(e.Child)] = struct{}{}
		}
		if childOK || parentOK {
			edges = append(edges, e)
		}
	}

	out := v
	out.Classes = nil
	for _, c := range v.Classes {
		_, isMatched := matched[key(c.Name())]
		_, isRelated := related[key(c.Name())]
		if isMatched || isRelated {
			out.Classes = append(out.Classes, c)
		}
	}
	out.Functions = nil
	for _, f := range v.Functions {
		if strings.Contains(key(f.Name()), lower) {
			out.Functions = append(out.Functions, f)
		}
	}
	out.Edges = edges
	return out
}

func hasMember(c *entity.Class, lower string) bool {
	for _, m := range c.Methods() {
		if strings.Contains(key(m.Name()), lower) {
			return true
		}
	}
	for _, p := range c.Properties() {
		if strings.Contains(key(p.Name()), lower) {
			return true
		}
	}
	for _, k := range c.Constants() {
		if strings.Contains(key(k.Name()), lower) {
			return true
		}
	}
	return false
}

// FilterByFile keeps the classes and functions declared in files whose
// path contains substr (case-insensitive) and the edges touching those
// classes.
func FilterByFile(v catalog.View, substr string) catalog.View {
	lower := strings.ToLower(substr)

	matched := make(map[string]struct{})
	out := v
	out.Classes = nil
	for _, c := range v.Classes {
		if strings.Contains(strings.ToLower(c.Filename()), lower) {
			matched[key(c.Name())] = struct{}{}
			out.Classes = append(out.Classes, c)
		}
	}
	out.Functions = nil
	for _, f := range v.Functions {
		if strings.Contains(strings.ToLower(f.Filename()), lower) {
			out.Functions = append(out.Functions, f)
		}
	}
	out.Edges = nil
	for _, e := range v.Edges {
		_, childOK := matched[key(e.Child)]
		_, parentOK := matched[key(e.Parent)]
		if childOK || parentOK {
			out.Edges = append(out.Edges, e)
		}
	}
	return out
}

func key(name string) string {
	return strings.ToLower(name)
}
