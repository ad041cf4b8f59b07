// Package graph builds the inheritance hierarchy of the scanned
// declarations and ranks classes by how central they are in it.
package graph

import (
	"math"
	"sort"
	"strings"

	"github.com/phobologic/phpdocgen/internal/model"
)

// Relation is the kind of an inheritance edge.
type Relation string

const (
	Extends    Relation = "extends"
	Implements Relation = "implements"
	Uses       Relation = "uses"
)

// Edge links a class-like declaration to one it inherits from.
type Edge struct {
	Child    string
	Parent   string
	Relation Relation
}

// Hierarchy indexes inheritance edges in both directions. Names are
// matched case-insensitively.
type Hierarchy struct {
	edges []Edge
	up    map[string][]Edge
	down  map[string][]Edge
	names map[string]string
}

// Build creates the hierarchy of decls. Functions are ignored, and for
// duplicate names only the first declaration contributes edges.
func Build(decls []model.Declaration) *Hierarchy {
	h := &Hierarchy{
		up:    make(map[string][]Edge),
		down:  make(map[string][]Edge),
		names: make(map[string]string),
	}
	type edgeKey struct {
		child, parent string
		rel           Relation
	}
	seen := make(map[edgeKey]struct{})
	add := func(child, parent string, rel Relation) {
		if parent == "" {
			return
		}
		key := edgeKey{strings.ToLower(child), strings.ToLower(parent), rel}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		h.edges = append(h.edges, Edge{Child: child, Parent: parent, Relation: rel})
	}

	for i := range decls {
		d := &decls[i]
		if !d.Kind.ClassLike() {
			continue
		}
		key := strings.ToLower(d.Name)
		if _, dup := h.names[key]; dup {
			continue
		}
		h.names[key] = d.Name
		add(d.Name, d.Parent, Extends)
		rel := Implements
		if d.Kind == model.Interface {
			rel = Extends
		}
		for _, iface := range d.Interfaces {
			add(d.Name, iface, rel)
		}
		for _, t := range d.Traits {
			add(d.Name, t, Uses)
		}
	}

	sort.SliceStable(h.edges, func(i, j int) bool {
		if h.edges[i].Child != h.edges[j].Child {
			return h.edges[i].Child < h.edges[j].Child
		}
		return h.edges[i].Parent < h.edges[j].Parent
	})
	for _, e := range h.edges {
		h.up[strings.ToLower(e.Child)] = append(h.up[strings.ToLower(e.Child)], e)
		h.down[strings.ToLower(e.Parent)] = append(h.down[strings.ToLower(e.Parent)], e)
	}
	return h
}

// Edges returns every edge sorted by child, then parent.
func (h *Hierarchy) Edges() []Edge {
	return h.edges
}

// Parents returns the edges leaving name.
func (h *Hierarchy) Parents(name string) []Edge {
	return h.up[strings.ToLower(name)]
}

// Children returns the edges pointing at name.
func (h *Hierarchy) Children(name string) []Edge {
	return h.down[strings.ToLower(name)]
}

// Subclasses returns every class extending name, directly or through
// intermediate classes, sorted.
func (h *Hierarchy) Subclasses(name string) []string {
	return h.collect(name, func(e Edge) bool { return e.Relation == Extends })
}

// Implementors returns every class-like declaration that implements name,
// directly, through an extending interface or through a parent class.
func (h *Hierarchy) Implementors(name string) []string {
	return h.collect(name, func(e Edge) bool { return e.Relation != Uses })
}

// Users returns the declarations using the trait name directly.
func (h *Hierarchy) Users(name string) []string {
	var out []string
	for _, e := range h.Children(name) {
		if e.Relation == Uses {
			out = append(out, e.Child)
		}
	}
	sort.Strings(out)
	return out
}

func (h *Hierarchy) collect(name string, follow func(Edge) bool) []string {
	seen := map[string]struct{}{strings.ToLower(name): {}}
	var out []string
	queue := []string{name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range h.Children(cur) {
			if !follow(e) {
				continue
			}
			key := strings.ToLower(e.Child)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, e.Child)
			queue = append(queue, e.Child)
		}
	}
	sort.Strings(out)
	return out
}

// Rank applies PageRank over the edges, child to parent, so widely
// extended and implemented declarations rank highest. Every declaration
// passed to Build gets a rank; names are keyed lower-cased.
func (h *Hierarchy) Rank() map[string]float64 {
	nodes := make(map[string]struct{}, len(h.names))
	for key := range h.names {
		nodes[key] = struct{}{}
	}
	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	for _, e := range h.edges {
		src, tgt := strings.ToLower(e.Child), strings.ToLower(e.Parent)
		nodes[tgt] = struct{}{}
		outEdges[src] = append(outEdges[src], tgt)
		outDegree[src]++
	}
	return pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)
}

func pageRank(
	nodes map[string]struct{},
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for node := range nodes {
		rank[node] = initial
	}
	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Nodes without parents spread their rank evenly.
		var danglingSum float64
		for node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)
		for node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		for src, targets := range outEdges {
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}
		rank = newRank
		if diff < tol {
			break
		}
	}
	return rank
}
