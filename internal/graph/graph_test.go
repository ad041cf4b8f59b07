package graph

import (
	"math"
	"reflect"
	"testing"

	"github.com/phobologic/phpdocgen/internal/model"
)

func fixture() []model.Declaration {
	return []model.Declaration{
		{Name: "Vehicle", Kind: model.Class, Abstract: true, Interfaces: []string{"Drivable"}},
		{Name: "Car", Kind: model.Class, Parent: "Vehicle", Traits: []string{"Wheels"}},
		{Name: "SportsCar", Kind: model.Class, Parent: "Car"},
		{Name: "Bike", Kind: model.Class, Interfaces: []string{"Rideable"}, Traits: []string{"Wheels"}},
		{Name: "Rideable", Kind: model.Interface, Interfaces: []string{"Drivable"}},
		{Name: "Drivable", Kind: model.Interface},
		{Name: "Wheels", Kind: model.Trait},
		{Name: "helper", Kind: model.Function},
		{Name: "car", Kind: model.Class, Parent: "Ignored"},
	}
}

func TestBuildEdges(t *testing.T) {
	t.Parallel()
	h := Build(fixture())
	want := []Edge{
		{"Bike", "Rideable", Implements},
		{"Bike", "Wheels", Uses},
		{"Car", "Vehicle", Extends},
		{"Car", "Wheels", Uses},
		{"Rideable", "Drivable", Extends},
		{"SportsCar", "Car", Extends},
		{"Vehicle", "Drivable", Implements},
	}
	if got := h.Edges(); !reflect.DeepEqual(got, want) {
		t.Errorf("edges = %v\nwant %v", got, want)
	}
}

func TestSubclassesAndImplementors(t *testing.T) {
	t.Parallel()
	h := Build(fixture())

	if got := h.Subclasses("vehicle"); !reflect.DeepEqual(got, []string{"Car", "SportsCar"}) {
		t.Errorf("subclasses = %v", got)
	}
	want := []string{"Bike", "Car", "Rideable", "SportsCar", "Vehicle"}
	if got := h.Implementors("Drivable"); !reflect.DeepEqual(got, want) {
		t.Errorf("implementors = %v, want %v", got, want)
	}
	if got := h.Users("Wheels"); !reflect.DeepEqual(got, []string{"Bike", "Car"}) {
		t.Errorf("users = %v", got)
	}
	if got := h.Subclasses("SportsCar"); len(got) != 0 {
		t.Errorf("leaf subclasses = %v", got)
	}
}

func TestRank(t *testing.T) {
	t.Parallel()
	h := Build(fixture())
	ranks := h.Rank()

	var sum float64
	for _, r := range ranks {
		sum += r
	}
	if math.Abs(sum-1.0) > 1e-4 {
		t.Errorf("ranks sum to %f, want 1.0", sum)
	}
	if ranks["drivable"] <= ranks["sportscar"] {
		t.Errorf("Drivable (%f) should outrank SportsCar (%f)", ranks["drivable"], ranks["sportscar"])
	}
	if _, ok := ranks["helper"]; ok {
		t.Error("functions should not be ranked")
	}
}

func TestRankEmpty(t *testing.T) {
	t.Parallel()
	if r := Build(nil).Rank(); r != nil {
		t.Errorf("expected nil, got %v", r)
	}
}
