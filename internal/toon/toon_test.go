package toon

import (
	"strings"
	"testing"

	"github.com/phobologic/phpdocgen/internal/catalog"
	"github.com/phobologic/phpdocgen/internal/entity"
	"github.com/phobologic/phpdocgen/internal/errlog"
	"github.com/phobologic/phpdocgen/internal/graph"
	"github.com/phobologic/phpdocgen/internal/model"
)

func TestEncodeValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", `""`},
		{"simple", "hello", "hello"},
		{"leading space", " hello", `" hello"`},
		{"trailing space", "hello ", `"hello "`},
		{"newline", "a\nb", `"a\nb"`},
		{"tab", "a\tb", `"a\tb"`},
		{"carriage return", "a\rb", `"a\rb"`},
		{"true keyword", "true", `"true"`},
		{"True keyword", "True", `"True"`},
		{"false keyword", "false", `"false"`},
		{"null keyword", "null", `"null"`},
		{"integer", "42", "42"},
		{"negative integer", "-1", "-1"},
		{"float", "3.14", "3.14"},
		{"zero", "0", "0"},
		{"leading zero invalid", "01", "01"},
		{"comma", "a,b", `"a,b"`},
		{"colon", "a:b", `"a:b"`},
		{"quote", `a"b`, `"a\"b"`},
		{"backslash", `a\b`, `"a\\b"`},
		{"bracket", "a[b", `"a[b"`},
		{"brace", "a{b", `"a{b"`},
		{"dash prefix", "-foo", `"-foo"`},
		{"path", "src/Car.php", "src/Car.php"},
		{"namespaced name", `Vehicles\Car`, `"Vehicles\\Car"`},
		{"signature no special", "function run(integer $x)", "function run(integer $x)"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := encodeValue(tt.in)
			if got != tt.want {
				t.Errorf("encodeValue(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func testView() catalog.View {
	env := entity.NewEnv(nil, errlog.New())
	car := env.Wrap(model.Declaration{
		Name:       `Vehicles\Car`,
		Kind:       model.Class,
		File:       "src/Car.php",
		Line:       3,
		Parent:     `Vehicles\Vehicle`,
		DocComment: "/** A car. */",
		Constants:  []model.Constant{{Name: "LEGS", Visibility: "protected", Value: model.Value{Raw: "4", Scalar: "4"}}},
		Methods:    []model.Method{{Name: "drive", Visibility: "public"}},
	})
	return catalog.View{
		Classes: []*entity.Class{car},
		Functions: []*entity.Function{entity.NewFunction(model.Declaration{
			Name:       "honk",
			Kind:       model.Function,
			File:       "src/util.php",
			Line:       7,
			DocComment: "/**\n * Honks.\n * @deprecated\n */",
			Params:     []model.Param{{Name: "times", Type: "int"}},
		}, env)},
		Edges: []graph.Edge{{Child: `Vehicles\Car`, Parent: `Vehicles\Vehicle`, Relation: graph.Extends}},
		Ranks: map[string]float64{`vehicles\car`: 0.25},
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	got := Encode(testView(), Options{Project: "shop", Roots: []string{"src"}})
	want := []string{
		"project: shop",
		"roots: src",
		"classes[1]{name,kind,file,line,rank,deprecated,summary}:",
		`  "Vehicles\\Car",class,src/Car.php,3,0.2500,"false",A car.`,
		"functions[1]{name,file,line,signature,summary}:",
		"  honk,src/util.php,7,function honk(integer $times),Honks.",
		"hierarchy[1]{child,parent,relation}:",
		`  "Vehicles\\Car","Vehicles\\Vehicle",extends`,
	}
	lines := strings.Split(got, "\n")
	if len(lines) != len(want) {
		t.Fatalf("got %d lines:\n%s", len(lines), got)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestEncodeMembers(t *testing.T) {
	t.Parallel()

	got := Encode(testView(), Options{Members: true})
	if !strings.Contains(got, "members[2]{class,name,kind,visibility,signature}:") {
		t.Errorf("expected members table, got:\n%s", got)
	}
	if !strings.Contains(got, `  "Vehicles\\Car",LEGS,constant,protected,protected const LEGS = 4`) {
		t.Errorf("expected constant row, got:\n%s", got)
	}
}

func TestEncodeEmpty(t *testing.T) {
	t.Parallel()

	got := Encode(catalog.View{}, Options{})
	if !strings.Contains(got, `project: ""`) {
		t.Errorf("expected quoted empty project, got:\n%s", got)
	}
	if !strings.Contains(got, "classes[0]{name,kind,file,line,rank,deprecated,summary}:") {
		t.Errorf("expected empty classes section, got:\n%s", got)
	}
	if strings.Contains(got, "members[") {
		t.Errorf("members table should be opt-in, got:\n%s", got)
	}
}

func TestEncodeErrors(t *testing.T) {
	t.Parallel()

	got := EncodeErrors([]errlog.Record{
		{Entity: "Car", Message: "Invalid tag `@see %%x`", Filename: "src/Car.php", Line: 8},
	})
	want := "errors[1]{entity,message,file,line}:\n  Car,Invalid tag `@see %%x`,src/Car.php,8"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if EncodeErrors(nil) != "errors[0]{entity,message,file,line}:" {
		t.Errorf("empty: got %q", EncodeErrors(nil))
	}
}
