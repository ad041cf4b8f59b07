package lang

import (
	"context"
	"testing"
)

func TestForExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ext  string
		want string
	}{
		{".php", "php"},
		{".PHP", "php"},
		{".inc", "php"},
		{".py", ""},
		{".js", ""},
		{"", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.ext, func(t *testing.T) {
			t.Parallel()
			got := ForExtension(tt.ext)
			if got != tt.want {
				t.Errorf("ForExtension(%q) = %q, want %q", tt.ext, got, tt.want)
			}
		})
	}
}

func TestLanguagesRegistered(t *testing.T) {
	t.Parallel()

	l, ok := Languages["php"]
	if !ok {
		t.Fatal("php language not registered")
	}
	if l.GetLanguage() == nil {
		t.Error("php language is nil")
	}
	if PHP() != l {
		t.Error("PHP() does not return the registered language")
	}
}

func TestHasModifierAndVisibility(t *testing.T) {
	t.Parallel()

	src := []byte("<?php\nabstract class A {\n    protected static function f() {}\n}\n")
	tree, err := PHP().NewParser().ParseCtx(context.Background(), nil, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	class := ChildOfType(tree.RootNode(), "class_declaration")
	if class == nil {
		t.Fatal("class_declaration not found")
	}
	if !HasModifier(class, src, "abstract") {
		t.Error("class should be abstract")
	}
	if HasModifier(class, src, "final") {
		t.Error("class should not be final")
	}

	body := class.ChildByFieldName("body")
	method := ChildOfType(body, "method_declaration")
	if method == nil {
		t.Fatal("method_declaration not found")
	}
	if got := Visibility(method, src, "public"); got != "protected" {
		t.Errorf("Visibility = %q, want protected", got)
	}
	if !HasModifier(method, src, "static") {
		t.Error("method should be static")
	}
	if Line(method) != 3 {
		t.Errorf("Line = %d, want 3", Line(method))
	}
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()
	if got := CollapseWhitespace("  a \n\t b  "); got != "a b" {
		t.Errorf("CollapseWhitespace = %q", got)
	}
}

func TestModifiersAreCaseInsensitive(t *testing.T) {
	t.Parallel()

	src := []byte("<?php\nFINAL class A {\n    PRIVATE function f() {}\n}\n")
	tree, err := PHP().NewParser().ParseCtx(context.Background(), nil, src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	defer tree.Close()

	class := ChildOfType(tree.RootNode(), "class_declaration")
	if class == nil {
		t.Fatal("class_declaration not found")
	}
	if !HasModifier(class, src, "final") {
		t.Error("class should be final")
	}
	method := ChildOfType(class.ChildByFieldName("body"), "method_declaration")
	if method == nil {
		t.Fatal("method_declaration not found")
	}
	if got := Visibility(method, src, "public"); got != "private" {
		t.Errorf("Visibility = %q, want private", got)
	}
}
