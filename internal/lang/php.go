package lang

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

func init() {
	Languages["php"] = &Language{
		Name:       "php",
		Extensions: []string{".php", ".inc", ".phtml"},
		lang:       php.GetLanguage(),
	}
}

// PHP returns the registered PHP language.
func PHP() *Language {
	return Languages["php"]
}

// HasModifier reports whether a PHP declaration node carries the given
// modifier keyword (abstract, final, static, readonly).
// Older grammars emit bare keywords, newer ones wrap them in *_modifier nodes;
// both forms are matched by text.
func HasModifier(node *sitter.Node, source []byte, modifier string) bool {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Type() {
		case "name", "formal_parameters", "compound_statement", "declaration_list":
			return false
		}
		if strings.EqualFold(NodeText(child, source), modifier) {
			return true
		}
	}
	return false
}

// Visibility returns the visibility keyword of a member declaration, or
// def when none is written.
func Visibility(node *sitter.Node, source []byte, def string) string {
	if v := ChildOfType(node, "visibility_modifier"); v != nil {
		return strings.ToLower(NodeText(v, source))
	}
	return def
}
