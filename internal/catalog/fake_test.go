package catalog

import (
	"strings"

	"github.com/phobologic/phpdocgen/internal/model"
)

// fakeTable declares a single class Broken with the given doc comment.
type fakeTable struct {
	doc string
}

func (f fakeTable) decl() model.Declaration {
	return model.Declaration{Name: "Broken", Kind: model.Class, File: "broken.php", Line: 1, DocComment: f.doc}
}

func (f fakeTable) Declarations() []model.Declaration {
	return []model.Declaration{f.decl()}
}

func (f fakeTable) Lookup(name string) (model.Declaration, bool) {
	if strings.EqualFold(name, "Broken") {
		return f.decl(), true
	}
	return model.Declaration{}, false
}
