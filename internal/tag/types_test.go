package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeType(t *testing.T) {
	ctx := Context{
		Namespace: "Vehicles",
		Imports:   map[string]string{"carbon": "Carbon\\Carbon", "http": "Symfony\\Component\\HttpFoundation"},
	}

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"int alias", "int", "integer"},
		{"bool alias", "bool", "boolean"},
		{"string kept", "string", "string"},
		{"leading separator", `\Exception`, "Exception"},
		{"nullable shorthand", "?string", "string|null"},
		{"nullable already null", "?null", "null"},
		{"union", "int|string", "integer|string"},
		{"relative class", "Car", `Vehicles\Car`},
		{"imported alias", "Carbon", `Carbon\Carbon`},
		{"imported prefix", `Http\Request`, `Symfony\Component\HttpFoundation\Request`},
		{"array suffix", "Car[]", `Vehicles\Car[]`},
		{"generic kept together", "array<int, string>", "array<int, string>"},
		{"parenthesized union", "(int|bool)", "integer|boolean"},
		{"this", "$this", "$this"},
		{"keyword self", "self", "self"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeType(tt.in, ctx).String())
		})
	}
}

func TestNormalizeTypeWithoutNamespace(t *testing.T) {
	assert.Equal(t, "Car", NormalizeType("Car", Context{}).String())
	assert.Equal(t, `Foo\Bar`, NormalizeType(`\Foo\Bar`, Context{Namespace: "Other"}).String())
}

func TestWithNull(t *testing.T) {
	assert.Equal(t, "string|null", NormalizeType("string", Context{}).WithNull().String())
	assert.Equal(t, "string|null", NormalizeType("string|null", Context{}).WithNull().String())
	assert.Equal(t, "null|string", NormalizeType("null|string", Context{}).WithNull().String())
	assert.Equal(t, "mixed", NormalizeType("mixed", Context{}).WithNull().String())
	assert.True(t, Type{}.WithNull().IsEmpty(), "empty type must stay empty")
}

func TestWithNullDoesNotAlias(t *testing.T) {
	base := Type{Alternatives: make([]string, 1, 4)}
	base.Alternatives[0] = "string"
	withNull := base.WithNull()
	other := base.WithNull()
	other.Alternatives[1] = "changed"
	assert.Equal(t, "string|null", withNull.String())
}

func TestResolveNamespaceKeyword(t *testing.T) {
	ctx := Context{Namespace: "App"}
	assert.Equal(t, `App\Models\User`, ctx.Resolve(`namespace\Models\User`))
}

func TestResolveClass(t *testing.T) {
	ctx := Context{
		Namespace: `App\Http`,
		Imports:   map[string]string{"scalar": `Lib\Scalar`},
	}
	assert.Equal(t, `App\Http\Resource`, ctx.ResolveClass("Resource"))
	assert.Equal(t, `Lib\Scalar`, ctx.ResolveClass("Scalar"))
	assert.Equal(t, "parent", ctx.ResolveClass("parent"))
	assert.Equal(t, "Exception", ctx.ResolveClass(`\Exception`))

	// Docblock types keep treating pseudo-types as keywords.
	assert.Equal(t, "resource", ctx.Resolve("resource"))
}
