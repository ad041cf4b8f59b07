package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ns = Context{Namespace: "Vehicles"}

func TestParseParam(t *testing.T) {
	tg, err := Parse("param", "int $wheels Number of wheels", ns)
	require.NoError(t, err)
	p, ok := tg.(*Param)
	require.True(t, ok, "expected *Param, got %T", tg)
	assert.Equal(t, "wheels", p.Variable)
	assert.Equal(t, "integer", p.TypeString())
	assert.Equal(t, "Number of wheels", p.Description())
	assert.Equal(t, "param", p.Name())
}

func TestParseParamWithoutType(t *testing.T) {
	tg, err := Parse("param", "$name the name", ns)
	require.NoError(t, err)
	p := tg.(*Param)
	assert.Equal(t, "name", p.Variable)
	assert.True(t, p.Type.IsEmpty())
	assert.Equal(t, "the name", p.Desc)
}

func TestParseParamVariadicByRef(t *testing.T) {
	tg, err := Parse("param", "string &...$parts", ns)
	require.NoError(t, err)
	p := tg.(*Param)
	assert.Equal(t, "parts", p.Variable)
	assert.True(t, p.Variadic)
	assert.True(t, p.ByRef)
}

func TestParseParamGenericType(t *testing.T) {
	tg, err := Parse("param", "array<int, string> $map lookup", ns)
	require.NoError(t, err)
	p := tg.(*Param)
	assert.Equal(t, "array<int, string>", p.TypeString())
	assert.Equal(t, "map", p.Variable)
}

func TestParseParamMissingVariable(t *testing.T) {
	_, err := Parse("param", "string", ns)
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
	assert.False(t, se.Empty)
	assert.Contains(t, err.Error(), `"@param string"`)
}

func TestParseReturnAndThrows(t *testing.T) {
	tg, err := Parse("return", `\Foo\Bar|null the bar`, ns)
	require.NoError(t, err)
	assert.Equal(t, `Foo\Bar|null`, tg.TypeString())
	assert.Equal(t, "the bar", tg.Description())

	tg, err = Parse("return", "$this", ns)
	require.NoError(t, err)
	assert.Equal(t, "$this", tg.TypeString())

	tg, err = Parse("throws", `\RuntimeException when broken`, ns)
	require.NoError(t, err)
	th := tg.(*Throws)
	assert.Equal(t, "RuntimeException", th.TypeString())
	assert.Equal(t, "when broken", th.Desc)
}

func TestParseEmptyValues(t *testing.T) {
	for _, name := range []string{"return", "throws", "see", "param", "method", "var"} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(name, "   ", ns)
			var se *SyntaxError
			require.ErrorAs(t, err, &se)
			assert.True(t, se.Empty)
			assert.Equal(t, `expected a non-empty value, got ""`, err.Error())
		})
	}
}

func TestParseThrowsRejectsNonClass(t *testing.T) {
	_, err := Parse("throws", "not-a-class!", ns)
	require.Error(t, err)
}

func TestParseSee(t *testing.T) {
	tests := []struct {
		body    string
		ref     string
		isURL   bool
		desc    string
		wantErr bool
	}{
		{body: "https://example.com/docs Manual", ref: "https://example.com/docs", isURL: true, desc: "Manual"},
		{body: `\Vehicles\Car`, ref: `Vehicles\Car`},
		{body: `Car::drive()`, ref: `Car::drive()`},
		{body: `Car::$wheels`, ref: `Car::$wheels`},
		{body: `Car::LEGS`, ref: `Car::LEGS`},
		{body: `helper()`, ref: `helper()`},
		{body: `::foo bar`, wantErr: true},
		{body: `Car::`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			tg, err := Parse("see", tt.body, ns)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			s := tg.(*See)
			assert.Equal(t, tt.ref, s.Reference)
			assert.Equal(t, tt.isURL, s.IsURL)
			assert.Equal(t, tt.desc, s.Desc)
			assert.Empty(t, s.TypeString())
		})
	}
}

func TestParseDeprecated(t *testing.T) {
	tg, err := Parse("deprecated", "Useless, just for tests", ns)
	require.NoError(t, err)
	d := tg.(*Deprecated)
	assert.Equal(t, "Useless, just for tests", d.Desc)
	assert.Empty(t, d.Version)

	tg, err = Parse("deprecated", "1.4.0 use drive() instead", ns)
	require.NoError(t, err)
	d = tg.(*Deprecated)
	assert.Equal(t, "1.4.0", d.Version)
	assert.Equal(t, "Use drive() instead", d.Desc)

	tg, err = Parse("deprecated", "", ns)
	require.NoError(t, err)
	assert.Empty(t, tg.Description())
}

func TestParseMethod(t *testing.T) {
	tg, err := Parse("method", "static Car create(string $name, int ...$rest = []) Build one", ns)
	require.NoError(t, err)
	m := tg.(*Method)
	assert.True(t, m.Static)
	assert.Equal(t, "create", m.MethodName)
	assert.Equal(t, `Vehicles\Car`, m.TypeString())
	assert.Equal(t, "Build one", m.Desc)
	require.Len(t, m.Params, 2)
	assert.Equal(t, "name", m.Params[0].Name)
	assert.Equal(t, "string", m.Params[0].Type.String())
	assert.Equal(t, "rest", m.Params[1].Name)
	assert.True(t, m.Params[1].Variadic)
	assert.True(t, m.Params[1].HasDefault)
	assert.Equal(t, "[]", m.Params[1].Default)
}

func TestParseMethodStaticReturn(t *testing.T) {
	tg, err := Parse("method", "static fresh()", ns)
	require.NoError(t, err)
	m := tg.(*Method)
	assert.False(t, m.Static)
	assert.Equal(t, "static", m.TypeString())
}

func TestParseMethodGenericReturn(t *testing.T) {
	tg, err := Parse("method", "array<string, int> stats() Stats.", ns)
	require.NoError(t, err)
	m := tg.(*Method)
	assert.False(t, m.Static)
	assert.Equal(t, "stats", m.MethodName)
	assert.Equal(t, "array<string, int>", m.TypeString())
	assert.Equal(t, "Stats.", m.Desc)

	tg, err = Parse("method", "static array<int, Car> fleet(int $size)", ns)
	require.NoError(t, err)
	m = tg.(*Method)
	assert.True(t, m.Static)
	assert.Equal(t, "fleet", m.MethodName)
	assert.Equal(t, `array<int, Car>`, m.TypeString())
	require.Len(t, m.Params, 1)
	assert.Equal(t, "size", m.Params[0].Name)

	tg, err = Parse("method", "honk()", ns)
	require.NoError(t, err)
	assert.True(t, tg.(*Method).Return.IsEmpty())
}

func TestParseMethodMalformed(t *testing.T) {
	_, err := Parse("method", "string broken", ns)
	require.Error(t, err)

	_, err = Parse("method", "void go(notavar)", ns)
	require.Error(t, err)
}

func TestParseVar(t *testing.T) {
	tg, err := Parse("var", "int $count how many", ns)
	require.NoError(t, err)
	v := tg.(*Var)
	assert.Equal(t, "integer", v.TypeString())
	assert.Equal(t, "count", v.Variable)
	assert.Equal(t, "how many", v.Desc)

	tg, err = Parse("property-read", "string $color", ns)
	require.NoError(t, err)
	assert.Equal(t, "property-read", tg.Name())
}

func TestParseGeneric(t *testing.T) {
	tg, err := Parse("author", "Jane Doe <jane@example.com>", ns)
	require.NoError(t, err)
	g := tg.(*Generic)
	assert.Equal(t, "author", g.Name())
	assert.Equal(t, "Jane Doe <jane@example.com>", g.Description())
	assert.Empty(t, g.TypeString())
}

func TestParseUnterminatedInline(t *testing.T) {
	_, err := Parse("return", "string see {@link Foo", ns)
	require.Error(t, err)

	tg, err := Parse("return", "string see {@link Foo}", ns)
	require.NoError(t, err)
	assert.Equal(t, "see {@link Foo}", tg.Description())
}
