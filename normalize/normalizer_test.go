package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"liora/catalog"
)

func TestNormalize(t *testing.T) {
	n := New(catalog.Default())

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plural alias", input: "Zanahorias", want: "Zanahoria"},
		{name: "prep word", input: "Queso parmesano rallado", want: "Queso parmesano"},
		{name: "plural prep word and spacing", input: "  AJOS   picados ", want: "Ajo"},
		{name: "multi word prep phrase", input: "Tomate en rodajas", want: "Tomate"},
		{name: "leading prefix", input: "rodajas de tomate", want: "Tomate"},
		{name: "prefix and prep word", input: "Filetes de merluza frescos", want: "Merluza"},
		{name: "feminine plural kept", input: "Lentejas", want: "Lentejas"},
		{name: "exact alias", input: "Cebolleta", want: "Cebolla"},
		{name: "alias to multi word name", input: "apio", want: "Tallo de apio"},
		{name: "partial alias", input: "Pimientos", want: "Pimiento rojo"},
		{name: "alias target untouched", input: "pimiento rojo", want: "Pimiento rojo"},
		{name: "decomposed accents", input: "Cre\u0300me", want: "Cr\u00e8me"},
		{name: "accented plural", input: "Espárragos", want: "Espárrago"},
		{name: "only prep words", input: "fresco picado", want: ""},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	cat := catalog.Default()
	n := New(cat)

	inputs := []string{
		"Zanahorias ralladas", "ajos", "Ajo picado", "cebollas frescas", "Dientes de ajo",
		"trozos de pollo", "Salsas", "mousse", "Pimientos en juliana", "filetes de salmón en dados",
		"rallado de queso", "Ñoras", "  espinacas   frescas ",
	}
	for _, item := range cat.Items() {
		inputs = append(inputs, item.Name)
	}
	for _, a := range cat.Aliases() {
		inputs = append(inputs, a.Alias, a.Name)
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestNormalize_SkipsEmptyAliasTargets(t *testing.T) {
	cat := catalog.New(
		[]catalog.Category{{Name: "Verduras", Ingredients: []string{"Tomate"}}},
		[]catalog.Alias{{Alias: "rodajas de", Name: ""}, {Alias: "tomates", Name: "tomate"}},
	)
	n := New(cat)

	assert.Equal(t, "Tomate", n.Normalize("rodajas de tomate"))
	assert.Equal(t, "Pepino", n.Normalize("pepinos"))
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Ñame", Capitalize("ñame"))
	assert.Equal(t, "Ávila", Capitalize("ávila"))
	assert.Equal(t, "", Capitalize(""))
}

func TestRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{a: "Zanahoria", b: "zanahoria", want: 1},
		{a: "abcd", b: "wxyz", want: 0},
		{a: "", b: "", want: 1},
		{a: "Parmesano", b: "Queso parmesano", want: 0.75},
		{a: "queso parmesana", b: "Queso parmesano", want: 28.0 / 30.0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.InDelta(t, tt.want, Ratio(tt.a, tt.b), 1e-9)
		})
	}
}
