package units

import "strings"

// Unit is a canonical unit tag, as stored in the unit_type column of the recipes database.
type Unit string

const (
	Gramo       Unit = "gramo"
	Mililitro   Unit = "mililitro"
	Unidad      Unit = "unidad"
	Cucharadita Unit = "cucharadita"
	Cucharada   Unit = "cucharada"
	Sobre       Unit = "sobre"
	Rebanada    Unit = "rebanada"
	Vaso        Unit = "vaso"
	Pizca       Unit = "pizca"
	Litro       Unit = "litro"
	Hoja        Unit = "hoja"
)

// Default is the unit assigned to unmapped, empty or unparseable unit text.
const Default = Unidad

var synonyms = map[string]Unit{
	"g":            Gramo,
	"gr":           Gramo,
	"gramo":        Gramo,
	"gramos":       Gramo,
	"ml":           Mililitro,
	"mililitro":    Mililitro,
	"mililitros":   Mililitro,
	"unidad":       Unidad,
	"unidades":     Unidad,
	"ud":           Unidad,
	"uds":          Unidad,
	"cucharadita":  Cucharadita,
	"cucharaditas": Cucharadita,
	"cucharada":    Cucharada,
	"cucharadas":   Cucharada,
	"sobre":        Sobre,
	"sobres":       Sobre,
	"rebanada":     Rebanada,
	"rebanadas":    Rebanada,
	"vaso":         Vaso,
	"vasos":        Vaso,
	"pizca":        Pizca,
	"pizcas":       Pizca,
	"litro":        Litro,
	"litros":       Litro,
	"l":            Litro,
	"hoja":         Hoja,
	"hojas":        Hoja,
}

// Canonical maps raw unit text onto the closed unit enumeration.
// Matching is exact after lower-casing and trimming; anything else is Default.
func Canonical(text string) Unit {
	if u, ok := synonyms[strings.ToLower(strings.TrimSpace(text))]; ok {
		return u
	}
	return Default
}

// All returns every canonical unit.
func All() []Unit {
	return []Unit{Gramo, Mililitro, Unidad, Cucharadita, Cucharada, Sobre, Rebanada, Vaso, Pizca, Litro, Hoja}
}

var singulars = map[string]string{
	"unidades":     "unidad",
	"dientes":      "diente",
	"cucharadas":   "cucharada",
	"cucharaditas": "cucharadita",
	"tazas":        "taza",
	"pizcas":       "pizca",
	"gramos":       "gramo",
	"mililitros":   "mililitro",
	"kilos":        "kilo",
	"litros":       "litro",
	"hojas":        "hoja",
	"ramitas":      "ramita",
	"latas":        "lata",
	"paquetes":     "paquete",
	"manojos":      "manojo",
	"filetes":      "filete",
	"medallones":   "medallón",
	"rodajas":      "rodaja",
	"lonchas":      "loncha",
}

// Singular returns the singular spelling of a free-text unit word.
// Unlike Canonical it keeps units outside the enumeration ("diente", "taza").
func Singular(unit string) string {
	unit = strings.TrimSpace(unit)
	if s, ok := singulars[unit]; ok {
		return s
	}
	return unit
}
