package units

import (
	"fmt"
	"strings"
)

var (
	weightUnits = map[string]bool{"g": true, "gr": true, "grs": true, "gramos": true, "gramo": true, "kg": true, "kilogramo": true, "kilogramos": true}
	volumeUnits = map[string]bool{"ml": true, "mililitro": true, "mililitros": true, "l": true, "litro": true, "litros": true}
	countUnits  = map[string]bool{"unidad": true, "unidades": true, "ud": true, "uds": true}
	otherUnits  = map[string]bool{"hoja": true, "pizca": true, "cucharada": true, "cucharadita": true, "rebanada": true}
)

// FormatQuantity renders an amount for display, always in grams and mL for
// weights and volumes.
func FormatQuantity(a Amount, unit string) string {
	if !a.Numeric {
		return fmt.Sprintf("%s %s", a.Raw, unit)
	}

	qty := a.Value
	u := strings.ToLower(unit)
	switch {
	case weightUnits[u]:
		if strings.HasPrefix(u, "k") {
			qty *= 1000
		}
		return fmt.Sprintf("%d gramo", int(qty))
	case volumeUnits[u]:
		if strings.HasPrefix(u, "l") {
			qty *= 1000
		}
		return fmt.Sprintf("%d mL", int(qty))
	case countUnits[u]:
		if qty == 1 {
			return "1 unidad"
		}
		return fmt.Sprintf("%d unidades", int(qty))
	case otherUnits[u]:
		return fmt.Sprintf("%d %s", int(qty), u)
	}
	return fmt.Sprintf("%s %s", a.String(), unit)
}

// FormatNutrition renders one nutrition value with its unit. Unknown keys
// are returned as the plain number.
func FormatNutrition(key string, value float64) string {
	switch key {
	case "energy_kj":
		return fmt.Sprintf("%d kJ", int(value))
	case "calories":
		return fmt.Sprintf("%d kcal", int(value))
	case "fats", "saturated_fats", "carbohydrates", "sugars", "fiber", "proteins":
		return fmt.Sprintf("%.1f g", value)
	}
	return Number(value).String()
}
