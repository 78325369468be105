package units

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var quantityPattern = regexp.MustCompile(`^([\d./]+)\s*(\D*)`)

// Amount is a quantity value. When the source cell could not be read as a
// number, Numeric is false and Raw holds the original text.
type Amount struct {
	Value   float64
	Raw     string
	Numeric bool
}

// Number returns a numeric amount.
func Number(v float64) Amount {
	return Amount{Value: v, Numeric: true}
}

// Text returns a non-numeric amount carrying the raw cell text.
func Text(raw string) Amount {
	return Amount{Raw: raw}
}

func (a Amount) String() string {
	if !a.Numeric {
		return a.Raw
	}
	return strconv.FormatFloat(a.Value, 'f', -1, 64)
}

// Add sums two numeric amounts. A non-numeric operand leaves a unchanged.
func (a Amount) Add(b Amount) Amount {
	if !a.Numeric || !b.Numeric {
		return a
	}
	return Number(a.Value + b.Value)
}

// MarshalJSON writes a number, or the raw text as a string.
func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.Numeric {
		return json.Marshal(a.Raw)
	}
	return json.Marshal(a.Value)
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case float64:
		*a = Number(t)
	case string:
		if f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", "."), 64); err == nil {
			*a = Number(f)
			return nil
		}
		*a = Text(t)
	case nil:
		*a = Amount{}
	default:
		return fmt.Errorf("unsupported quantity %s", string(data))
	}
	return nil
}

// Quantity is a parsed quantity cell.
type Quantity struct {
	Amount Amount
	Unit   Unit
}

// Parse reads a free-text quantity cell such as "200 g", "1/2 taza" or "3".
//
// A leading integer, decimal or a/b fraction becomes the amount and the
// trailing text is mapped through Canonical. Cells without a numeric prefix,
// or whose numeric token cannot be evaluated, come back verbatim with the
// Default unit. Parse never fails.
func Parse(raw string) Quantity {
	text := strings.TrimSpace(raw)
	m := quantityPattern.FindStringSubmatch(text)
	if m == nil {
		return Quantity{Amount: Text(text), Unit: Default}
	}

	v, ok := evaluate(m[1])
	if !ok {
		return Quantity{Amount: Text(text), Unit: Default}
	}
	return Quantity{Amount: Number(v), Unit: Canonical(m[2])}
}

// evaluate handles the integer, decimal and integer-fraction forms only.
func evaluate(token string) (float64, bool) {
	if num, den, found := strings.Cut(token, "/"); found {
		n, err := strconv.Atoi(num)
		if err != nil || n < 0 {
			return 0, false
		}
		d, err := strconv.Atoi(den)
		if err != nil || d <= 0 {
			return 0, false
		}
		return float64(n) / float64(d), true
	}

	if strings.Contains(token, ".") {
		f, err := strconv.ParseFloat(token, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return float64(n), true
}
