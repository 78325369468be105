package convert

import (
	"encoding/json"
	"fmt"
	"io"

	"liora"
)

// WriteJSON writes the recipes as an indented UTF-8 array.
func WriteJSON(w io.Writer, recipes []liora.Recipe) error {
	if recipes == nil {
		recipes = []liora.Recipe{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(recipes); err != nil {
		return fmt.Errorf("encode recipes: %w", err)
	}
	return nil
}

// ReadJSON reads what WriteJSON wrote.
func ReadJSON(r io.Reader) ([]liora.Recipe, error) {
	var recipes []liora.Recipe
	if err := json.NewDecoder(r).Decode(&recipes); err != nil {
		return nil, fmt.Errorf("decode recipes: %w", err)
	}
	return recipes, nil
}
