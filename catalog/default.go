package catalog

import (
	_ "embed"
	"fmt"
)

//go:embed default_catalog.json
var defaultCatalog []byte

// Default returns a fresh copy of the built-in ingredient catalog.
func Default() *Catalog {
	c, err := Decode(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}
