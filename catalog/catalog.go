package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyName       = errors.New("empty ingredient name")
)

// Category is a named, ordered list of canonical ingredient names.
type Category struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// Alias maps a lowercase variant spelling onto a canonical name.
type Alias struct {
	Alias string `json:"alias"`
	Name  string `json:"name"`
}

// Entry is a new ingredient proposed for the catalog.
type Entry struct {
	Name     string   `json:"name"`
	Category string   `json:"category"`
	Aliases  []string `json:"aliases"`
}

// Item is one (category, name) pair of the catalog.
type Item struct {
	Category string
	Name     string
}

type document struct {
	Categories []Category `json:"categories"`
	Aliases    []Alias    `json:"aliases"`
}

// Catalog holds the ingredient vocabulary and its alias table.
// Declaration order is preserved everywhere; lookups that can match more
// than one entry return the first one declared.
type Catalog struct {
	mu         sync.RWMutex
	categories []Category
	index      map[string]int
	aliases    []Alias
	aliasIndex map[string]int
	targets    map[string]bool
}

// New builds a catalog, dropping duplicate names inside a category.
func New(categories []Category, aliases []Alias) *Catalog {
	c := &Catalog{
		index:      make(map[string]int, len(categories)),
		aliasIndex: make(map[string]int, len(aliases)),
		targets:    make(map[string]bool, len(aliases)),
	}

	for _, cat := range categories {
		name := strings.TrimSpace(cat.Name)
		if name == "" {
			continue
		}
		i, ok := c.index[name]
		if !ok {
			i = len(c.categories)
			c.index[name] = i
			c.categories = append(c.categories, Category{Name: name, Ingredients: make([]string, 0, len(cat.Ingredients))})
		}
		for _, ing := range cat.Ingredients {
			ing = strings.TrimSpace(ing)
			if ing == "" || slices.Contains(c.categories[i].Ingredients, ing) {
				continue
			}
			c.categories[i].Ingredients = append(c.categories[i].Ingredients, ing)
		}
	}

	for _, a := range aliases {
		c.setAlias(a.Alias, a.Name)
	}
	return c
}

// Decode reads the JSON document produced by Encode.
func Decode(data []byte) (*Catalog, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(doc.Categories, doc.Aliases), nil
}

// Encode returns the catalog as an indented JSON document.
func (c *Catalog) Encode() ([]byte, error) {
	c.mu.RLock()
	doc := document{Categories: c.copyCategories(), Aliases: slices.Clone(c.aliases)}
	c.mu.RUnlock()

	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return []byte(buf.String()), nil
}

func (c *Catalog) Categories() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cat.Name
	}
	return out
}

func (c *Catalog) HasCategory(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.index[name]
	return ok
}

// Ingredients returns a copy of the names declared in category.
func (c *Catalog) Ingredients(category string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[category]
	if !ok {
		return nil
	}
	return slices.Clone(c.categories[i].Ingredients)
}

// Contains reports whether name is declared verbatim in category.
func (c *Catalog) Contains(category, name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.index[category]
	if !ok {
		return false
	}
	return slices.Contains(c.categories[i].Ingredients, name)
}

// CategoryOf returns the first category that declares name.
func (c *Catalog) CategoryOf(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, cat := range c.categories {
		if slices.Contains(cat.Ingredients, name) {
			return cat.Name, true
		}
	}
	return "", false
}

// Items lists every (category, name) pair in declaration order.
func (c *Catalog) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []Item
	for _, cat := range c.categories {
		for _, name := range cat.Ingredients {
			out = append(out, Item{Category: cat.Name, Name: name})
		}
	}
	return out
}

// Snapshot returns a deep copy of the categories.
func (c *Catalog) Snapshot() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.copyCategories()
}

func (c *Catalog) Aliases() []Alias {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.aliases)
}

// Lookup resolves an alias exactly.
func (c *Catalog) Lookup(alias string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.aliasIndex[strings.ToLower(strings.TrimSpace(alias))]
	if !ok {
		return "", false
	}
	return c.aliases[i].Name, true
}

// IsAliasTarget reports whether name is the canonical side of some alias.
func (c *Catalog) IsAliasTarget(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.targets[strings.ToLower(strings.TrimSpace(name))]
}

// Add appends a new ingredient and its aliases. It is the only mutation
// path of the catalog. The category must already exist. Adding a name the
// category already holds only refreshes the aliases; the returned bool
// reports whether the name was appended.
func (c *Catalog) Add(e Entry) (bool, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return false, ErrEmptyName
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[e.Category]
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownCategory, e.Category)
	}

	added := false
	if !slices.Contains(c.categories[i].Ingredients, name) {
		c.categories[i].Ingredients = append(c.categories[i].Ingredients, name)
		added = true
	}
	for _, a := range e.Aliases {
		c.setAlias(a, name)
	}
	return added, nil
}

// setAlias must be called with the write lock held (or during construction).
func (c *Catalog) setAlias(alias, name string) {
	key := strings.ToLower(strings.TrimSpace(alias))
	if key == "" {
		return
	}
	name = strings.TrimSpace(name)
	if i, ok := c.aliasIndex[key]; ok {
		c.aliases[i].Name = name
	} else {
		c.aliasIndex[key] = len(c.aliases)
		c.aliases = append(c.aliases, Alias{Alias: key, Name: name})
	}
	if name != "" {
		c.targets[strings.ToLower(name)] = true
	}
}

func (c *Catalog) copyCategories() []Category {
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = Category{Name: cat.Name, Ingredients: slices.Clone(cat.Ingredients)}
	}
	return out
}
