package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// Catalog maps ticker symbols to their display aliases. The first alias is
// the canonical display name; the lowercased first alias doubles as the
// keyword used for media-trend queries. Loaded once at startup, read-only
// afterwards.
type Catalog struct {
	entries map[string][]string // upper-cased symbol -> aliases
	symbols []string            // original-case symbols, sorted
}

// Load reads the catalog from path, or from the embedded default when path
// is empty.
func Load(path string) (*Catalog, error) {
	raw := embeddedCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read catalog file: %w", err)
		}
		raw = b
	}

	var parsed map[string][]string
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	c := &Catalog{entries: make(map[string][]string, len(parsed))}
	for symbol, aliases := range parsed {
		if len(aliases) == 0 {
			return nil, fmt.Errorf("catalog entry %q has no aliases", symbol)
		}
		c.entries[strings.ToUpper(symbol)] = aliases
		c.symbols = append(c.symbols, symbol)
	}
	sort.Strings(c.symbols)

	return c, nil
}

// Has reports whether the symbol is in the catalog (case-insensitive)
func (c *Catalog) Has(symbol string) bool {
	_, ok := c.entries[strings.ToUpper(symbol)]
	return ok
}

// DisplayName returns the canonical display name for a symbol, falling back
// to the symbol itself for unknown tickers.
func (c *Catalog) DisplayName(symbol string) string {
	if aliases, ok := c.entries[strings.ToUpper(symbol)]; ok {
		return aliases[0]
	}
	return symbol
}

// Keyword returns the lowercased primary alias, used as the search keyword
// against the news-trends service.
func (c *Catalog) Keyword(symbol string) string {
	return strings.ToLower(c.DisplayName(symbol))
}

// Aliases returns every alias registered for a symbol
func (c *Catalog) Aliases(symbol string) []string {
	return c.entries[strings.ToUpper(symbol)]
}

// Symbols returns all catalog symbols in sorted order
func (c *Catalog) Symbols() []string {
	return c.symbols
}
