package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Tier is one purchasable ticket type. Price keeps the display form
// ("₹999"); UnitPrice is the parsed value in major currency units.
type Tier struct {
	ID        string `yaml:"id" json:"id"`
	Name      string `yaml:"name" json:"name"`
	Price     string `yaml:"price" json:"price"`
	UnitPrice int64  `yaml:"-" json:"unitPrice"`
}

type Catalog struct {
	Title    string  `yaml:"title" json:"title"`
	Slug     string  `yaml:"slug" json:"slug"`
	Date     string  `yaml:"date" json:"date"`
	Location string  `yaml:"location" json:"location"`
	Currency string  `yaml:"currency" json:"currency"`
	Tickets  []*Tier `yaml:"tickets" json:"tickets"`

	byID map[string]*Tier
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads the catalog from path, or the compiled-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Tickets) == 0 {
		return nil, errors.New("catalog has no ticket tiers")
	}
	if c.Currency == "" {
		c.Currency = "INR"
	}

	c.byID = make(map[string]*Tier, len(c.Tickets))
	for _, t := range c.Tickets {
		if t.ID == "" {
			return nil, errors.New("catalog tier missing id")
		}
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog tier %q", t.ID)
		}
		price, err := ParsePrice(t.Price)
		if err != nil {
			return nil, fmt.Errorf("tier %s: %w", t.ID, err)
		}
		t.UnitPrice = price
		c.byID[t.ID] = t
	}
	return &c, nil
}

// Tier looks up a tier by id.
func (c *Catalog) Tier(id string) (*Tier, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// ParsePrice keeps only the digits of a display price, so "₹2,199" is 2199.
func ParsePrice(display string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, display)
	if digits == "" {
		return 0, fmt.Errorf("price %q has no digits", display)
	}
	return strconv.ParseInt(digits, 10, 64)
}
