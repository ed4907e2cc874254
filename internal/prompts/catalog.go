package prompts

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Color is a paint preset
type Color struct {
	Name   string `yaml:"name" json:"name"`
	Hex    string `yaml:"hex" json:"hex"`
	Prompt string `yaml:"prompt" json:"prompt"`
}

// Option is a selectable preset with a fixed prompt
type Option struct {
	Label       string `yaml:"label" json:"label"`
	Value       string `yaml:"value" json:"value"`
	Prompt      string `yaml:"prompt" json:"prompt"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Catalog holds every preset offered by the control panel
type Catalog struct {
	Colors      []Color  `yaml:"colors" json:"colors"`
	Parts       []Option `yaml:"parts" json:"parts"`
	Wheels      []Option `yaml:"wheels" json:"wheels"`
	BodyKits    []Option `yaml:"bodykits" json:"bodykits"`
	Vinyls      []Option `yaml:"vinyls" json:"vinyls"`
	Backgrounds []Option `yaml:"backgrounds" json:"backgrounds"`
}

var defaultCatalog = mustParseCatalog(catalogYAML)

// Default returns the built-in preset catalog
func Default() *Catalog {
	return defaultCatalog
}

// ParseCatalog decodes a catalog from YAML
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(c.Colors) == 0 {
		return nil, fmt.Errorf("catalog has no colors")
	}
	return &c, nil
}

func mustParseCatalog(data []byte) *Catalog {
	c, err := ParseCatalog(data)
	if err != nil {
		panic(err)
	}
	return c
}

// YAML renders the catalog for display
func (c *Catalog) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c *Catalog) color(key string) (Color, bool) {
	key = strings.TrimSpace(key)
	for _, col := range c.Colors {
		if strings.EqualFold(col.Name, key) || strings.EqualFold(col.Prompt, key) || strings.EqualFold(col.Hex, key) {
			return col, true
		}
	}
	return Color{}, false
}

func findOption(options []Option, key string) (Option, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Option{}, false
	}
	for _, opt := range options {
		if strings.EqualFold(opt.Value, key) || strings.EqualFold(opt.Label, key) {
			return opt, true
		}
	}
	return Option{}, false
}
