package prompts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
)

var ErrNoSelection = errors.New("category or instruction is required")

// Selection is either a control panel request or, when Instruction is set,
// a ready-made modification
type Selection struct {
	Request      `yaml:",inline"`
	DisplayValue string `json:"display_value,omitempty" yaml:"display_value,omitempty"`
	Instruction  string `json:"instruction,omitempty" yaml:"instruction,omitempty"`
}

// Resolve turns a selection into a modification
func (c *Catalog) Resolve(sel Selection) (models.Modification, error) {
	if instruction := strings.TrimSpace(sel.Instruction); instruction != "" {
		display := strings.TrimSpace(sel.DisplayValue)
		if display == "" {
			display = instruction
		}
		return models.Modification{
			Category:     sel.Category,
			DisplayValue: display,
			Instruction:  instruction,
		}, nil
	}

	if sel.Category == "" {
		return models.Modification{}, ErrNoSelection
	}
	if err := sel.Validate(); err != nil {
		return models.Modification{}, err
	}
	return c.Build(sel.Request), nil
}

// ParseSelection reads the command line form of a selection:
//
//	paint:color=Cherry Red,part=hood
//	wheels:w2
//	graphics:text=Flames, orange and yellow
//
// A bare value after the colon is a preset. text and instruction consume
// the rest of the string so they may contain commas.
func ParseSelection(s string) (Selection, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selection{}, ErrNoSelection
	}

	category, rest, _ := strings.Cut(s, ":")
	sel := Selection{Request: Request{Category: models.Category(strings.ToLower(strings.TrimSpace(category)))}}

	for rest = strings.TrimSpace(rest); rest != ""; rest = strings.TrimSpace(rest) {
		key, value, hasValue := strings.Cut(rest, "=")
		if !hasValue || strings.Contains(key, ",") {
			// bare preset
			var preset string
			preset, rest, _ = strings.Cut(rest, ",")
			sel.Preset = strings.TrimSpace(preset)
			continue
		}

		key = strings.ToLower(strings.TrimSpace(key))
		switch key {
		case "text", "instruction":
			rest = ""
		default:
			value, rest, _ = strings.Cut(value, ",")
		}
		value = strings.TrimSpace(value)

		switch key {
		case "color":
			sel.Color = value
		case "hex":
			sel.Hex = value
		case "part":
			sel.Part = value
		case "mode":
			sel.Mode = value
		case "preset":
			sel.Preset = value
		case "text":
			sel.Text = value
		case "instruction":
			sel.Instruction = value
		case "display":
			sel.DisplayValue = value
		default:
			return Selection{}, fmt.Errorf("unknown selection key %q in %q", key, s)
		}
	}

	if sel.Category == "" && sel.Instruction == "" {
		return Selection{}, ErrNoSelection
	}
	return sel, nil
}
