package prompts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
)

const (
	PartFullBody = "full"

	WheelModeStyle = "style"
	WheelModeColor = "color"
)

var ErrEmptyText = errors.New("custom graphics text is empty")

// Request is a control panel selection
type Request struct {
	Category models.Category `json:"category" yaml:"category"`
	// Part is the paint target; empty means full body
	Part  string `json:"part,omitempty" yaml:"part,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty"`
	Hex   string `json:"hex,omitempty" yaml:"hex,omitempty"`
	// Mode selects rim style presets or rim paint for wheels
	Mode   string `json:"mode,omitempty" yaml:"mode,omitempty"`
	Preset string `json:"preset,omitempty" yaml:"preset,omitempty"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Validate reports whether the selection may be applied
func (r Request) Validate() error {
	if r.Category == models.CategoryGraphics && r.Preset == "" && strings.TrimSpace(r.Text) == "" {
		return ErrEmptyText
	}
	return nil
}

// Build turns a selection into a modification using the default catalog
func Build(req Request) models.Modification {
	return Default().Build(req)
}

// Build turns a selection into a modification. It never fails: selections it
// does not recognise fall back to a generic "{prefix} {value}" instruction.
func (c *Catalog) Build(req Request) models.Modification {
	switch req.Category {
	case models.CategoryPaint:
		return c.paint(req)
	case models.CategoryWheels:
		if req.Mode == WheelModeColor || (req.Mode == "" && req.Preset == "" && (req.Color != "" || req.Hex != "")) {
			return c.rims(req)
		}
		return c.preset(req, c.Wheels)
	case models.CategoryBodyKit:
		return c.preset(req, c.BodyKits)
	case models.CategoryGraphics:
		if strings.TrimSpace(req.Text) != "" {
			return models.Modification{
				Category:     req.Category,
				DisplayValue: req.Text,
				Instruction:  req.Text,
			}
		}
		return c.preset(req, c.Vinyls)
	case models.CategoryBackground:
		return c.preset(req, c.Backgrounds)
	}
	return fallback(req)
}

// colorChoice resolves the requested paint. A custom name wins over a hex value.
func (c *Catalog) colorChoice(req Request) (phrase, display string) {
	if req.Color == "" && req.Hex == "" {
		col := c.Colors[0]
		return col.Prompt, col.Name
	}
	if req.Color != "" {
		if col, ok := c.color(req.Color); ok {
			return col.Prompt, col.Name
		}
		return strings.TrimSpace(req.Color), "Custom Color"
	}
	if col, ok := c.color(req.Hex); ok {
		return col.Prompt, col.Name
	}
	return strings.TrimSpace(req.Hex), "Custom Color"
}

func (c *Catalog) paint(req Request) models.Modification {
	phrase, display := c.colorChoice(req)

	part := strings.TrimSpace(req.Part)
	opt, known := findOption(c.Parts, part)
	if part == "" || strings.EqualFold(part, PartFullBody) || (known && opt.Value == PartFullBody) {
		return models.Modification{
			Category:     models.CategoryPaint,
			DisplayValue: display,
			Instruction: fmt.Sprintf("Repaint the entire car body in %s. "+
				"Apply the new paint evenly to every painted exterior panel: the front bumper, the rear bumper, both side skirts, "+
				"all fenders, the hood, the roof, every door, and the trunk lid, leaving no panel in its original color. "+
				"Do not paint non-painted surfaces: keep the glass, headlights, taillights, grille, tires, wheels, trim, and background exactly as they are",
				phrase),
		}
	}

	target, label := part, part
	if known {
		target, label = opt.Prompt, opt.Label
	}
	return models.Modification{
		Category:     models.CategoryPaint,
		DisplayValue: label + " " + display,
		Instruction: fmt.Sprintf("Change the paint color of the car's %s to %s. "+
			"Repaint only the %s and keep every other surface of the car unchanged, including all other body panels. "+
			"Do not alter the glass, lights, grille, tires, or background",
			target, phrase, target),
	}
}

func (c *Catalog) rims(req Request) models.Modification {
	phrase, display := c.colorChoice(req)
	return models.Modification{
		Category:     models.CategoryWheels,
		DisplayValue: "Rims " + display,
		Instruction: fmt.Sprintf("Change the color of the wheel rims to %s. "+
			"Repaint only the metal rims; the tires must stay black rubber, and the body, glass, lights, and background must not change",
			phrase),
	}
}

func (c *Catalog) preset(req Request, options []Option) models.Modification {
	opt, ok := findOption(options, req.Preset)
	if !ok {
		return fallback(req)
	}
	return models.Modification{
		Category:     req.Category,
		DisplayValue: opt.Label,
		Instruction:  opt.Prompt,
	}
}

var prefixes = map[models.Category]string{
	models.CategoryPaint:      "change the car's paint color to",
	models.CategoryWheels:     "change the wheels to",
	models.CategoryBodyKit:    "add a bodykit in the style of",
	models.CategoryGraphics:   "add a vinyl graphic of",
	models.CategoryBackground: "change the background to",
}

func fallback(req Request) models.Modification {
	prefix, ok := prefixes[req.Category]
	if !ok {
		prefix = "modify the car with"
	}

	value := ""
	for _, v := range []string{req.Preset, req.Text, req.Color, req.Hex, req.Part} {
		if strings.TrimSpace(v) != "" {
			value = strings.TrimSpace(v)
			break
		}
	}

	return models.Modification{
		Category:     req.Category,
		DisplayValue: value,
		Instruction:  strings.TrimSpace(prefix + " " + value),
	}
}
