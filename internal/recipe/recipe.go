package recipe

import (
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/prompts"
	"gopkg.in/yaml.v3"
)

// Recipe is a batch edit: which photos to load and the modifications to
// apply to them, in order
//
//	views:
//	  front: ./photos/front.jpg
//	  rear: https://example.com/rear.png
//	steps:
//	  - category: paint
//	    color: Cherry Red
//	  - category: wheels
//	    preset: w2
//	  - instruction: add a roof rack
type Recipe struct {
	Views map[models.ViewID]string `yaml:"views"`
	Steps []prompts.Selection      `yaml:"steps"`
}

// Load reads a recipe file
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recipe: %w", err)
	}
	return Parse(data)
}

// Parse decodes a recipe and checks its view names
func Parse(data []byte) (*Recipe, error) {
	var r Recipe
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse recipe: %w", err)
	}
	for id := range r.Views {
		if !id.Valid() {
			return nil, fmt.Errorf("unknown view %q in recipe (want front, side or rear)", id)
		}
	}
	return &r, nil
}

// Merge overlays command line sources and selections on the recipe.
// Non-empty sources replace the recipe's; selections run after its steps.
func (r *Recipe) Merge(sources map[models.ViewID]string, selections []prompts.Selection) {
	if r.Views == nil {
		r.Views = make(map[models.ViewID]string)
	}
	for id, src := range sources {
		if src != "" {
			r.Views[id] = src
		}
	}
	r.Steps = append(r.Steps, selections...)
}
