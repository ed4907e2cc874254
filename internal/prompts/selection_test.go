package prompts

import (
	"encoding/json"
	"testing"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParseSelection(t *testing.T) {
	tests := []struct {
		in   string
		want Selection
	}{
		{
			in:   "paint",
			want: Selection{Request: Request{Category: models.CategoryPaint}},
		},
		{
			in:   "Paint:color=Cherry Red, part=hood",
			want: Selection{Request: Request{Category: models.CategoryPaint, Color: "Cherry Red", Part: "hood"}},
		},
		{
			in:   "wheels:w2",
			want: Selection{Request: Request{Category: models.CategoryWheels, Preset: "w2"}},
		},
		{
			in:   "wheels:mode=color,hex=#FFD700",
			want: Selection{Request: Request{Category: models.CategoryWheels, Mode: "color", Hex: "#FFD700"}},
		},
		{
			in:   "bodykit:b1,color=red",
			want: Selection{Request: Request{Category: models.CategoryBodyKit, Preset: "b1", Color: "red"}},
		},
		{
			in:   "graphics:text=flames, orange and yellow",
			want: Selection{Request: Request{Category: models.CategoryGraphics, Text: "flames, orange and yellow"}},
		},
		{
			in:   "background:display=Beach,instruction=put the car on a beach, at sunset",
			want: Selection{Request: Request{Category: models.CategoryBackground}, DisplayValue: "Beach", Instruction: "put the car on a beach, at sunset"},
		},
		{
			in:   ":instruction=add a roof rack",
			want: Selection{Instruction: "add a roof rack"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSelection(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSelectionErrors(t *testing.T) {
	for _, in := range []string{"", "   ", "paint:shade=red", ":"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSelection(in)
			assert.Error(t, err)
		})
	}
}

func TestResolve(t *testing.T) {
	c := Default()

	mod, err := c.Resolve(Selection{Instruction: "  add a roof rack  "})
	require.NoError(t, err)
	assert.Equal(t, models.Modification{DisplayValue: "add a roof rack", Instruction: "add a roof rack"}, mod)

	mod, err = c.Resolve(Selection{Request: Request{Category: models.CategoryBackground}, DisplayValue: "Beach", Instruction: "beach"})
	require.NoError(t, err)
	assert.Equal(t, "Beach", mod.DisplayValue)
	assert.Equal(t, models.CategoryBackground, mod.Category)

	mod, err = c.Resolve(Selection{Request: Request{Category: models.CategoryWheels, Preset: "w1"}})
	require.NoError(t, err)
	assert.Equal(t, c.Build(Request{Category: models.CategoryWheels, Preset: "w1"}), mod)

	_, err = c.Resolve(Selection{})
	assert.ErrorIs(t, err, ErrNoSelection)

	_, err = c.Resolve(Selection{Request: Request{Category: models.CategoryGraphics, Text: " "}})
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestSelectionDecoding(t *testing.T) {
	var fromJSON Selection
	require.NoError(t, json.Unmarshal([]byte(`{"category":"paint","color":"Midnight Blue","part":"roof"}`), &fromJSON))
	assert.Equal(t, Request{Category: models.CategoryPaint, Color: "Midnight Blue", Part: "roof"}, fromJSON.Request)

	var fromYAML Selection
	require.NoError(t, yaml.Unmarshal([]byte("category: graphics\ntext: racing stripes\n"), &fromYAML))
	assert.Equal(t, Request{Category: models.CategoryGraphics, Text: "racing stripes"}, fromYAML.Request)
}
