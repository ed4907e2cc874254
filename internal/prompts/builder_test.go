package prompts

import (
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	assert.Len(t, c.Colors, 10)
	assert.Len(t, c.Wheels, 4)
	assert.Len(t, c.BodyKits, 4)
	assert.Len(t, c.Vinyls, 2)
	assert.Len(t, c.Backgrounds, 4)
	assert.Equal(t, PartFullBody, c.Parts[0].Value)
}

func TestParseCatalogRejectsEmpty(t *testing.T) {
	_, err := ParseCatalog([]byte("parts: []\n"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte("colors: [unterminated"))
	assert.Error(t, err)
}

func TestBuildFullBodyPaint(t *testing.T) {
	for _, part := range []string{"", PartFullBody, "Full Body", "full body"} {
		t.Run("part "+part, func(t *testing.T) {
			mod := Build(Request{Category: models.CategoryPaint, Part: part, Color: "cherry red pearl"})

			assert.Equal(t, models.CategoryPaint, mod.Category)
			assert.Equal(t, "Cherry Red", mod.DisplayValue)
			assert.Contains(t, mod.Instruction, "cherry red pearl")
			for _, panel := range []string{"bumper", "side skirts", "fenders", "hood", "roof", "door"} {
				assert.Contains(t, mod.Instruction, panel)
			}
			for _, kept := range []string{"glass", "headlights", "grille", "tires", "background"} {
				assert.Contains(t, mod.Instruction, kept)
			}
			assert.NotContains(t, mod.Instruction, "Repaint only")
		})
	}
}

func TestBuildPartPaint(t *testing.T) {
	mod := Build(Request{Category: models.CategoryPaint, Part: "front_bumper", Color: "Cherry Red"})

	assert.Equal(t, "Front Bumper Cherry Red", mod.DisplayValue)
	assert.Contains(t, mod.Instruction, "front bumper")
	assert.Contains(t, mod.Instruction, "cherry red pearl")
	assert.Contains(t, mod.Instruction, "every other surface")
	for _, kept := range []string{"glass", "lights", "grille", "tires", "background"} {
		assert.Contains(t, mod.Instruction, kept)
	}
	assert.NotContains(t, mod.Instruction, "roof")
}

func TestBuildPaintColorChoice(t *testing.T) {
	tests := []struct {
		name        string
		req         Request
		wantPhrase  string
		wantDisplay string
	}{
		{
			name:        "defaults to first preset",
			req:         Request{Category: models.CategoryPaint},
			wantPhrase:  "gloss black",
			wantDisplay: "Gloss Black",
		},
		{
			name:        "preset by hex",
			req:         Request{Category: models.CategoryPaint, Hex: "#8A9297"},
			wantPhrase:  "nardo gray",
			wantDisplay: "Nardo Gray",
		},
		{
			name:        "custom name wins over hex",
			req:         Request{Category: models.CategoryPaint, Color: "matte olive green", Hex: "#3b82f6"},
			wantPhrase:  "matte olive green",
			wantDisplay: "Custom Color",
		},
		{
			name:        "custom hex",
			req:         Request{Category: models.CategoryPaint, Hex: "#3b82f6"},
			wantPhrase:  "#3b82f6",
			wantDisplay: "Custom Color",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := Build(tt.req)
			assert.Contains(t, mod.Instruction, tt.wantPhrase)
			assert.Equal(t, tt.wantDisplay, mod.DisplayValue)
		})
	}
}

func TestBuildWheels(t *testing.T) {
	style := Build(Request{Category: models.CategoryWheels, Mode: WheelModeStyle, Preset: "w3"})
	assert.Equal(t, "change the wheels to bronze TE37 style rims", style.Instruction)
	assert.Equal(t, "Bronze TE37 Style", style.DisplayValue)

	rims := Build(Request{Category: models.CategoryWheels, Mode: WheelModeColor, Color: "Chrome"})
	assert.Contains(t, rims.Instruction, "rims")
	assert.Contains(t, rims.Instruction, "mirror-like chrome")
	assert.Contains(t, rims.Instruction, "tires must stay black rubber")
	assert.Equal(t, "Rims Chrome", rims.DisplayValue)

	implied := Build(Request{Category: models.CategoryWheels, Color: "Chrome"})
	assert.Equal(t, rims, implied)
}

func TestBuildPresetsIgnorePartAndColor(t *testing.T) {
	tests := []struct {
		category models.Category
		preset   string
		want     string
	}{
		{models.CategoryBodyKit, "b2", "add an aggressive widebody kit with fender flares"},
		{models.CategoryBackground, "Race Track", "change the background to a professional race track circuit during the day with curbing visible"},
		{models.CategoryGraphics, "v1", "add aggressive dual racing stripes in a contrasting color along the side of the car, following the body lines"},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			plain := Build(Request{Category: tt.category, Preset: tt.preset})
			noisy := Build(Request{Category: tt.category, Preset: tt.preset, Part: "hood", Color: "Chrome"})
			assert.Equal(t, tt.want, plain.Instruction)
			assert.Equal(t, plain, noisy)
		})
	}
}

func TestBuildFreeTextGraphics(t *testing.T) {
	text := "  a gold geometric pattern wrapping around the front bumper "
	mod := Build(Request{Category: models.CategoryGraphics, Text: text})
	assert.Equal(t, text, mod.Instruction)

	require.ErrorIs(t, Request{Category: models.CategoryGraphics, Text: " \t\n"}.Validate(), ErrEmptyText)
	require.ErrorIs(t, Request{Category: models.CategoryGraphics}.Validate(), ErrEmptyText)
	assert.NoError(t, Request{Category: models.CategoryGraphics, Text: text}.Validate())
	assert.NoError(t, Request{Category: models.CategoryGraphics, Preset: "v3"}.Validate())
}

func TestBuildFallback(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{
			name: "unknown wheel preset",
			req:  Request{Category: models.CategoryWheels, Mode: WheelModeStyle, Preset: "gold mesh"},
			want: "change the wheels to gold mesh",
		},
		{
			name: "unknown background",
			req:  Request{Category: models.CategoryBackground, Preset: "a snowy mountain pass"},
			want: "change the background to a snowy mountain pass",
		},
		{
			name: "unknown category",
			req:  Request{Category: "tint", Text: "dark window tint"},
			want: "modify the car with dark window tint",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := Build(tt.req)
			assert.Equal(t, tt.want, mod.Instruction)
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	reqs := []Request{
		{Category: models.CategoryPaint, Part: "roof", Color: "Matte Black"},
		{Category: models.CategoryPaint, Hex: "#123456"},
		{Category: models.CategoryWheels, Mode: WheelModeColor, Color: "Alpine White"},
		{Category: models.CategoryBodyKit, Preset: "b4"},
		{Category: models.CategoryGraphics, Text: "flames"},
		{Category: "unknown", Preset: "x"},
	}

	for _, req := range reqs {
		first := Build(req)
		for i := 0; i < 5; i++ {
			again := Build(req)
			if again != first {
				t.Fatalf("Expected identical output for %+v, got %q then %q", req, first.Instruction, again.Instruction)
			}
		}
		assert.False(t, strings.HasSuffix(first.Instruction, " "))
	}
}
