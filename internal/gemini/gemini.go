package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/providers"
	"google.golang.org/api/option"
)

const (
	providerName = "gemini"
	DefaultModel = "gemini-2.5-flash-image"
)

// Gemini edits images with a hosted Gemini image model
type Gemini struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// New returns a new Gemini provider
func New(ctx context.Context, config providers.Config) (*Gemini, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	model := config.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create new gemini client: %w", err)
	}

	return &Gemini{client: client, model: model, timeout: config.Timeout}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// Edit sends the image and instruction to Gemini and returns the first image part of the reply
func (g *Gemini) Edit(ctx context.Context, img models.Image, instruction string) (models.Image, error) {
	slog.Debug("Applying modification", "provider", providerName, "model", g.model, "mime_type", img.MIMEType, "bytes", len(img.Data))

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	model := g.client.GenerativeModel(g.model)
	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: img.MIMEType, Data: img.Data},
		genai.Text(instruction),
	)
	if err != nil {
		return models.Image{}, providers.TransportError(providerName, fmt.Errorf("failed to generate content: %w", err))
	}

	return imageFromResponse(resp)
}

// imageFromResponse picks the first inline image of the first candidate.
// Any text the model produced instead is kept as the failure detail.
func imageFromResponse(resp *genai.GenerateContentResponse) (models.Image, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return models.Image{}, providers.NoImageError(providerName, "no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return models.Image{}, providers.NoImageError(providerName, "empty content returned from Gemini")
	}

	var text []string
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Blob:
			if len(p.Data) == 0 {
				continue
			}
			mimeType := p.MIMEType
			if mimeType == "" {
				mimeType = "image/png"
			}
			return models.Image{Data: p.Data, MIMEType: mimeType}, nil
		case genai.Text:
			text = append(text, string(p))
		}
	}

	slog.Warn("No image part found in the Gemini response", "text", strings.Join(text, " "))
	return models.Image{}, providers.NoImageError(providerName, strings.TrimSpace(strings.Join(text, " ")))
}
