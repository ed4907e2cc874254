package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/providers"
)

const (
	providerName   = "openai"
	DefaultModel   = "gpt-image-1"
	defaultBaseURL = "https://api.openai.com/v1"
)

// OpenAI is a provider for the OpenAI image edit endpoint
type OpenAI struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// New returns a new OpenAI provider
func New(config providers.Config) (*OpenAI, error) {
	apiKey := config.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}

	o := &OpenAI{
		apiKey:     apiKey,
		model:      config.Model,
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: config.Timeout},
	}
	if o.model == "" {
		o.model = DefaultModel
	}
	if o.baseURL == "" {
		o.baseURL = defaultBaseURL
	}
	return o, nil
}

// Edit uploads the image with the instruction and returns the first edited image
func (o *OpenAI) Edit(ctx context.Context, img models.Image, instruction string) (models.Image, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	if err := form.WriteField("model", o.model); err != nil {
		return models.Image{}, fmt.Errorf("failed to write model field: %w", err)
	}
	if err := form.WriteField("prompt", instruction); err != nil {
		return models.Image{}, fmt.Errorf("failed to write prompt field: %w", err)
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="car`+img.Extension()+`"`)
	header.Set("Content-Type", img.MIMEType)
	part, err := form.CreatePart(header)
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return models.Image{}, fmt.Errorf("failed to write image part: %w", err)
	}
	if err := form.Close(); err != nil {
		return models.Image{}, fmt.Errorf("failed to close multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/images/edits", &body)
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return models.Image{}, providers.TransportError(providerName, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return models.Image{}, providers.TransportError(providerName, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body)))
	}

	var response struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
		} `json:"data"`
		OutputFormat string `json:"output_format"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return models.Image{}, providers.TransportError(providerName, fmt.Errorf("failed to decode response body: %w", err))
	}

	if len(response.Data) == 0 || response.Data[0].B64JSON == "" {
		return models.Image{}, providers.NoImageError(providerName, "no images returned from OpenAI")
	}

	declared := ""
	if response.OutputFormat != "" {
		declared = "image/" + response.OutputFormat
	}
	return providers.DecodeBase64Image(providerName, response.Data[0].B64JSON, declared)
}
