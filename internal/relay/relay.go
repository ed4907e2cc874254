package relay

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
	"github.com/lehigh-university-libraries/carcustomizer/internal/providers"
)

const (
	providerName = "relay"
	// Path is where the relay endpoint is mounted
	Path = "/api/generate"
)

// Request is the relay endpoint's JSON body
type Request struct {
	Instruction string `json:"instruction"`
	ImageBase64 string `json:"image_base64"`
	MIMEType    string `json:"mime_type,omitempty"`
}

// Response is the relay endpoint's success body
type Response struct {
	ImageBase64 string `json:"image_base64"`
	MIMEType    string `json:"mime_type,omitempty"`
}

// ErrorResponse is the relay endpoint's failure body
type ErrorResponse struct {
	Error string `json:"error"`
}

// Client sends edit requests through a relay endpoint
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a relay client for the server at baseURL
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

func (c *Client) Edit(ctx context.Context, img models.Image, instruction string) (models.Image, error) {
	requestBody, err := json.Marshal(Request{
		Instruction: instruction,
		ImageBase64: base64.StdEncoding.EncodeToString(img.Data),
		MIMEType:    img.MIMEType,
	})
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.BaseURL+Path, bytes.NewBuffer(requestBody))
	if err != nil {
		return models.Image{}, fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return models.Image{}, providers.TransportError(providerName, fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var errResp ErrorResponse
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return models.Image{}, providers.TransportError(providerName, fmt.Errorf("received status %d: %s", resp.StatusCode, errResp.Error))
		}
		return models.Image{}, providers.TransportError(providerName, fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var response Response
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return models.Image{}, providers.TransportError(providerName, fmt.Errorf("failed to decode response body: %w", err))
	}

	return providers.DecodeBase64Image(providerName, response.ImageBase64, response.MIMEType)
}
