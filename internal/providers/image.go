package providers

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/lehigh-university-libraries/carcustomizer/internal/models"
)

// DecodeBase64Image turns a base64 payload returned by provider into an
// image, sniffing the MIME type when none was declared. Data URLs are
// accepted. Payloads that are not images are reported as ErrNoImage.
func DecodeBase64Image(provider, encoded, declared string) (models.Image, error) {
	if encoded == "" {
		return models.Image{}, NoImageError(provider, "")
	}
	if i := strings.Index(encoded, ";base64,"); i >= 0 && strings.HasPrefix(encoded, "data:") {
		if declared == "" {
			declared = strings.TrimPrefix(encoded[:i], "data:")
		}
		encoded = encoded[i+len(";base64,"):]
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return models.Image{}, NoImageError(provider, fmt.Sprintf("invalid base64 image: %v", err))
	}

	detected := mimetype.Detect(data)
	if !strings.HasPrefix(detected.String(), "image/") {
		return models.Image{}, NoImageError(provider, "payload is "+detected.String())
	}

	mimeType := declared
	if mimeType == "" {
		mimeType = detected.String()
	}
	return models.Image{Data: data, MIMEType: mimeType}, nil
}
