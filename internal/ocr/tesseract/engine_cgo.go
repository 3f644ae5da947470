//go:build cgo

package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// Engine implements ocr.Engine using the gosseract client
type Engine struct {
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed OCR engine
func New() *Engine {
	return &Engine{clientFactory: gosseract.NewClient}
}

// Name returns the engine identifier
func (e *Engine) Name() string { return Name }

// Recognize performs OCR on the image bytes. gosseract cannot be
// interrupted, so ctx is only checked before the call starts.
func (e *Engine) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c := e.clientFactory()
	defer c.Close()

	if language != "" {
		if err := c.SetLanguage(language); err != nil {
			return "", fmt.Errorf("failed to set language: %w", err)
		}
	}
	if err := c.SetImageFromBytes(image); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}

// Version returns the linked libtesseract version
func (e *Engine) Version(ctx context.Context) (string, error) {
	return gosseract.Version(), nil
}
