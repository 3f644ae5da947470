//go:build !cgo

package tesseract

import "context"

// Engine is a stand-in that fails every call when cgo is disabled
type Engine struct{}

// New returns the stand-in engine
func New() *Engine {
	return &Engine{}
}

// Name returns the engine identifier
func (e *Engine) Name() string { return Name }

// Recognize always fails with ErrUnavailable
func (e *Engine) Recognize(ctx context.Context, image []byte, language string) (string, error) {
	return "", ErrUnavailable
}

// Version always fails with ErrUnavailable
func (e *Engine) Version(ctx context.Context) (string, error) {
	return "", ErrUnavailable
}
