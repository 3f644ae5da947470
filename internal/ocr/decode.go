package ocr

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// PNGDataURLPrefix is the only data URL prefix stripped before decoding
const PNGDataURLPrefix = "data:image/png;base64,"

var (
	// ErrEmptyImage is returned when there are no image bytes to recognize
	ErrEmptyImage = errors.New("empty image")
	// ErrInvalidBase64 is returned when the payload is not base64
	ErrInvalidBase64 = errors.New("invalid base64 image data")
)

// DecodeImageBase64 strips an optional "data:image/png;base64," prefix and
// decodes the rest. Padded and unpadded input in either the standard or the
// URL-safe alphabet is accepted, and embedded line breaks are ignored. Any
// other data URL prefix is left in place and fails decoding.
func DecodeImageBase64(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, PNGDataURLPrefix)
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		case '-':
			return '+'
		case '_':
			return '/'
		}
		return r
	}, s)
	if s == "" {
		return nil, ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		var rawErr error
		data, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
		if rawErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidBase64, err)
		}
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	return data, nil
}
