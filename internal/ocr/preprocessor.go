package ocr

import (
	"bytes"
	"image"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
)

// Preprocessor enhances images before OCR: downscale oversized images,
// grayscale, contrast stretch and a light sharpen
type Preprocessor struct {
	maxDimension int
	maxPixels    int
	contrast     float64
	sharpen      float64
}

// defaultMaxPixels caps the decoded size of images the preprocessor will
// touch. Larger images go to the engine untouched.
const defaultMaxPixels = 40_000_000

// NewPreprocessor creates a new image preprocessor with the default pipeline
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		maxDimension: 2000,
		maxPixels:    defaultMaxPixels,
		contrast:     20,
		sharpen:      0.5,
	}
}

// Process applies the pipeline and returns PNG bytes. Images that cannot be
// decoded, or whose header declares more than maxPixels, are returned
// unchanged so the engine can still try them.
func (p *Preprocessor) Process(imageData []byte) []byte {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(imageData))
	if err != nil {
		log.Debug().Err(err).Msg("preprocess: unknown image header, using original image")
		return imageData
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(p.maxPixels) {
		log.Debug().
			Str("format", format).
			Int("width", cfg.Width).
			Int("height", cfg.Height).
			Msg("preprocess: image above pixel budget, using original image")
		return imageData
	}

	img, err := imaging.Decode(bytes.NewReader(imageData), imaging.AutoOrientation(true))
	if err != nil {
		log.Debug().Err(err).Msg("preprocess: decode failed, using original image")
		return imageData
	}

	b := img.Bounds()
	if b.Dx() > p.maxDimension || b.Dy() > p.maxDimension {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
	}
	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, p.contrast)
	gray = imaging.Sharpen(gray, p.sharpen)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		log.Debug().Err(err).Msg("preprocess: encode failed, using original image")
		return imageData
	}

	log.Debug().
		Int("in_bytes", len(imageData)).
		Int("out_bytes", buf.Len()).
		Msg("preprocess: image enhanced")
	return buf.Bytes()
}
