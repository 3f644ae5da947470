package ocr

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodeTestPNG creates a colored test image and returns its PNG encoding
func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 5), 40, uint8(y * 7), 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPreprocessor_Grayscale(t *testing.T) {
	out := NewPreprocessor().Process(encodeTestPNG(t, 50, 40))

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 40, img.Bounds().Dy())

	r, g, b, _ := img.At(25, 20).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestPreprocessor_Downscale(t *testing.T) {
	p := NewPreprocessor()
	p.maxDimension = 64

	out := p.Process(encodeTestPNG(t, 256, 128))

	img, err := imaging.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 32, img.Bounds().Dy())
}

func TestPreprocessor_UndecodableReturnsOriginal(t *testing.T) {
	in := []byte("definitely not an image")
	assert.Equal(t, in, NewPreprocessor().Process(in))
}

// pngHeader returns a PNG signature and IHDR chunk declaring width x height
// 8-bit grayscale, with no pixel data behind it
func pngHeader(width, height uint32) []byte {
	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], width)
	binary.BigEndian.PutUint32(ihdr[4:8], height)
	ihdr[8] = 8 // bit depth; color type, compression, filter, interlace stay 0

	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")
	binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	chunk := append([]byte("IHDR"), ihdr...)
	buf.Write(chunk)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestPreprocessor_PixelBudget(t *testing.T) {
	in := encodeTestPNG(t, 40, 30)

	p := NewPreprocessor()
	p.maxPixels = 40*30 - 1
	assert.Equal(t, in, p.Process(in), "over budget must skip decoding")

	p.maxPixels = 40 * 30
	assert.NotEqual(t, in, p.Process(in), "at budget must be processed")
}

func TestPreprocessor_HugeDeclaredDimensions(t *testing.T) {
	in := pngHeader(60000, 60000)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(in))
	require.NoError(t, err)
	require.Equal(t, 60000, cfg.Width)

	assert.Equal(t, in, NewPreprocessor().Process(in))
}
