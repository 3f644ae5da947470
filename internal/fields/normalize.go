package fields

import (
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// foldTypography maps the typographic quote and dash variants OCR tends to
// produce onto their ASCII equivalents. It must run before nonASCII removal.
func foldTypography(r rune) rune {
	switch r {
	case '“', '”':
		return '"'
	case '‘', '’':
		return '\''
	case '–', '—':
		return '-'
	}
	return r
}

var (
	nonASCII       = runes.Predicate(func(r rune) bool { return r > 0x7F })
	carriageReturn = runes.Predicate(func(r rune) bool { return r == '\r' })
)

// Normalize canonicalizes raw OCR output: typographic quotes and dashes are
// folded to ASCII, every remaining non-ASCII rune and every carriage return
// is deleted, and surrounding whitespace is trimmed. Invalid UTF-8 bytes are
// deleted as well.
func Normalize(raw string) string {
	t := transform.Chain(
		runes.Map(foldTypography),
		runes.Remove(nonASCII),
		runes.Remove(carriageReturn),
	)
	// runes.Map and runes.Remove never return an error
	out, _, _ := transform.String(t, raw)
	return strings.TrimSpace(out)
}
