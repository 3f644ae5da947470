package fields

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ocrfields/extract-json-service/internal/models"
)

// Label names one of the fields pulled out of recognized text
type Label string

// The fixed label set, in response order
const (
	Name         Label = "name"
	Organization Label = "organization"
	Address      Label = "address"
	Mobile       Label = "mobile"
)

// Labels lists every label the service extracts
var Labels = []Label{Name, Organization, Address, Mobile}

var patterns = compilePatterns(Labels)

func compilePatterns(labels []Label) map[Label]*regexp.Regexp {
	m := make(map[Label]*regexp.Regexp, len(labels))
	for _, l := range labels {
		m[l] = labelPattern(l)
	}
	return m
}

// labelPattern matches `"<label>": "<value>"` case-insensitively, allowing
// whitespace around the colon. The value runs to the first double quote.
func labelPattern(l Label) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)"%s"\s*:\s*"([^"]+)"`, regexp.QuoteMeta(string(l))))
}

// ExtractField returns the trimmed value of the first `"label": "value"`
// pair in text. The bool is false when no pair matched; a matched value made
// only of whitespace is returned as "" with true.
func ExtractField(text string, label Label) (string, bool) {
	re, ok := patterns[label]
	if !ok {
		re = labelPattern(label)
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// Fields maps each matched label to its value. Labels that did not match
// are absent.
type Fields map[Label]string

// Extract runs ExtractField for every label in Labels
func Extract(text string) Fields {
	f := make(Fields, len(Labels))
	for _, l := range Labels {
		if v, ok := ExtractField(text, l); ok {
			f[l] = v
		}
	}
	return f
}

// Complete reports whether every label matched with a non-empty value.
// A label matched as "" counts as missing.
func (f Fields) Complete() bool {
	return len(f.Missing()) == 0
}

// Missing returns the labels that are absent or empty, in Labels order
func (f Fields) Missing() []Label {
	var missing []Label
	for _, l := range Labels {
		if f[l] == "" {
			missing = append(missing, l)
		}
	}
	return missing
}

// Data shapes complete fields into the response payload
func (f Fields) Data() models.ExtractedData {
	return models.ExtractedData{
		Name:         f[Name],
		Organization: f[Organization],
		Address:      f[Address],
		Mobile:       f[Mobile],
	}
}

// Result builds the response for the given fields. Incomplete fields yield
// a failure with empty data, even when some labels matched.
func (f Fields) Result() models.ExtractionResult {
	if !f.Complete() {
		return models.ExtractionResult{
			Success: false,
			Message: models.MessageIncomplete,
		}
	}
	return models.ExtractionResult{
		Success: true,
		Message: models.MessageSuccess,
		Data:    f.Data(),
	}
}
