package validation

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// Definition of strict sanitization policy
	strictHTMLPolicy *bluemonday.Policy
)

func init() {
	strictHTMLPolicy = bluemonday.StrictPolicy() // Removes all HTML tags
}

// SanitizeText removes all HTML tags and attributes from an input string.
// The policy entity-escapes what it keeps, so the result is unescaped again
// to store the text as the user typed it.
func SanitizeText(s string) string {
	return html.UnescapeString(strictHTMLPolicy.Sanitize(s))
}

// StripUnprintable removes non-printable characters, allowing common whitespace
// like space, tab, newline, and carriage return.
func StripUnprintable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, s)
}

// CleanOptionalText rejects script-like content, strips markup and enforces a
// length limit on an optional free-text field. Blank input becomes nil.
func CleanOptionalText(s *string, maxLength int, fieldName string) (*string, error) {
	if s == nil {
		return nil, nil
	}
	if err := CheckXSSPatterns(*s, fieldName); err != nil {
		return nil, err
	}
	cleaned := strings.TrimSpace(StripUnprintable(SanitizeText(*s)))
	if cleaned == "" {
		return nil, nil
	}
	if err := CheckXSSPatterns(cleaned, fieldName); err != nil {
		return nil, err
	}
	if err := ValidateStringMaxLength(cleaned, maxLength, fieldName); err != nil {
		return nil, err
	}
	return &cleaned, nil
}
