// Package content normalizes user supplied text before it is stored.
package content

import (
	"html"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"recipeshare.me/recipes/internal/exceptions"
)

// Sanitizer strips all markup and surrounding whitespace from user text.
// It is safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// maxPasses bounds how many layers of entity encoding Clean will peel.
const maxPasses = 8

// Clean strips markup until unescaping the result no longer reveals any,
// so entity encoded tags cannot come back to life. Text that is still
// changing after maxPasses is returned in its escaped form.
func (s *Sanitizer) Clean(raw string) string {
	text := raw
	for i := 0; i < maxPasses; i++ {
		next := html.UnescapeString(s.policy.Sanitize(text))
		if next == text {
			return strings.TrimSpace(text)
		}
		text = next
	}
	return strings.TrimSpace(s.policy.Sanitize(text))
}

// Require cleans raw and rejects text that is empty afterwards or longer than maxRunes.
// A maxRunes of zero disables the length check.
func (s *Sanitizer) Require(field string, raw string, maxRunes int) (string, error) {
	cleaned := s.Clean(raw)
	if cleaned == "" {
		return "", exceptions.InvalidInput(field + " must not be empty")
	}
	if maxRunes > 0 && utf8.RuneCountInString(cleaned) > maxRunes {
		return "", exceptions.InvalidInput(field + " is too long")
	}
	return cleaned, nil
}
