package sanitize

import (
	"errors"
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const DefaultMaxLength = 5000

var (
	ErrInvalidEncoding   = errors.New("message is not valid UTF-8")
	ErrTooLong           = errors.New("message exceeds maximum length")
	ErrDisallowedContent = errors.New("message contains disallowed content")
)

var disallowed = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)<\s*iframe`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)\bon[a-z]+\s*=\s*["']`),
	regexp.MustCompile(`(?i)data\s*:\s*text/html`),
}

// Sanitizer turns inbound chat text into plain text and escapes outbound replies.
type Sanitizer struct {
	policy *bluemonday.Policy
	maxLen int
}

func New(maxLen int) *Sanitizer {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	return &Sanitizer{policy: bluemonday.StrictPolicy(), maxLen: maxLen}
}

// Clean rejects markup that signals an injection attempt, strips any other
// tags and control characters, and returns trimmed plain text.
func (s *Sanitizer) Clean(in string) (string, error) {
	if !utf8.ValidString(in) {
		return "", ErrInvalidEncoding
	}
	if utf8.RuneCountInString(in) > s.maxLen {
		return "", ErrTooLong
	}
	if isDisallowed(in) {
		return "", ErrDisallowedContent
	}

	in = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			return -1
		}
		return r
	}, in)
	out := html.UnescapeString(s.policy.Sanitize(in))
	// Entity-encoded markup only becomes visible after unescaping.
	if isDisallowed(out) {
		return "", ErrDisallowedContent
	}
	return strings.TrimSpace(out), nil
}

func isDisallowed(s string) bool {
	for _, p := range disallowed {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// Escape makes outbound text safe to embed in HTML.
func (s *Sanitizer) Escape(out string) string {
	return html.EscapeString(out)
}
