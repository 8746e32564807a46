package fields

import (
	"regexp"
	"strings"
)

var (
	emailSearch = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRun    = regexp.MustCompile(`^\+?\d{10,15}$`)
)

// ExtractEmail returns the first e-mail-shaped token in msg, or the whole
// trimmed message when none is found. ok is false only for blank input.
func ExtractEmail(msg string) (string, bool) {
	t := strings.TrimSpace(msg)
	if t == "" {
		return "", false
	}
	if m := emailSearch.FindString(t); m != "" {
		return m, true
	}
	return t, true
}

// ExtractPhone keeps digits and a '+' seen before the first digit, then
// accepts the result when it is a 10-15 digit run. Otherwise the trimmed
// message is returned as the candidate and left to the validator.
func ExtractPhone(msg string) (string, bool) {
	t := strings.TrimSpace(msg)
	if t == "" {
		return "", false
	}
	var b strings.Builder
	seenDigit := false
	for _, r := range t {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			b.WriteRune(r)
		case r == '+' && !seenDigit && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	if cleaned := b.String(); phoneRun.MatchString(cleaned) {
		return cleaned, true
	}
	return t, true
}

// ExtractText is used for name and description: the trimmed message is the
// value. Inner whitespace, paragraph breaks included, is kept as typed.
func ExtractText(msg string) (string, bool) {
	t := strings.TrimSpace(msg)
	if t == "" {
		return "", false
	}
	return t, true
}
