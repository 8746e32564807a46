package enrich

import (
	"regexp"
	"strings"
	"unicode/utf8"

	logx "github.com/clubchat-core/server/pkg/logger"
)

// basic safety limits to avoid pathological model output
const (
	maxContentLen    = 16 * 1024
	maxSuggestionLen = 200
)

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d{1,2}[.)])\s*`)

// ParseSuggestions splits model output into at most max clean, unique
// suggestions. Bullets, numbering and wrapping quotes are removed.
func ParseSuggestions(content string, max int) (out []string) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "suggestion_parser").Msgf("panic recovered: %v", r)
			out = nil
		}
	}()

	if max <= 0 {
		return nil
	}
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "suggestion_parser").
			Int("max_len", maxContentLen).
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}
	if !utf8.ValidString(content) {
		content = strings.ToValidUTF8(content, "")
	}
	// honor completion delimiter if present
	if idx := strings.Index(content, endDelim); idx >= 0 {
		content = content[:idx]
	}

	seen := map[string]struct{}{}
	for _, rec := range strings.FieldsFunc(content, func(r rune) bool { return r == '\n' || r == '\r' }) {
		for _, part := range strings.Split(rec, recDelim) {
			s := cleanSuggestion(part)
			if s == "" {
				continue
			}
			key := strings.ToLower(s)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, s)
			if len(out) == max {
				return out
			}
		}
	}
	return out
}

func cleanSuggestion(s string) string {
	s = strings.TrimSpace(s)
	s = listMarker.ReplaceAllString(s, "")
	s = strings.Trim(s, "\"'`«» ")
	if utf8.RuneCountInString(s) > maxSuggestionLen {
		return ""
	}
	return s
}
