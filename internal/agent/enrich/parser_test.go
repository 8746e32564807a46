package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    []string
	}{
		{"record delimiter", "A##B##C", 5, []string{"A", "B", "C"}},
		{"newlines and bullets", "- Alpha\n* Beta\n2) Gamma", 5, []string{"Alpha", "Beta", "Gamma"}},
		{"completion delimiter", "A##B<|COMPLETE|>C", 5, []string{"A", "B"}},
		{"dedupe case-insensitive", "Chess##chess##CHESS", 5, []string{"Chess"}},
		{"cap", "A##B##C", 2, []string{"A", "B"}},
		{"quotes stripped", `"Rook Society"##«Пешка»`, 5, []string{"Rook Society", "Пешка"}},
		{"numbers kept inside names", "2048 Club", 5, []string{"2048 Club"}},
		{"overlong dropped", strings.Repeat("x", 300) + "##ok", 5, []string{"ok"}},
		{"zero max", "A", 0, nil},
		{"empty", "   ", 3, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSuggestions(tt.content, tt.max))
		})
	}
}

func TestParseSuggestionsTruncatesHugeContent(t *testing.T) {
	content := "first##" + strings.Repeat("y", maxContentLen)
	got := ParseSuggestions(content, 5)
	assert.Equal(t, []string{"first"}, got)
}
