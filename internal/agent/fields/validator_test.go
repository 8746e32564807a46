package fields

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clubchat-core/server/internal/agent/model"
)

// prose builds a description of exactly n runes with three sentences.
func prose(n int) string {
	base := "Our chess club meets every Friday evening. We welcome beginners and experienced players alike! Want to improve your openings? "
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(base)
	}
	return b.String()[:n]
}

func TestValidatorName(t *testing.T) {
	v := NewValidator(nil)

	tests := []struct {
		name    string
		in      string
		valid   bool
		errPart string
	}{
		{"ok", "Chess Club", true, ""},
		{"cyrillic ok", "Шахматный клуб", true, ""},
		{"too short", "AB", false, "minimum 3 characters"},
		{"too long", strings.Repeat("a", 101), false, "maximum 100"},
		{"no letters", "12345", false, "at least one letter"},
		{"special heavy", "a!!!!!", false, "special characters"},
		{"forbidden word", "Admin Club", false, "reserved word"},
		{"forbidden word case insensitive", "SYSTEM club", false, "reserved word"},
		{"forbidden word is whole word only", "Contest Lovers", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := v.Name(tt.in)
			assert.Equal(t, tt.valid, res.IsValid, res.Errors)
			if tt.errPart != "" {
				assert.Contains(t, res.FirstError(), tt.errPart)
			}
		})
	}
}

func TestValidatorDescriptionLengthBoundary(t *testing.T) {
	v := NewValidator(nil)

	short := v.Description(prose(199))
	require.False(t, short.IsValid)
	require.Contains(t, short.FirstError(), "need 1 more character")
	require.NotContains(t, short.FirstError(), "characters (")

	exact := v.Description(prose(200))
	require.True(t, exact.IsValid, exact.Errors)

	tooShort := v.Description(prose(150))
	require.Contains(t, tooShort.FirstError(), "need 50 more characters")

	tooLong := v.Description(prose(2010))
	require.False(t, tooLong.IsValid)
	require.Contains(t, tooLong.FirstError(), "maximum 2000")
}

func TestValidatorDescriptionStructure(t *testing.T) {
	v := NewValidator(nil)

	oneSentence := strings.Repeat("abcdefghijklm ", 20) + "."
	res := v.Description(oneSentence)
	require.False(t, res.IsValid)
	require.Contains(t, strings.Join(res.Errors, " "), "at least 2 sentences")

	repeated := strings.Repeat("aaaa. ", 50)
	res = v.Description(repeated)
	require.False(t, res.IsValid)
	require.Contains(t, strings.Join(res.Errors, " "), "repeated characters")

	long := v.Description(prose(1600))
	require.True(t, long.IsValid)
	require.Len(t, long.Warnings, 1)
}

func TestValidatorCategory(t *testing.T) {
	v := NewValidator(nil)

	for in, want := range map[string]string{
		"sports":       "Sports",
		"SPORT":        "Sports",
		"спорт":        "Sports",
		"tech":         "Technology",
		"music lovers": "Music",
		"Игры":         "Games",
		"science club": "Science",
		"volunteer":    "Volunteering",
	} {
		got, res := v.Category(in)
		assert.True(t, res.IsValid, in)
		assert.Equal(t, want, got, in)
	}

	_, res := v.Category("party")
	require.False(t, res.IsValid)
	require.Contains(t, res.FirstError(), strings.Join(v.Catalog().Names(), ", "))

	_, res = v.Category("a")
	require.False(t, res.IsValid)
}

func TestValidatorEmail(t *testing.T) {
	v := NewValidator(nil)

	assert.True(t, v.Email("name@x.kz").IsValid)
	assert.True(t, v.Email("chess.club+info@mail.kz").IsValid)

	bad := v.Email("not-an-email")
	assert.False(t, bad.IsValid)
	assert.Contains(t, bad.FirstError(), "valid email")

	disposable := v.Email("club@mailinator.com")
	assert.False(t, disposable.IsValid)
	assert.Contains(t, disposable.FirstError(), "Disposable")

	sub := v.Email("club@eu.mailinator.com")
	assert.False(t, sub.IsValid)

	auto := v.Email("1234567@mail.kz")
	assert.True(t, auto.IsValid)
	assert.Len(t, auto.Warnings, 1)
}

func TestValidatorPhone(t *testing.T) {
	v := NewValidator(nil)

	got, res := v.Phone("+77012345678")
	require.True(t, res.IsValid)
	require.Equal(t, "+77012345678", got)

	got, res = v.Phone("87012345678")
	require.True(t, res.IsValid)
	require.Equal(t, "+77012345678", got)

	// Unknown operator code only warns in the log.
	got, res = v.Phone("+77112345678")
	require.True(t, res.IsValid)
	require.Equal(t, "+77112345678", got)

	_, res = v.Phone("12345")
	require.False(t, res.IsValid)
	require.Contains(t, res.FirstError(), "10 to 15 digits")

	_, res = v.Phone("8701 234 56 78 12345")
	require.False(t, res.IsValid)
	require.Contains(t, res.FirstError(), "(got 16)")

	_, res = v.Phone("call me maybe")
	require.False(t, res.IsValid)
}

func TestValidatorDraft(t *testing.T) {
	v := NewValidator(nil)
	d := model.Draft{
		Name:        "Chess Club",
		Category:    "games",
		Description: prose(250),
		Email:       "club@mail.kz",
		Phone:       "+7 701 234 56 78",
	}
	clean, failed := v.Draft(d)
	require.Empty(t, failed)
	require.Equal(t, "Games", clean.Category)
	require.Equal(t, "+77012345678", clean.Phone)

	d.Name = "AB"
	_, failed = v.Draft(d)
	require.Contains(t, failed, model.FieldName)
}
