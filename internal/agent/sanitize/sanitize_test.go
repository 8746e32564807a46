package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanStripsMarkup(t *testing.T) {
	s := New(0)

	got, err := s.Clean("  <b>Chess</b> Club  ")
	require.NoError(t, err)
	assert.Equal(t, "Chess Club", got)

	got, err = s.Clean("Tom & Jerry fans, 3 < 5")
	require.NoError(t, err)
	assert.Equal(t, "Tom & Jerry fans, 3 < 5", got)

	got, err = s.Clean("создать клуб\x00\x07")
	require.NoError(t, err)
	assert.Equal(t, "создать клуб", got)
}

func TestCleanRejectsDangerousContent(t *testing.T) {
	s := New(0)
	for _, in := range []string{
		"<script>alert(1)</script>",
		"< SCRIPT src=x>",
		"click javascript:alert(1)",
		`<img src=x onerror="alert(1)">`,
		"<iframe src=//evil>",
		"&lt;script&gt;alert(1)&lt;/script&gt; chess club",
		"&#60;iframe src=//evil&#62;",
	} {
		_, err := s.Clean(in)
		assert.ErrorIs(t, err, ErrDisallowedContent, in)
	}
}

func TestCleanRejectsBadInput(t *testing.T) {
	s := New(10)

	_, err := s.Clean(strings.Repeat("a", 11))
	assert.ErrorIs(t, err, ErrTooLong)

	_, err = s.Clean("\xff\xfe")
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestEscape(t *testing.T) {
	s := New(0)
	assert.Equal(t, "&lt;b&gt;Chess &amp; Go&lt;/b&gt;", s.Escape("<b>Chess & Go</b>"))
	assert.Equal(t, "plain text", s.Escape("plain text"))
}
