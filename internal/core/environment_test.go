package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	cases := map[string]Environment{
		"production":   Production,
		"staging":      Staging,
		"testing":      Testing,
		"development":  Development,
		"":             Development,
		"bogus":        Development,
		" Production ": Production,
		"test":         Testing,
	}
	for in, want := range cases {
		require.Equal(t, want, ParseEnvironment(in), in)
	}
	require.True(t, Production.IsProduction())
	require.False(t, Staging.IsProduction())
}
