package main

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/clubchat-core/server/internal/agent/model"
)

func testConfig(t *testing.T) *AppConfig {
	t.Helper()
	t.Setenv("APP_ENV", "testing")
	t.Setenv("DATABASE_DSN", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	t.Setenv("SESSION_TTL", "2h")
	cfg, err := loadConfig()
	require.NoError(t, err)
	cfg.Redis.URL = "redis://" + miniredis.RunT(t).Addr() + "/0"
	return cfg
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg := testConfig(t)
	require.Equal(t, "testing", cfg.Environment().String())
	require.Equal(t, "club_session", cfg.Session.KeyPrefix)
	require.Equal(t, "2h0m0s", cfg.Session.TTLDuration().String())
	require.Equal(t, model.ProfileRich, cfg.Dialogue.Profile)
	require.Equal(t, 200, cfg.Dialogue.PreviewLength)
	require.False(t, cfg.Enrichment.Enabled)
	require.Equal(t, 5000, cfg.MaxMessageLength)
}

func TestRunChatUntilCancel(t *testing.T) {
	cfg := testConfig(t)
	engine, closeFn, err := buildEngine(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(closeFn)

	sessionID = "chat-test"
	t.Cleanup(func() { sessionID = "" })

	in := strings.NewReader("create a club\n\nTom & Jerry Club\ncancel\nnever read\n")
	var out bytes.Buffer
	require.NoError(t, runChat(context.Background(), engine, in, &out))

	got := out.String()
	require.Contains(t, got, "[name 10%]")
	require.Contains(t, got, "[category 25%] Got it.")
	require.Contains(t, got, "[cancelled 0%]")
	require.NotContains(t, got, "&amp;")
}
