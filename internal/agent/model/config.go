package model

import (
	"strings"
	"time"
)

// ================ Config ================
type SessionConfig struct {
	TTL       string `envconfig:"SESSION_TTL" default:"24h"`
	KeyPrefix string `envconfig:"SESSION_KEY_PREFIX" default:"club_session"`
}

// TTLDuration parses TTL, falling back to DefaultSessionTTL for empty or invalid values.
func (c SessionConfig) TTLDuration() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.TTL))
	if err != nil || d <= 0 {
		return DefaultSessionTTL
	}
	return d
}

// Profile selects how much advisory behaviour the dialogue engine carries.
type Profile string

const (
	// ProfileRich enables related-name search and model suggestions.
	ProfileRich Profile = "rich"
	// ProfileLite runs validation only.
	ProfileLite Profile = "lite"
)

type DialogueConfig struct {
	Profile        Profile `envconfig:"DIALOGUE_PROFILE" default:"rich"`
	PreviewLength  int     `envconfig:"DIALOGUE_PREVIEW_LENGTH" default:"200"`
	MaxSuggestions int     `envconfig:"DIALOGUE_MAX_SUGGESTIONS" default:"3"`
}

type EnrichmentConfig struct {
	Enabled     bool    `envconfig:"ENRICHMENT_ENABLED" default:"false"`
	APIKey      string  `envconfig:"GEMINI_API_KEY"`
	BaseURL     string  `envconfig:"GEMINI_BASE_URL"`
	Model       string  `envconfig:"ENRICHMENT_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"ENRICHMENT_MAX_TOKENS" default:"512"`
	Temperature float32 `envconfig:"ENRICHMENT_TEMPERATURE" default:"0.7"`
	Timeout     string  `envconfig:"ENRICHMENT_TIMEOUT" default:"4s"`
}

// TimeoutDuration parses Timeout; zero disables the per-call deadline.
func (c EnrichmentConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil || d < 0 {
		return 0
	}
	return d
}
