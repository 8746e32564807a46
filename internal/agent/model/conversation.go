package model

import (
	"context"
	"time"
)

// DefaultSessionTTL bounds how long an idle dialogue is kept.
const DefaultSessionTTL = 24 * time.Hour

// Stage names the question currently being asked.
type Stage string

const (
	StageWelcome     Stage = "welcome"
	StageName        Stage = "name"
	StageCategory    Stage = "category"
	StageDescription Stage = "description"
	StageEmail       Stage = "email"
	StagePhone       Stage = "phone"
	StageConfirm     Stage = "confirm"
	StageEdit        Stage = "edit"
	StageDone        Stage = "done"
	StageCancelled   Stage = "cancelled"
)

// Stages lists every stage in dialogue order.
var Stages = []Stage{
	StageWelcome, StageName, StageCategory, StageDescription, StageEmail,
	StagePhone, StageConfirm, StageEdit, StageDone, StageCancelled,
}

func (s Stage) String() string { return string(s) }

// IsTerminal reports whether no further question is asked in this stage.
func (s Stage) IsTerminal() bool {
	return s == StageDone || s == StageCancelled
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	for _, v := range Stages {
		if v == s {
			return true
		}
	}
	return false
}

// ConversationState is the persisted record of one dialogue.
// It is mutated only by the dialogue engine.
type ConversationState struct {
	SessionID    string            `json:"session_id"`
	Stage        Stage             `json:"stage"`
	Data         map[string]string `json:"data"`
	Progress     int               `json:"progress"`
	CreatedAt    time.Time         `json:"created_at"`
	ExpiresAt    time.Time         `json:"expires_at"`
	LastQuestion Stage             `json:"last_question"`

	Version   int64     `json:"version"`
	Editing   bool      `json:"editing,omitempty"`
	OwnerID   string    `json:"owner_id,omitempty"`
	ClubID    string    `json:"club_id,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversationState returns a fresh welcome-stage state.
func NewConversationState(sessionID string, now time.Time, ttl time.Duration) *ConversationState {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &ConversationState{
		SessionID:    sessionID,
		Stage:        StageWelcome,
		Data:         map[string]string{},
		CreatedAt:    now,
		ExpiresAt:    now.Add(ttl),
		LastQuestion: StageWelcome,
		UpdatedAt:    now,
	}
}

// Expired reports whether now is past the TTL window.
func (s *ConversationState) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Draft interprets the accumulated data as a candidate club.
func (s *ConversationState) Draft() Draft {
	return DraftFromData(s.Data)
}

// Clone returns a deep copy so handlers can mutate without touching the loaded state.
func (s *ConversationState) Clone() *ConversationState {
	cp := *s
	cp.Data = make(map[string]string, len(s.Data))
	for k, v := range s.Data {
		cp.Data[k] = v
	}
	return &cp
}

// SessionRepository persists one ConversationState per session id.
type SessionRepository interface {
	// Load returns the state or an error wrapping errx.ErrSessionNotFound.
	Load(ctx context.Context, sessionID string) (*ConversationState, error)

	// Save writes state if the stored version still equals state.Version,
	// then increments state.Version. A mismatch wraps errx.ErrVersionConflict.
	Save(ctx context.Context, state *ConversationState) error

	// Delete removes the state; deleting a missing session is not an error.
	Delete(ctx context.Context, sessionID string) error
}
