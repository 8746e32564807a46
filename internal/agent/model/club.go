package model

import (
	"context"
	"fmt"
	"time"
)

// ClubStatus values; only active clubs reserve their name.
const (
	ClubStatusActive   = "active"
	ClubStatusArchived = "archived"
)

// Club is a committed club record.
type Club struct {
	ID          string
	Name        string
	Category    string
	Description string
	Email       string
	Phone       string
	Status      string
	OwnerID     string
	CreationKey string
	CreatedAt   time.Time
}

// NewClubFromDraft copies the draft values into an active club.
func NewClubFromDraft(d Draft) Club {
	return Club{
		Name:        d.Name,
		Category:    d.Category,
		Description: d.Description,
		Email:       d.Email,
		Phone:       d.Phone,
		Status:      ClubStatusActive,
	}
}

// Draft returns the field values the club was created with.
func (c Club) Draft() Draft {
	return Draft{
		Name:        c.Name,
		Category:    c.Category,
		Description: c.Description,
		Email:       c.Email,
		Phone:       c.Phone,
	}
}

// CreationAttempt records a failed commit for later inspection.
type CreationAttempt struct {
	SessionID   string
	CreationKey string
	ErrorID     string
	Error       string
	At          time.Time
}

// ClubRepository performs reads used for duplicate checks and the atomic creation.
type ClubRepository interface {
	// ActiveNameExists reports whether an active club has exactly this name.
	ActiveNameExists(ctx context.Context, name string) (bool, error)

	// SimilarNames returns up to limit active names containing fragment, case-insensitively.
	SimilarNames(ctx context.Context, fragment string, limit int) ([]string, error)

	// FindByCreationKey returns the club created under key, or nil when none exists.
	FindByCreationKey(ctx context.Context, key string) (*Club, error)

	// CreateWithOwner writes the club, its owner membership and a creation log in one transaction.
	// It fills club.ID and club.CreatedAt on success.
	CreateWithOwner(ctx context.Context, club *Club) error

	// RecordFailedAttempt stores a failed creation log outside any transaction.
	RecordFailedAttempt(ctx context.Context, attempt CreationAttempt) error
}

// CreationKeyFor derives the idempotency key of the club a session commits.
// A session id recreated after cancel gets a new created_at and thus a new key.
func CreationKeyFor(sessionID string, createdAt time.Time) string {
	return fmt.Sprintf("%s@%d", sessionID, createdAt.UnixNano())
}
