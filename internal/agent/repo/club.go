package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clubchat-core/server/internal/agent/model"
	errx "github.com/clubchat-core/server/internal/core/error"
	logx "github.com/clubchat-core/server/pkg/logger"
)

const (
	MembershipRoleOwner = "owner"

	CreationStatusCreated = "created"
	CreationStatusFailed  = "failed"
)

type Club struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null;index"`
	Category    string    `gorm:"not null;index"`
	Description string    `gorm:"type:text;not null"`
	Email       string    `gorm:"not null"`
	Phone       string    `gorm:"not null"`
	Status      string    `gorm:"not null;default:active;index"`
	OwnerID     string    `gorm:"not null;index"`
	CreationKey string    `gorm:"uniqueIndex"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (Club) TableName() string { return "clubs" }

type ClubMembership struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClubID    uuid.UUID `gorm:"type:uuid;not null;index"`
	MemberID  string    `gorm:"not null;index"`
	Role      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ClubMembership) TableName() string { return "club_memberships" }

type ClubCreationLog struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ClubID      *uuid.UUID `gorm:"type:uuid;index"`
	SessionID   string     `gorm:"not null;index"`
	CreationKey string     `gorm:"index"`
	Status      string     `gorm:"not null"`
	ErrorID     string
	Error       string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (ClubCreationLog) TableName() string { return "club_creation_logs" }

// AutoMigrate creates or updates the club tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Club{}, &ClubMembership{}, &ClubCreationLog{})
}

type GormClubRepository struct {
	db *gorm.DB
}

func NewGormClubRepository(db *gorm.DB) *GormClubRepository {
	return &GormClubRepository{db: db}
}

func (r *GormClubRepository) ActiveNameExists(ctx context.Context, name string) (bool, error) {
	return activeNameExists(ctx, r.db, name)
}

func activeNameExists(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	var n int64
	if err := tx.WithContext(ctx).
		Model(&Club{}).
		Where("name = ? AND status = ?", name, model.ClubStatusActive).
		Count(&n).Error; err != nil {
		return false, errx.WrapDB(err)
	}
	return n > 0, nil
}

func (r *GormClubRepository) SimilarNames(ctx context.Context, fragment string, limit int) ([]string, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" || limit <= 0 {
		return []string{}, nil
	}
	var names []string
	if err := r.db.WithContext(ctx).
		Model(&Club{}).
		Where("status = ? AND LOWER(name) LIKE ?", model.ClubStatusActive, "%"+strings.ToLower(fragment)+"%").
		Order("name").
		Limit(limit).
		Pluck("name", &names).Error; err != nil {
		return nil, errx.WrapDB(err)
	}
	return names, nil
}

func (r *GormClubRepository) FindByCreationKey(ctx context.Context, key string) (*model.Club, error) {
	var row Club
	err := r.db.WithContext(ctx).Where("creation_key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errx.WrapDB(err)
	}
	c := row.toModel()
	return &c, nil
}

// CreateWithOwner re-checks the name inside the transaction so two sessions
// racing for one name cannot both commit.
func (r *GormClubRepository) CreateWithOwner(ctx context.Context, club *model.Club) error {
	now := time.Now().UTC()
	row := Club{
		ID:          uuid.New(),
		Name:        club.Name,
		Category:    club.Category,
		Description: club.Description,
		Email:       club.Email,
		Phone:       club.Phone,
		Status:      model.ClubStatusActive,
		OwnerID:     club.OwnerID,
		CreationKey: club.CreationKey,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := activeNameExists(ctx, tx, row.Name)
		if err != nil {
			return err
		}
		if taken {
			return errx.ErrDuplicateName
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Create(&ClubMembership{
			ID:        uuid.New(),
			ClubID:    row.ID,
			MemberID:  row.OwnerID,
			Role:      MembershipRoleOwner,
			CreatedAt: now,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&ClubCreationLog{
			ID:          uuid.New(),
			ClubID:      &row.ID,
			SessionID:   sessionFromKey(row.CreationKey),
			CreationKey: row.CreationKey,
			Status:      CreationStatusCreated,
			CreatedAt:   now,
		}).Error
	})
	if err != nil {
		logx.Error().Err(err).Str("creation_key", club.CreationKey).Msg("club creation transaction rolled back")
		return errx.WrapDB(err)
	}

	club.ID = row.ID.String()
	club.Status = row.Status
	club.CreatedAt = row.CreatedAt
	return nil
}

func (r *GormClubRepository) RecordFailedAttempt(ctx context.Context, attempt model.CreationAttempt) error {
	at := attempt.At
	if at.IsZero() {
		at = time.Now().UTC()
	}
	if err := r.db.WithContext(ctx).Create(&ClubCreationLog{
		ID:          uuid.New(),
		SessionID:   attempt.SessionID,
		CreationKey: attempt.CreationKey,
		Status:      CreationStatusFailed,
		ErrorID:     attempt.ErrorID,
		Error:       attempt.Error,
		CreatedAt:   at,
	}).Error; err != nil {
		return errx.WrapDB(err)
	}
	return nil
}

func (c Club) toModel() model.Club {
	return model.Club{
		ID:          c.ID.String(),
		Name:        c.Name,
		Category:    c.Category,
		Description: c.Description,
		Email:       c.Email,
		Phone:       c.Phone,
		Status:      c.Status,
		OwnerID:     c.OwnerID,
		CreationKey: c.CreationKey,
		CreatedAt:   c.CreatedAt,
	}
}

// sessionFromKey strips the timestamp suffix of a creation key.
func sessionFromKey(key string) string {
	if i := strings.LastIndex(key, "@"); i > 0 {
		return key[:i]
	}
	return key
}

var _ model.ClubRepository = (*GormClubRepository)(nil)
