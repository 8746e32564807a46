package commit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/clubchat-core/server/internal/agent/model"
	"github.com/clubchat-core/server/internal/agent/repo"
	errx "github.com/clubchat-core/server/internal/core/error"
)

func newRepo(t *testing.T) (*repo.GormClubRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.AutoMigrate(db))
	return repo.NewGormClubRepository(db), db
}

func validDraft(name string) model.Draft {
	desc := strings.Repeat("We meet weekly to play and study chess together. ", 6)
	return model.Draft{
		Name:        name,
		Category:    "Games",
		Description: strings.TrimSpace(desc),
		Email:       "club@mail.kz",
		Phone:       "+77012345678",
	}
}

func request(session string, d model.Draft) Request {
	return Request{SessionID: session, CreatedAt: time.Unix(1_700_000_000, 0), OwnerID: "owner-1", Draft: d}
}

func TestCommitCreatesClub(t *testing.T) {
	clubs, db := newRepo(t)
	svc := NewService(clubs, nil)

	res, err := svc.Commit(context.Background(), request("s-1", validDraft("Chess Club")))
	require.NoError(t, err)
	require.True(t, res.Success)
	require.NotEmpty(t, res.ClubID)
	require.False(t, res.AlreadyCreated)

	var row repo.Club
	require.NoError(t, db.Take(&row, "id = ?", res.ClubID).Error)
	require.Equal(t, "owner-1", row.OwnerID)
	require.Equal(t, "Games", row.Category)
}

func TestCommitIsIdempotentPerCreationKey(t *testing.T) {
	clubs, db := newRepo(t)
	svc := NewService(clubs, nil)
	ctx := context.Background()

	first, err := svc.Commit(ctx, request("s-1", validDraft("Chess Club")))
	require.NoError(t, err)
	second, err := svc.Commit(ctx, request("s-1", validDraft("Chess Club")))
	require.NoError(t, err)

	require.True(t, second.Success)
	require.True(t, second.AlreadyCreated)
	require.Equal(t, first.ClubID, second.ClubID)

	var n int64
	require.NoError(t, db.Model(&repo.Club{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestCommitReplayReturnsStoredValues(t *testing.T) {
	clubs, _ := newRepo(t)
	svc := NewService(clubs, nil)
	ctx := context.Background()

	first, err := svc.Commit(ctx, request("s-1", validDraft("Chess Club")))
	require.NoError(t, err)
	require.Equal(t, "Chess Club", first.Committed.Name)

	second, err := svc.Commit(ctx, request("s-1", validDraft("Go Players")))
	require.NoError(t, err)
	require.True(t, second.AlreadyCreated)
	require.Equal(t, first.ClubID, second.ClubID)
	require.Equal(t, validDraft("Chess Club"), second.Committed)
}

func TestCommitRevalidatesFields(t *testing.T) {
	clubs, _ := newRepo(t)
	svc := NewService(clubs, nil)

	d := validDraft("Chess Club")
	d.Email = "club@mailinator.com"
	d.Description = "too short."
	res, err := svc.Commit(context.Background(), request("s-1", d))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Contains(t, res.ValidationErrors, model.FieldEmail)
	require.Contains(t, res.ValidationErrors, model.FieldDescription)
	require.NotContains(t, res.ValidationErrors, model.FieldName)
}

func TestCommitRejectsNameTakenByConcurrentSession(t *testing.T) {
	clubs, _ := newRepo(t)
	svc := NewService(clubs, nil)
	ctx := context.Background()

	_, err := svc.Commit(ctx, request("other", validDraft("Chess Club")))
	require.NoError(t, err)

	res, err := svc.Commit(ctx, request("s-1", validDraft("Chess Club")))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Contains(t, res.ValidationErrors[model.FieldName][0], "already exists")
}

type brokenClubs struct {
	*repo.GormClubRepository
	createErr error
	attempts  []model.CreationAttempt
}

func (b *brokenClubs) CreateWithOwner(context.Context, *model.Club) error { return b.createErr }

func (b *brokenClubs) RecordFailedAttempt(ctx context.Context, a model.CreationAttempt) error {
	b.attempts = append(b.attempts, a)
	return b.GormClubRepository.RecordFailedAttempt(ctx, a)
}

func TestCommitFailureRecordsAttempt(t *testing.T) {
	clubs, db := newRepo(t)
	broken := &brokenClubs{GormClubRepository: clubs, createErr: errors.New("disk full")}
	svc := NewService(broken, nil)

	res, err := svc.Commit(context.Background(), request("s-1", validDraft("Chess Club")))
	require.Error(t, err)
	require.Equal(t, errx.KindCommit, errx.KindOf(err))
	require.False(t, res.Success)
	require.Equal(t, FailureMessage, res.Error)
	require.NotEmpty(t, res.ErrorID)
	require.NotContains(t, res.Error, "disk full")

	require.Len(t, broken.attempts, 1)
	require.Equal(t, res.ErrorID, broken.attempts[0].ErrorID)

	var logs []repo.ClubCreationLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	require.Equal(t, repo.CreationStatusFailed, logs[0].Status)

	// Retrying after the repository recovers succeeds once.
	broken.createErr = nil
	svc = NewService(clubs, nil)
	res, err = svc.Commit(context.Background(), request("s-1", validDraft("Chess Club")))
	require.NoError(t, err)
	require.True(t, res.Success)
}

func TestCommitDuplicateRaceInsideTransaction(t *testing.T) {
	clubs, _ := newRepo(t)
	racing := &brokenClubs{GormClubRepository: clubs, createErr: errx.WrapDB(errx.ErrDuplicateName)}
	svc := NewService(racing, nil)

	res, err := svc.Commit(context.Background(), request("s-1", validDraft("Chess Club")))
	require.NoError(t, err)
	require.False(t, res.Success)
	require.Contains(t, res.ValidationErrors[model.FieldName][0], "a moment ago")
	require.Empty(t, racing.attempts)
}
