package commit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clubchat-core/server/internal/agent/duplicates"
	"github.com/clubchat-core/server/internal/agent/fields"
	"github.com/clubchat-core/server/internal/agent/model"
	errx "github.com/clubchat-core/server/internal/core/error"
	logx "github.com/clubchat-core/server/pkg/logger"
)

// FailureMessage is shown to users when the repository fails; details stay in the log.
const FailureMessage = "We could not create the club right now. Please try again in a moment."

// Request is everything needed to commit one draft.
type Request struct {
	SessionID string
	CreatedAt time.Time
	OwnerID   string
	Draft     model.Draft
}

// Result mirrors the commit contract: an id on success, otherwise an error
// text and optionally the per-field validation errors. Committed holds the
// values actually stored, which differ from the request on a replay.
type Result struct {
	Success          bool
	ClubID           string
	AlreadyCreated   bool
	Committed        model.Draft
	Error            string
	ErrorID          string
	ValidationErrors map[model.Field][]string
}

type Service struct {
	clubs     model.ClubRepository
	validator *fields.Validator
	names     *duplicates.Resolver
	now       func() time.Time
}

func NewService(clubs model.ClubRepository, validator *fields.Validator) *Service {
	if validator == nil {
		validator = fields.NewValidator(nil)
	}
	return &Service{
		clubs:     clubs,
		validator: validator,
		names:     duplicates.NewResolver(clubs, validator.Catalog(), duplicates.WithRelated(false)),
		now:       time.Now,
	}
}

// Commit creates the club unless one was already created for this request's
// creation key. Validation failures come back in Result with a nil error;
// repository failures return a KindCommit error and an error id.
func (s *Service) Commit(ctx context.Context, req Request) (Result, error) {
	key := model.CreationKeyFor(req.SessionID, req.CreatedAt)

	existing, err := s.clubs.FindByCreationKey(ctx, key)
	if err != nil {
		return s.fail(ctx, req, key, err)
	}
	if existing != nil {
		logx.Info().Str("session_id", req.SessionID).Str("club_id", existing.ID).Msg("commit replayed; club already exists")
		return Result{Success: true, ClubID: existing.ID, AlreadyCreated: true, Committed: existing.Draft()}, nil
	}

	// Re-check everything; time has passed since the per-field checks ran.
	clean, failed := s.validator.Draft(req.Draft)
	if len(failed) > 0 {
		return invalid(failed), nil
	}
	nameRes, err := s.names.CheckName(ctx, clean.Name)
	if err != nil {
		return s.fail(ctx, req, key, err)
	}
	if !nameRes.IsValid {
		return invalid(map[model.Field]model.ValidationResult{model.FieldName: nameRes}), nil
	}

	club := model.NewClubFromDraft(clean)
	club.OwnerID = req.OwnerID
	club.CreationKey = key
	if err := s.clubs.CreateWithOwner(ctx, &club); err != nil {
		if errors.Is(err, errx.ErrDuplicateName) {
			res := model.NewValidationResult()
			res.Fail(fmt.Sprintf("A club named %q was created a moment ago. Please choose another name.", clean.Name))
			return invalid(map[model.Field]model.ValidationResult{model.FieldName: res}), nil
		}
		return s.fail(ctx, req, key, err)
	}

	logx.Info().Str("session_id", req.SessionID).Str("club_id", club.ID).Str("category", club.Category).Msg("club created")
	return Result{Success: true, ClubID: club.ID, Committed: clean}, nil
}

// fail records the failed attempt outside the rolled-back transaction and
// returns a generic result carrying an error id.
func (s *Service) fail(ctx context.Context, req Request, key string, cause error) (Result, error) {
	errorID := uuid.NewString()
	logx.Error().Err(cause).Str("session_id", req.SessionID).Str("error_id", errorID).Msg("club commit failed")

	if err := s.clubs.RecordFailedAttempt(ctx, model.CreationAttempt{
		SessionID:   req.SessionID,
		CreationKey: key,
		ErrorID:     errorID,
		Error:       cause.Error(),
		At:          s.now().UTC(),
	}); err != nil {
		logx.Error().Err(err).Str("error_id", errorID).Msg("failed to record failed creation attempt")
	}

	return Result{Error: FailureMessage, ErrorID: errorID}, errx.Commit(cause, "club commit failed")
}

func invalid(failed map[model.Field]model.ValidationResult) Result {
	out := Result{
		Error:            "Some answers are no longer valid.",
		ValidationErrors: make(map[model.Field][]string, len(failed)),
	}
	for f, res := range failed {
		out.ValidationErrors[f] = res.Errors
	}
	return out
}
