package dialogue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clubchat-core/server/internal/agent/commit"
	"github.com/clubchat-core/server/internal/agent/duplicates"
	"github.com/clubchat-core/server/internal/agent/fields"
	"github.com/clubchat-core/server/internal/agent/model"
	errx "github.com/clubchat-core/server/internal/core/error"
	logx "github.com/clubchat-core/server/pkg/logger"
)

// User-facing replies for the failure shapes. Internal details are logged only.
const (
	EmptyMessageReply    = "Please type a message."
	RejectedReply        = "Sorry, we could not process that message."
	LoadFailedReply      = "Something went wrong while loading your conversation. Please try again."
	SaveFailedReply      = "We could not save your answer. Please try again."
	ConflictReply        = "Your conversation was updated from somewhere else. Please send your last answer again."
	CancelFailedReply    = "We could not cancel right now. Please try again."
	CancelledReply       = "Club creation cancelled. Send any message to start again."
	AlreadyCreatedReply  = "This club has already been created."
	EditsNotAppliedReply = "Changes made after it was created were not applied."
)

// Sanitizer cleans inbound text and escapes outbound text.
type Sanitizer interface {
	Clean(in string) (string, error)
	Escape(out string) string
}

// Committer performs the final atomic creation of a club.
type Committer interface {
	Commit(ctx context.Context, req commit.Request) (commit.Result, error)
}

// Enricher produces advisory suggestions. Its output never validates an
// answer or moves a dialogue forward.
type Enricher interface {
	SuggestNames(ctx context.Context, d model.Draft, reason string) ([]string, error)
	SuggestCategories(ctx context.Context, input string) ([]string, error)
	ReviewDraft(ctx context.Context, d model.Draft) ([]string, error)
}

// Deps are the collaborators the engine needs. Enricher is optional.
type Deps struct {
	Sessions  model.SessionRepository
	Clubs     model.ClubRepository
	Validator *fields.Validator
	Committer Committer
	Sanitizer Sanitizer
	Enricher  Enricher
}

// Config selects engine behaviour.
type Config struct {
	Profile        model.Profile
	SessionTTL     time.Duration
	PreviewLength  int
	MaxSuggestions int
}

// ConfigFrom builds a Config from the environment-backed settings.
func ConfigFrom(d model.DialogueConfig, s model.SessionConfig) Config {
	return Config{
		Profile:        d.Profile,
		SessionTTL:     s.TTLDuration(),
		PreviewLength:  d.PreviewLength,
		MaxSuggestions: d.MaxSuggestions,
	}
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator replaces the session id generator used when a turn has none.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) { e.newID = gen }
}

// Engine is the stage machine. One Engine serves every session of a process.
type Engine struct {
	sessions  model.SessionRepository
	validator *fields.Validator
	names     *duplicates.Resolver
	committer Committer
	sanitizer Sanitizer
	enricher  Enricher

	cfg      Config
	confirm  Confirmation
	handlers map[model.Stage]stageHandler
	locks    *sessionLocks
	now      func() time.Time
	newID    func() string
}

func New(deps Deps, cfg Config, opts ...Option) (*Engine, error) {
	switch {
	case deps.Sessions == nil:
		return nil, errors.New("dialogue: session repository is required")
	case deps.Clubs == nil:
		return nil, errors.New("dialogue: club repository is required")
	case deps.Sanitizer == nil:
		return nil, errors.New("dialogue: sanitizer is required")
	}
	if deps.Validator == nil {
		deps.Validator = fields.NewValidator(nil)
	}
	if deps.Committer == nil {
		deps.Committer = commit.NewService(deps.Clubs, deps.Validator)
	}
	if cfg.Profile == "" {
		cfg.Profile = model.ProfileRich
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = model.DefaultSessionTTL
	}
	if cfg.PreviewLength <= 0 {
		cfg.PreviewLength = DefaultPreviewLength
	}
	if cfg.MaxSuggestions <= 0 {
		cfg.MaxSuggestions = duplicates.DefaultRelatedLimit
	}
	rich := cfg.Profile == model.ProfileRich

	e := &Engine{
		sessions:  deps.Sessions,
		validator: deps.Validator,
		names: duplicates.NewResolver(deps.Clubs, deps.Validator.Catalog(),
			duplicates.WithRelated(rich), duplicates.WithRelatedLimit(cfg.MaxSuggestions)),
		committer: deps.Committer,
		sanitizer: deps.Sanitizer,
		cfg:       cfg,
		confirm:   Confirmation{PreviewLength: cfg.PreviewLength},
		locks:     newSessionLocks(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if rich {
		e.enricher = deps.Enricher
	}
	for _, opt := range opts {
		opt(e)
	}
	e.handlers = e.stageHandlers()
	if err := checkHandlers(e.handlers); err != nil {
		return nil, err
	}
	return e, nil
}

// Handle processes one turn. It never returns an error: every failure is
// resolved to a reply with Success false.
func (e *Engine) Handle(ctx context.Context, in model.TurnInput) model.TurnOutput {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = e.newID()
	}
	if strings.TrimSpace(in.Message) == "" {
		return e.reply(model.TurnOutput{SessionID: sessionID, Message: EmptyMessageReply})
	}

	msg, err := e.sanitizer.Clean(in.Message)
	if err != nil {
		logx.Security("sanitizer_rejected").Err(err).Str("session_id", sessionID).Msg("inbound message rejected")
		return e.reply(model.TurnOutput{SessionID: sessionID, Message: RejectedReply})
	}
	if msg == "" {
		return e.reply(model.TurnOutput{SessionID: sessionID, Message: EmptyMessageReply})
	}

	unlock := e.locks.lock(sessionID)
	defer unlock()

	now := e.now()
	loaded, err := e.sessions.Load(ctx, sessionID)
	switch {
	case errors.Is(err, errx.ErrSessionNotFound):
		loaded = nil
	case err != nil:
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to load session")
		return e.reply(model.TurnOutput{SessionID: sessionID, Message: LoadFailedReply})
	}

	st := e.current(sessionID, loaded, now)
	if st.Stage == model.StageDone {
		if classifyReply(msg) == IntentAffirmative {
			return e.output(st, true, outcome{reply: AlreadyCreatedReply})
		}
		st = e.restart(st, now)
	}

	switch globalCommand(msg) {
	case commandCancel:
		return e.cancel(ctx, st, loaded != nil)
	case commandHelp:
		return e.output(st, true, outcome{reply: helpFor(st)})
	}

	handler, ok := e.handlers[st.Stage]
	if !ok {
		// A stored stage this build does not know; start over.
		logx.Warn().Str("session_id", sessionID).Str("stage", st.Stage.String()).Msg("unknown stage; restarting")
		st = e.restart(st, now)
		handler = e.handlers[st.Stage]
	}

	if st.OwnerID == "" {
		st.OwnerID = ownerFor(in.UserID, sessionID)
	}
	before := st.Clone()
	out := handler(ctx, &turn{state: st, msg: msg})
	if out.cancel {
		return e.cancel(ctx, st, loaded != nil)
	}
	if !out.persist {
		return e.output(st, !out.rejected, out)
	}

	st.Progress = ProgressOf(st.Stage)
	st.LastQuestion = st.Stage
	st.UpdatedAt = now
	st.ExpiresAt = now.Add(e.cfg.SessionTTL)
	if err := e.sessions.Save(ctx, st); err != nil {
		return e.saveFailed(before, out, err)
	}

	logx.Debug().
		Str("session_id", sessionID).
		Str("from", before.Stage.String()).
		Str("stage", st.Stage.String()).
		Int64("version", st.Version).
		Msg("turn stored")
	return e.output(st, !out.rejected, out)
}

// current returns the working copy for this turn. Missing, expired and
// cancelled states become a fresh welcome state that keeps the stored
// version so the next write passes the compare-and-swap.
func (e *Engine) current(sessionID string, loaded *model.ConversationState, now time.Time) *model.ConversationState {
	if loaded == nil {
		return model.NewConversationState(sessionID, now, e.cfg.SessionTTL)
	}
	st := loaded.Clone()
	if st.Expired(now) || st.Stage == model.StageCancelled {
		return e.restart(st, now)
	}
	return st
}

func (e *Engine) restart(old *model.ConversationState, now time.Time) *model.ConversationState {
	st := model.NewConversationState(old.SessionID, now, e.cfg.SessionTTL)
	st.Version = old.Version
	return st
}

func (e *Engine) cancel(ctx context.Context, st *model.ConversationState, stored bool) model.TurnOutput {
	if stored {
		if err := e.sessions.Delete(ctx, st.SessionID); err != nil {
			logx.Error().Err(err).Str("session_id", st.SessionID).Msg("failed to delete cancelled session")
			return e.output(st, false, outcome{reply: CancelFailedReply})
		}
	}
	logx.Info().Str("session_id", st.SessionID).Str("stage", st.Stage.String()).Msg("dialogue cancelled")
	cancelled := model.NewConversationState(st.SessionID, e.now(), e.cfg.SessionTTL)
	cancelled.Stage = model.StageCancelled
	return e.output(cancelled, true, outcome{reply: CancelledReply})
}

// saveFailed reports the state as it was before the turn; nothing was stored.
func (e *Engine) saveFailed(before *model.ConversationState, out outcome, err error) model.TurnOutput {
	log := logx.Error()
	reply := SaveFailedReply
	if errors.Is(err, errx.ErrVersionConflict) {
		log = logx.Warn()
		reply = ConflictReply
	}
	log.Err(err).Str("session_id", before.SessionID).Str("stage", before.Stage.String()).Msg("failed to store turn")
	return e.output(before, false, outcome{reply: reply, errorID: out.errorID})
}

// output renders the reply and escapes everything that goes back to the transport.
func (e *Engine) output(st *model.ConversationState, success bool, out outcome) model.TurnOutput {
	progress := ProgressOf(st.Stage)
	res := model.TurnOutput{
		Success:   success,
		Message:   out.reply,
		Stage:     st.Stage.String(),
		SessionID: st.SessionID,
		Progress:  &progress,
		ClubID:    st.ClubID,
		ErrorID:   out.errorID,
	}
	if len(st.Data) > 0 {
		res.Data = make(map[string]string, len(st.Data))
		for k, v := range st.Data {
			res.Data[k] = v
		}
	}
	res.Suggestions = out.suggestions
	return e.reply(res)
}

func (e *Engine) reply(out model.TurnOutput) model.TurnOutput {
	out.Message = e.sanitizer.Escape(out.Message)
	for k, v := range out.Data {
		out.Data[k] = e.sanitizer.Escape(v)
	}
	if len(out.Suggestions) > 0 {
		esc := make([]string, len(out.Suggestions))
		for i, s := range out.Suggestions {
			esc[i] = e.sanitizer.Escape(s)
		}
		out.Suggestions = esc
	}
	return out
}

func ownerFor(userID, sessionID string) string {
	if u := strings.TrimSpace(userID); u != "" {
		return u
	}
	return fmt.Sprintf("session:%s", sessionID)
}
