package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clubchat-core/server/internal/agent/model"
	errx "github.com/clubchat-core/server/internal/core/error"
	logx "github.com/clubchat-core/server/pkg/logger"
)

const DefaultSessionKeyPrefix = "club_session"

// RedisSessionRepository keeps one JSON document per session with a Redis TTL
// matching the state's expires_at. Writes are guarded by WATCH on the key.
type RedisSessionRepository struct {
	rdb    redis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewRedisSessionRepository(rdb redis.UniversalClient, prefix string) *RedisSessionRepository {
	if prefix == "" {
		prefix = DefaultSessionKeyPrefix
	}
	return &RedisSessionRepository{rdb: rdb, prefix: prefix, now: time.Now}
}

func (r *RedisSessionRepository) sessionKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.prefix, sessionID)
}

func (r *RedisSessionRepository) Load(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	key := r.sessionKey(sessionID)

	raw, err := r.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logx.Error().Err(err).Str("key", key).Msg("failed to load session from redis")
		}
		return nil, errx.WrapRedis(err)
	}

	var state model.ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to unmarshal session")
		return nil, errx.Persistence(err, "corrupt session state")
	}
	if state.Data == nil {
		state.Data = map[string]string{}
	}
	return &state, nil
}

func (r *RedisSessionRepository) Save(ctx context.Context, state *model.ConversationState) error {
	if state == nil || state.SessionID == "" {
		return errx.Persistence(errors.New("empty session"), "cannot save session")
	}
	key := r.sessionKey(state.SessionID)

	ttl := state.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return errx.Persistence(errx.ErrSessionNotFound, "session already expired")
	}

	next := *state
	next.Version = state.Version + 1
	b, err := json.Marshal(&next)
	if err != nil {
		logx.Error().Err(err).Str("session_id", state.SessionID).Msg("failed to marshal session")
		return fmt.Errorf("marshal session: %w", err)
	}

	txf := func(tx *redis.Tx) error {
		current, err := storedVersion(ctx, tx, key)
		if err != nil {
			return err
		}
		if current != state.Version {
			return errx.ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, b, ttl)
			return nil
		})
		return err
	}

	if err := r.rdb.Watch(ctx, txf, key); err != nil {
		if errors.Is(err, errx.ErrVersionConflict) {
			logx.Warn().Str("key", key).Int64("version", state.Version).Msg("session version conflict")
			return errx.WrapRedis(redis.TxFailedErr)
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to save session to redis")
		return errx.WrapRedis(err)
	}

	state.Version = next.Version
	return nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, sessionID string) error {
	key := r.sessionKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func storedVersion(ctx context.Context, tx *redis.Tx, key string) (int64, error) {
	raw, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var head struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return 0, fmt.Errorf("unmarshal stored version: %w", err)
	}
	return head.Version, nil
}

var _ model.SessionRepository = (*RedisSessionRepository)(nil)
