package errx

import (
	"errors"
	"net/http"

	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to the unified error type with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return &AppError{Err: ErrSessionNotFound, Status: http.StatusNotFound, Kind: KindPersistence, Message: RedisNotFoundMessage}
	}
	if errors.Is(err, redis.TxFailedErr) {
		return &AppError{Err: ErrVersionConflict, Status: http.StatusConflict, Kind: KindPersistence, Message: RedisErrorMessage}
	}

	return &AppError{Err: err, Status: http.StatusBadGateway, Kind: KindPersistence, Message: RedisErrorMessage}
}
