package errx

import (
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// WrapDB maps gorm errors to the unified error type.
func WrapDB(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &AppError{Err: err, Status: http.StatusNotFound, Kind: KindCommit, Message: DatabaseNotFoundMessage}
	}
	if errors.Is(err, ErrDuplicateName) {
		return &AppError{Err: err, Status: http.StatusConflict, Kind: KindConflict, Message: "duplicate club name"}
	}
	return &AppError{Err: err, Status: http.StatusInternalServerError, Kind: KindCommit, Message: DatabaseErrorMessage}
}
