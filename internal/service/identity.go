package service

import (
	"errors"

	"github.com/lshigami/examroom/internal/apperror"
	"github.com/lshigami/examroom/internal/model"
	"github.com/lshigami/examroom/internal/repository"
)

// Identity is the authenticated caller, resolved from the bearer token.
type Identity struct {
	UserID    uint
	Role      model.Role
	ClassName string
}

func (id Identity) require(role model.Role) error {
	if id.UserID == 0 {
		return apperror.Unauthenticated("authentication required")
	}
	if id.Role != role {
		return apperror.Forbidden("only " + string(role) + " accounts may perform this action")
	}
	return nil
}

// storeErr turns a repository error into the matching application error.
func storeErr(err error, what string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound("%s %d not found", what, id)
	}
	return apperror.Internal("database error", err)
}
