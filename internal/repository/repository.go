// Package repository defines the storage interfaces the service layer
// depends on. Concrete implementations live in subpackages (sqlite).
package repository

import (
	"context"

	"github.com/legalpath/legalpath-server/internal/model"
)

// UserRepository is the persistence contract for user accounts.
//
// Uniqueness of email, custom_id, and google_id is enforced by the store,
// not by callers: two concurrent creates with the same email must end with
// exactly one success and one conflict error. Callers therefore treat a
// conflict from Create/Update as authoritative — no read-then-write check
// can replace it.
type UserRepository interface {
	// Create inserts a new user, assigning ID/CreatedAt/UpdatedAt.
	// Returns apperror.ErrConflict when email, customId, or googleId is
	// already taken.
	Create(ctx context.Context, user *model.User) error

	// GetByID returns the user with the given internal ID, or
	// apperror.ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.User, error)

	// GetByEmail returns the user with the given email (exact match), or
	// apperror.ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// Update persists name, profile picture, and google_id changes and
	// bumps UpdatedAt. Returns apperror.ErrConflict if the google_id is
	// held by another user.
	Update(ctx context.Context, user *model.User) error
}
