package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/legalpath/legalpath-server/internal/apperror"
	"github.com/legalpath/legalpath-server/internal/model"
	"github.com/legalpath/legalpath-server/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, name, email, password_hash, custom_id, profile_picture, google_id, created_at, updated_at`

// Create inserts a new user and assigns ID and timestamps in place.
//
// The INSERT is attempted directly — no prior existence check. If email,
// custom_id, or a non-empty google_id is already taken, SQLite rejects the
// row and we map that to a conflict error. Doing it this way (instead of
// SELECT-then-INSERT) means two concurrent registrations with the same
// email end with exactly one row: the constraint, not application code, is
// the arbiter.
func (db *DB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.CustomID,
		user.ProfilePicture,
		user.GoogleID,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User already exists")
		}
		return fmt.Errorf("sqlite: inserting user (email=%s): %w", user.Email, err)
	}

	return nil
}

// GetByID retrieves a user by internal ID.
// Returns apperror.ErrNotFound if no user exists with that ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.User, error) {
	return db.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail retrieves a user by exact email match.
// Returns apperror.ErrNotFound if no user exists with that email.
func (db *DB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return db.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// Update persists the mutable fields (name, profile picture, google_id) and
// bumps UpdatedAt. Email, custom_id, and password_hash do not change through
// this path.
//
// A google_id collision — the partial unique index rejecting a subject id
// already linked to another row — comes back as a conflict, not a generic
// failure, so callers can tell "linked elsewhere" apart from "store down".
func (db *DB) Update(ctx context.Context, user *model.User) error {
	user.UpdatedAt = time.Now().UTC()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users SET name = ?, profile_picture = ?, google_id = ?, updated_at = ?
		 WHERE id = ?`,
		user.Name,
		user.ProfilePicture,
		user.GoogleID,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("Google account already linked to another user")
		}
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
	}
	if affected == 0 {
		return apperror.NotFound("user", user.ID)
	}

	return nil
}

// getOne runs a single-row user query and scans it.
func (db *DB) getOne(ctx context.Context, query string, arg any) (*model.User, error) {
	var u model.User

	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.PasswordHash,
		&u.CustomID,
		&u.ProfilePicture,
		&u.GoogleID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", fmt.Sprint(arg))
		}
		return nil, fmt.Errorf("sqlite: getting user: %w", err)
	}

	return &u, nil
}
