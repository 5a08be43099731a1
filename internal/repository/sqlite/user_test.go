package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/legalpath/legalpath-server/internal/apperror"
	"github.com/legalpath/legalpath-server/internal/model"
)

// newTestDB returns a DB backed by an in-memory SQLite instance with the
// schema migrated. Each test gets its own database.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// createTestUser creates a user and fails the test if it errors.
func createTestUser(t *testing.T, db *DB, email, customID string) *model.User {
	t.Helper()
	user := &model.User{
		Name:         "Test User",
		Email:        email,
		PasswordHash: "$2a$04$fakehashfakehashfakehash",
		CustomID:     customID,
	}
	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestUserCreate(t *testing.T) {
	db := newTestDB(t)

	user := &model.User{
		Name:     "Ann",
		Email:    "ann@x.com",
		CustomID: "ann01",
	}

	if err := db.Create(context.Background(), user); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// The store assigns ID and timestamps in place.
	if user.ID == "" {
		t.Error("Create() did not set user.ID")
	}
	if user.CreatedAt.IsZero() {
		t.Error("Create() did not set user.CreatedAt")
	}
	if user.UpdatedAt.IsZero() {
		t.Error("Create() did not set user.UpdatedAt")
	}
}

func TestUserCreate_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "ann@x.com", "ann01")

	duplicate := &model.User{
		Name:     "Other Ann",
		Email:    "ann@x.com", // same email, different customId
		CustomID: "ann02",
	}
	err := db.Create(context.Background(), duplicate)
	if err == nil {
		t.Fatal("Create() should fail for a duplicate email")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_DuplicateCustomID(t *testing.T) {
	db := newTestDB(t)
	createTestUser(t, db, "ann@x.com", "ann01")

	duplicate := &model.User{
		Name:     "Bob",
		Email:    "bob@x.com",
		CustomID: "ann01", // same customId, different email
	}
	err := db.Create(context.Background(), duplicate)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict", err)
	}
}

func TestUserCreate_DuplicateGoogleID(t *testing.T) {
	db := newTestDB(t)

	first := &model.User{Name: "A", Email: "a@x.com", CustomID: "a1", GoogleID: "g-123"}
	if err := db.Create(context.Background(), first); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	second := &model.User{Name: "B", Email: "b@x.com", CustomID: "b1", GoogleID: "g-123"}
	err := db.Create(context.Background(), second)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Create() error = %v, want ErrConflict for duplicate google_id", err)
	}
}

func TestUserCreate_ManyUsersWithoutGoogleID(t *testing.T) {
	db := newTestDB(t)

	// The google_id unique index is partial: any number of rows may have
	// an empty google_id.
	createTestUser(t, db, "a@x.com", "a1")
	createTestUser(t, db, "b@x.com", "b1")
	createTestUser(t, db, "c@x.com", "c1")
}

// =========================================================================
// GET TESTS
// =========================================================================

func TestUserGetByEmail(t *testing.T) {
	db := newTestDB(t)
	created := createTestUser(t, db, "ann@x.com", "ann01")

	got, err := db.GetByEmail(context.Background(), "ann@x.com")
	if err != nil {
		t.Fatalf("GetByEmail() error = %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail() ID = %q, want %q", got.ID, created.ID)
	}
	if got.CustomID != "ann01" {
		t.Errorf("GetByEmail() CustomID = %q, want %q", got.CustomID, "ann01")
	}
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByEmail(context.Background(), "nobody@x.com")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByEmail() error = %v, want ErrNotFound", err)
	}
}

func TestUserGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUserUpdate_LinksGoogleID(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "ann@x.com", "ann01")
	originalUpdatedAt := user.UpdatedAt

	user.GoogleID = "g-999"
	user.Name = "Ann G"
	user.ProfilePicture = "https://pics.example/ann.png"
	if err := db.Update(context.Background(), user); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err := db.GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.GoogleID != "g-999" {
		t.Errorf("GoogleID = %q, want %q", got.GoogleID, "g-999")
	}
	if got.Name != "Ann G" {
		t.Errorf("Name = %q, want %q", got.Name, "Ann G")
	}
	if got.ProfilePicture != "https://pics.example/ann.png" {
		t.Errorf("ProfilePicture = %q", got.ProfilePicture)
	}
	if got.UpdatedAt.Before(originalUpdatedAt) {
		t.Errorf("UpdatedAt went backwards: %v -> %v", originalUpdatedAt, got.UpdatedAt)
	}
}

func TestUserUpdate_GoogleIDConflict(t *testing.T) {
	db := newTestDB(t)

	linked := &model.User{Name: "A", Email: "a@x.com", CustomID: "a1", GoogleID: "g-1"}
	if err := db.Create(context.Background(), linked); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	other := createTestUser(t, db, "b@x.com", "b1")
	other.GoogleID = "g-1" // already held by the first user
	err := db.Update(context.Background(), other)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Update() error = %v, want ErrConflict", err)
	}
}

func TestUserUpdate_MissingUser(t *testing.T) {
	db := newTestDB(t)

	ghost := &model.User{ID: "no-such-id", Name: "Ghost"}
	err := db.Update(context.Background(), ghost)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() error = %v, want ErrNotFound", err)
	}
}
