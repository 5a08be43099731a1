// Package service — authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT) / PasswordService (bcrypt)
//
// Both login paths converge here. Register/Login cover the password path;
// LoginWithGoogle is the find-or-create resolver that reconciles a Google
// profile into the same user table, matched by email. Handlers never touch
// the repository directly and this package never touches HTTP.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/legalpath/legalpath-server/internal/apperror"
	"github.com/legalpath/legalpath-server/internal/auth"
	"github.com/legalpath/legalpath-server/internal/metrics"
	"github.com/legalpath/legalpath-server/internal/model"
	"github.com/legalpath/legalpath-server/internal/repository"
)

// emailPattern is the shape check applied at registration: something before
// an @, something after, and a dot in the domain part. Deliverability is
// not verified.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// minPasswordLen is the registration minimum.
const minPasswordLen = 6

// googleNameFallback is the display name for Google-created accounts whose
// profile carried no name.
const googleNameFallback = "Google User"

// AuthService handles the authentication business logic.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Called from the server's composition root.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user record and the issued bearer token so the
// handler can respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// RegisterInput is the payload for password-path account creation.
type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	CustomID       string
	ProfilePicture string
}

// Register creates a password-path account.
//
// Validation order matches the API contract: required fields, email shape,
// password length. Duplicate detection is NOT a lookup here — the store's
// uniqueness constraints decide, so two concurrent registrations with the
// same email produce exactly one account and one conflict.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" || in.CustomID == "" {
		return nil, s.registerFail(apperror.ValidationFailed("", "Please add all fields"))
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, s.registerFail(apperror.ValidationFailed("email", "Invalid email format"))
	}
	if len(in.Password) < minPasswordLen {
		return nil, s.registerFail(apperror.ValidationFailed("password", "Password must be at least 6 characters"))
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("service/auth: hashing password: %w", err)
	}

	user := &model.User{
		Name:           in.Name,
		Email:          in.Email,
		PasswordHash:   hash,
		CustomID:       in.CustomID,
		ProfilePicture: in.ProfilePicture,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			return nil, s.registerFail(err)
		}
		metrics.Registrations.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("service/auth: creating user (email=%s): %w", in.Email, err)
	}

	token, err := s.tokens.Issue(user.ID, user.Name, user.Email, user.ProfilePicture)
	if err != nil {
		metrics.Registrations.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("customID", user.CustomID),
	)
	metrics.Registrations.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) registerFail(err error) error {
	metrics.Registrations.WithLabelValues(metrics.OutcomeInvalid).Inc()
	return err
}

// Login verifies email/password credentials and issues a token.
//
// ONE FAILURE MESSAGE:
// Unknown email, wrong password, and Google-only accounts (empty stored
// hash, which bcrypt can never match) all return the identical generic
// error. A caller probing this endpoint learns nothing about which accounts
// exist. Read-only — nothing about the user is mutated on login.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	fail := func() error {
		metrics.Logins.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return apperror.InvalidCredentials()
	}

	if email == "" || password == "" {
		return nil, fail()
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, fail()
		}
		metrics.Logins.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("service/auth: looking up user by email: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, fail()
	}

	token, err := s.tokens.Issue(user.ID, user.Name, user.Email, user.ProfilePicture)
	if err != nil {
		metrics.Logins.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in", slog.String("userID", user.ID))
	metrics.Logins.WithLabelValues(metrics.OutcomeSuccess).Inc()

	return &AuthResult{User: user, Token: token}, nil
}

// LoginWithGoogle resolves a verified Google profile to a local account,
// creating or updating it as needed, and issues a token.
//
// RECONCILIATION RULES (last-provider-wins):
//   - match by email — email is the key that unifies the two login paths
//   - existing account: set GoogleID once if empty (permanent link, never
//     reassigned by later logins), overwrite ProfilePicture when Google sent
//     a picture, overwrite Name when Google sent a name
//   - no account: create one with an empty password hash, GoogleID set, and
//     a synthesized CustomID ("google_" + 8 random hex chars)
//
// The method is idempotent under repeated calls with the same profile: the
// second call finds the stored account and re-applies the overwrite rules,
// which is not a no-op (name and picture are refreshed every login) but
// never creates a duplicate or changes the link.
func (s *AuthService) LoginWithGoogle(ctx context.Context, gu *auth.GoogleUser) (*AuthResult, error) {
	if gu == nil {
		metrics.GoogleLogins.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("service/auth: Google user must not be nil")
	}
	if gu.Email == "" {
		// Without an email there is nothing to match on — the account
		// cannot be reconciled with a password registration later.
		metrics.GoogleLogins.WithLabelValues(metrics.OutcomeInvalid).Inc()
		return nil, apperror.ValidationFailed("email", "Google account has no email")
	}

	user, err := s.users.GetByEmail(ctx, gu.Email)
	switch {
	case err == nil:
		if user.GoogleID == "" {
			user.GoogleID = gu.Sub
		}
		if gu.Picture != "" {
			user.ProfilePicture = gu.Picture
		}
		if gu.Name != "" {
			user.Name = gu.Name
		}
		if err := s.users.Update(ctx, user); err != nil {
			metrics.GoogleLogins.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, fmt.Errorf("service/auth: updating user %s from Google profile: %w", user.ID, err)
		}
		s.logger.Info("google login: existing user",
			slog.String("userID", user.ID),
			slog.Bool("linked", user.GoogleID == gu.Sub),
		)

	case errors.Is(err, apperror.ErrNotFound):
		name := gu.Name
		if name == "" {
			name = googleNameFallback
		}
		customID, err := googleCustomID()
		if err != nil {
			metrics.GoogleLogins.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, fmt.Errorf("service/auth: generating custom id: %w", err)
		}
		user = &model.User{
			Name:           name,
			Email:          gu.Email,
			PasswordHash:   "", // no password for Google-created accounts
			CustomID:       customID,
			ProfilePicture: gu.Picture,
			GoogleID:       gu.Sub,
		}
		// A customId suffix collision is astronomically unlikely but not
		// impossible; it surfaces as the store's conflict error rather
		// than being retried here.
		if err := s.users.Create(ctx, user); err != nil {
			metrics.GoogleLogins.WithLabelValues(metrics.OutcomeError).Inc()
			return nil, fmt.Errorf("service/auth: creating user from Google profile: %w", err)
		}
		s.logger.Info("google login: new user",
			slog.String("userID", user.ID),
			slog.String("customID", user.CustomID),
		)

	default:
		metrics.GoogleLogins.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("service/auth: looking up user by email: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Name, user.Email, user.ProfilePicture)
	if err != nil {
		metrics.GoogleLogins.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	metrics.GoogleLogins.WithLabelValues(metrics.OutcomeSuccess).Inc()
	return &AuthResult{User: user, Token: token}, nil
}

// GetUserByID returns the user for the given internal ID. Used by /api/me
// after the middleware validates the bearer token.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, fmt.Errorf("service/auth: user ID must not be empty")
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/auth: fetching user %s: %w", id, err)
	}

	return user, nil
}

// googleCustomID synthesizes the customId for a Google-created account:
// "google_" followed by 8 hex characters from 4 cryptographically random
// bytes.
func googleCustomID() (string, error) {
	var b [4]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return "google_" + hex.EncodeToString(b[:]), nil
}
