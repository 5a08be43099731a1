// Package auth provides bearer token issuance, password hashing, and the
// Google OAuth client for the LegalPath API.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User registers or logs in with email/password, or signs in with Google
// 2. The service layer resolves/creates the account and asks TokenService
//    for a signed bearer token
// 3. The SPA stores the token and replays it in the Authorization header
// 4. RequireAuth validates the token on protected routes — no server-side
//    session store, the signature and expiry are the only validity checks
//
// WHY JWT?
// The token is self-contained: id, display name, email, and picture travel
// inside the signed payload, so the SPA can render the logged-in state
// without a follow-up request and the server needs no session storage.
// The signature ensures nobody can tamper with it without the secret key.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenTTL is how long an issued bearer token stays valid.
// There is no refresh or revocation — after 30 days the user signs in again.
const tokenTTL = 30 * 24 * time.Hour

const issuer = "legalpath"

// Fallback literals substituted for missing profile fields so the token
// payload never carries an absent key. The SPA reads these fields straight
// out of the decoded payload.
const (
	fallbackName  = "User Fallback"
	fallbackEmail = "no-email@example.com"
)

// Claims is the bearer token payload: a minimal user profile plus the
// registered expiry/issuer fields.
type Claims struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	ProfilePicture string `json:"profilePicture"`
	jwt.RegisteredClaims
}

// TokenService issues and validates signed bearer tokens.
//
// It holds the HMAC secret used for both operations. The secret is
// process-wide configuration, injected at construction.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Issue creates and signs a bearer token for the given user profile.
//
// Missing name/email are replaced with fixed fallback literals and a
// missing picture with the empty string, so every payload has all four
// fields. Expiry is 30 days from now.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key signs and
// verifies, which is all a single-server deployment needs.
func (s *TokenService) Issue(id, name, email, picture string) (string, error) {
	return s.IssueWithTTL(id, name, email, picture, tokenTTL)
}

// IssueWithTTL issues a token with a custom lifetime. Tests use it to mint
// already-expired tokens; production callers use Issue.
func (s *TokenService) IssueWithTTL(id, name, email, picture string, ttl time.Duration) (string, error) {
	if name == "" {
		name = fallbackName
	}
	if email == "" {
		email = fallbackEmail
	}

	now := time.Now()
	c := Claims{
		ID:             id,
		Name:           name,
		Email:          email,
		ProfilePicture: picture,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a bearer token string, returning its claims.
//
// Checks performed by the jwt library:
//   - signature is valid (token wasn't tampered with)
//   - token is not expired
//   - issuer matches ours (rejects tokens minted by other apps)
//   - algorithm is HS256 — jwt.WithValidMethods closes the algorithm
//     confusion hole where an attacker submits an unsigned "none" token
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("auth: token expired")
		}
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	if c.ID == "" {
		return nil, fmt.Errorf("auth: token has no user id")
	}

	return c, nil
}
