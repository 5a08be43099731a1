// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents an account reachable through either login path.
//
// Email is the cross-path matching key: a password registration and a later
// Google sign-in with the same address converge on this one row. GoogleID is
// filled in the first time the Google path sees the account and is never
// overwritten afterwards — re-linking to a different Google subject is not
// supported.
//
// WHY CustomID AND ID?
// ID is our internal primary key (an xid, assigned by the store). CustomID
// is the user-facing identifier the SPA displays and lets people pick at
// registration. Accounts created by a Google sign-in never chose one, so the
// resolver synthesizes "google_" plus a random hex suffix.
//
// PasswordHash is a bcrypt hash, empty for accounts created via Google.
// An empty hash can never verify, so those accounts cannot log in with a
// password unless they set one through some future flow.
type User struct {
	ID             string    `json:"id"             db:"id"`
	Name           string    `json:"name"           db:"name"`
	Email          string    `json:"email"          db:"email"`
	PasswordHash   string    `json:"-"              db:"password_hash"`
	CustomID       string    `json:"customId"       db:"custom_id"`
	ProfilePicture string    `json:"profilePicture" db:"profile_picture"`
	GoogleID       string    `json:"-"              db:"google_id"` // empty until the first Google login
	CreatedAt      time.Time `json:"createdAt"      db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt"      db:"updated_at"`
}
