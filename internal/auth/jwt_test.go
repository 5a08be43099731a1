package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// newTestTokenService creates a TokenService with a fixed, known secret so
// tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short")
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_ValidSecret(t *testing.T) {
	_, err := NewTokenService("this-is-16-chars")
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
}

// =========================================================================
// ISSUE TESTS
// =========================================================================

func TestIssue_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Issue("user-abc", "Ann", "ann@x.com", "https://pics.example/ann.png")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if claims.ID != "user-abc" {
		t.Errorf("claims.ID = %q, want %q", claims.ID, "user-abc")
	}
	if claims.Name != "Ann" {
		t.Errorf("claims.Name = %q, want %q", claims.Name, "Ann")
	}
	if claims.Email != "ann@x.com" {
		t.Errorf("claims.Email = %q, want %q", claims.Email, "ann@x.com")
	}
	if claims.ProfilePicture != "https://pics.example/ann.png" {
		t.Errorf("claims.ProfilePicture = %q", claims.ProfilePicture)
	}
}

func TestIssue_FallbackLiterals(t *testing.T) {
	ts := newTestTokenService(t)

	// Missing name/email must be replaced with the fixed fallbacks and a
	// missing picture with the empty string — the payload never has
	// absent fields.
	token, err := ts.Issue("user-1", "", "", "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	if claims.Name != "User Fallback" {
		t.Errorf("claims.Name = %q, want fallback %q", claims.Name, "User Fallback")
	}
	if claims.Email != "no-email@example.com" {
		t.Errorf("claims.Email = %q, want fallback %q", claims.Email, "no-email@example.com")
	}
	if claims.ProfilePicture != "" {
		t.Errorf("claims.ProfilePicture = %q, want empty", claims.ProfilePicture)
	}
}

func TestIssue_ExpiryIs30Days(t *testing.T) {
	ts := newTestTokenService(t)

	before := time.Now()
	token, err := ts.Issue("user-1", "Ann", "ann@x.com", "")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	claims, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	want := before.Add(30 * 24 * time.Hour)
	got := claims.ExpiresAt.Time
	if diff := got.Sub(want); diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiry = %v, want ~%v (diff %v)", got, want, diff)
	}
}

func TestIssue_DifferentUsersGetDifferentTokens(t *testing.T) {
	ts := newTestTokenService(t)

	token1, _ := ts.Issue("user-aaa", "A", "a@x.com", "")
	token2, _ := ts.Issue("user-bbb", "B", "b@x.com", "")

	if token1 == token2 {
		t.Error("Issue() returned identical tokens for different users")
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_ExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.IssueWithTTL("user-1", "Ann", "ann@x.com", "", -1*time.Second)
	if err != nil {
		t.Fatalf("IssueWithTTL() error = %v", err)
	}

	_, err = ts.Validate(token)
	if err == nil {
		t.Fatal("Validate() should return an error for an expired token")
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Issue("user-1", "Ann", "ann@x.com", "")
	tampered := token[:len(token)-3] + "xxx"

	_, err := ts.Validate(tampered)
	if err == nil {
		t.Fatal("Validate() should return an error for a tampered token")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!")
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!")

	token, _ := ts1.Issue("user-1", "Ann", "ann@x.com", "")

	_, err := ts2.Validate(token)
	if err == nil {
		t.Fatal("Validate() should fail when using a different secret")
	}
}

func TestValidate_WrongIssuer(t *testing.T) {
	ts := newTestTokenService(t)

	// Token signed with our secret but a foreign issuer must be rejected.
	c := Claims{
		ID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			Issuer:    "someone-else",
		},
	}
	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("test-secret-at-least-16-chars!!"))
	if err != nil {
		t.Fatalf("signing: %v", err)
	}

	if _, err := ts.Validate(foreign); err == nil {
		t.Fatal("Validate() should reject tokens from other issuers")
	}
}

func TestValidate_GarbageString(t *testing.T) {
	ts := newTestTokenService(t)

	for _, bad := range []string{"", "not.a.jwt", "a.b.c.d"} {
		if _, err := ts.Validate(bad); err == nil {
			t.Errorf("Validate(%q) should return an error", bad)
		}
	}
}
