package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/rs/xid"

	"github.com/legalpath/legalpath-server/internal/apperror"
	"github.com/legalpath/legalpath-server/internal/auth"
	"github.com/legalpath/legalpath-server/internal/model"
	"github.com/legalpath/legalpath-server/internal/service"
)

// Redirect error codes appended to the SPA URL when the Google flow fails.
// The SPA shows a matching message; the codes are part of its contract.
const (
	errCodeGoogleAuthFailed = "GoogleAuthFailed"
	errCodeUserNotFound     = "UserNotFound"
	errCodeServerError      = "ServerError"
)

// AuthHandler exposes the authentication endpoints.
//
//	POST /api/auth/register        password-path account creation
//	POST /api/auth/login           password login
//	GET  /api/auth/google          redirect to Google's consent screen
//	GET  /api/auth/google/callback code-flow completion, redirects to SPA
//	POST /api/auth/google/token    client-token flow (Google JS SDK)
//	POST /api/auth/logout          stateless acknowledgment
//	GET  /api/me                   current profile (RequireAuth)
//
// google may be nil when the OAuth client is not configured; the server
// only registers the Google routes when it is present.
type AuthHandler struct {
	svc       *service.AuthService
	google    *auth.GoogleProvider
	clientURL string // SPA base URL for callback redirects
	logger    *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(
	svc *service.AuthService,
	google *auth.GoogleProvider,
	clientURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		svc:       svc,
		google:    google,
		clientURL: clientURL,
		logger:    logger,
	}
}

// authResponse is the success body shared by register, login, and the
// Google token flow: the public profile plus the bearer token.
type authResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	CustomID       string `json:"customId"`
	ProfilePicture string `json:"profilePicture"`
	Token          string `json:"token"`
}

func newAuthResponse(u *model.User, token string) authResponse {
	return authResponse{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		CustomID:       u.CustomID,
		ProfilePicture: u.ProfilePicture,
		Token:          token,
	}
}

// HandleRegister creates a password-path account.
//
// HTTP: POST /api/auth/register
// Body: {"name","email","password","customId","profilePicture"?}
// 201 on success; 400 with a message on validation failure or duplicate
// email/customId.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name           string `json:"name"`
		Email          string `json:"email"`
		Password       string `json:"password"`
		CustomID       string `json:"customId"`
		ProfilePicture string `json:"profilePicture"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "Invalid request body"))
		return
	}

	result, err := h.svc.Register(r.Context(), service.RegisterInput{
		Name:           req.Name,
		Email:          req.Email,
		Password:       req.Password,
		CustomID:       req.CustomID,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		h.logger.Info("register rejected", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, newAuthResponse(result.User, result.Token))
}

// HandleLogin verifies email/password credentials.
//
// HTTP: POST /api/auth/login
// 200 with profile+token, or 400 {"message":"Invalid credentials"} — the
// same body whether the email is unknown or the password is wrong.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "Invalid request body"))
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, apperror.ValidationFailed("", "Please provide email and password"))
		return
	}

	result, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthResponse(result.User, result.Token))
}

// HandleGoogleStart redirects the browser to Google's consent screen.
//
// HTTP: GET /api/auth/google
//
// CSRF PROTECTION VIA STATE:
// A random state value goes into a short-lived HttpOnly cookie before the
// redirect; the callback verifies Google echoed it back. An attacker can't
// complete a flow they didn't start from this browser.
func (h *AuthHandler) HandleGoogleStart(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   600, // 10 minutes — enough to click through the consent screen
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback completes the code flow.
//
// HTTP: GET /api/auth/google/callback?code=xxx&state=yyy
//
// Unlike the JSON endpoints, failures here redirect back to the SPA with an
// ?error=<code> query parameter — the browser is mid-navigation, so a JSON
// body would just be rendered as text. Success redirects with ?token=.
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("google callback: state mismatch or missing")
		h.redirectError(w, r, errCodeGoogleAuthFailed)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:   "oauth_state",
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.logger.Info("google callback: provider returned error", slog.String("error", errParam))
		h.redirectError(w, r, errCodeGoogleAuthFailed)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.redirectError(w, r, errCodeGoogleAuthFailed)
		return
	}

	gu, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("google callback: exchange failed", slog.String("error", err.Error()))
		h.redirectError(w, r, errCodeGoogleAuthFailed)
		return
	}

	result, err := h.svc.LoginWithGoogle(r.Context(), gu)
	if err != nil {
		h.logger.Error("google callback: resolve failed", slog.String("error", err.Error()))
		switch {
		case errors.Is(err, apperror.ErrValidation):
			h.redirectError(w, r, errCodeGoogleAuthFailed)
		case errors.Is(err, apperror.ErrNotFound):
			h.redirectError(w, r, errCodeUserNotFound)
		default:
			h.redirectError(w, r, errCodeServerError)
		}
		return
	}

	h.logger.Info("google callback: authenticated",
		slog.String("userID", result.User.ID),
	)

	// Hand the token to the SPA in the redirect query; the SPA stores it
	// and strips it from the location bar.
	redirect := h.clientURL + "?token=" + url.QueryEscape(result.Token)
	http.Redirect(w, r, redirect, http.StatusSeeOther)
}

// HandleGoogleToken is the client-driven Google flow: the SPA obtained an
// access token from Google's JS SDK and posts it here, bypassing the
// redirect dance.
//
// HTTP: POST /api/auth/google/token
// Body: {"token": "<google access token>"}
// Same success/error shape as /login.
func (h *AuthHandler) HandleGoogleToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "Invalid request body"))
		return
	}
	if req.Token == "" {
		writeError(w, apperror.ValidationFailed("token", "No token provided"))
		return
	}

	// A token Google rejects is indistinguishable, to us, from bad
	// credentials — same 400, no retry.
	gu, err := h.google.VerifyAccessToken(r.Context(), req.Token)
	if err != nil {
		h.logger.Info("google token: verification failed", slog.String("error", err.Error()))
		writeError(w, apperror.ValidationFailed("token", "Invalid Google Token"))
		return
	}

	result, err := h.svc.LoginWithGoogle(r.Context(), gu)
	if err != nil {
		h.logger.Error("google token: resolve failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newAuthResponse(result.User, result.Token))
}

// HandleLogout acknowledges a logout.
//
// HTTP: POST /api/auth/logout
//
// Tokens are stateless and the SPA holds its own copy, so "logout" is the
// client discarding the token. The endpoint exists so the SPA has something
// to call; the token stays technically valid until its expiry.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/me
// Auth: RequireAuth middleware has already validated the bearer token and
// put the userID in the request context.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		// Unreachable on a RequireAuth-protected route, but be safe.
		writeError(w, apperror.Unauthorized("valid authentication required"))
		return
	}

	user, err := h.svc.GetUserByID(r.Context(), userID)
	if err != nil {
		h.logger.Error("me: user lookup failed", slog.String("userID", userID))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// redirectError sends the browser back to the SPA with an error code.
func (h *AuthHandler) redirectError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.clientURL+"?error="+url.QueryEscape(code), http.StatusSeeOther)
}
