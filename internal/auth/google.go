package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// userinfoURL is Google's OpenID userinfo endpoint. Both login flows end
// here: the server-side code flow after exchanging the authorization code,
// and the client-side flow that hands us an access token directly.
const userinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleUser is the portion of the userinfo response we care about.
//
// Sub is Google's stable subject identifier for the account — it never
// changes, unlike email, which a user can swap on their Google account.
type GoogleUser struct {
	Sub     string `json:"sub"`     // Google's stable account id
	Email   string `json:"email"`   // may be absent if the scope was denied
	Name    string `json:"name"`    // display name, may be absent
	Picture string `json:"picture"` // avatar URL, may be absent
}

// GoogleConfig holds the OAuth client registration for the Google flow.
// It is explicit constructor input — nothing in this package reads process
// environment or package-level state.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

// GoogleProvider wraps golang.org/x/oauth2 for the Google Authorization
// Code flow and for verifying client-obtained access tokens.
//
// OAUTH 2.0 AUTHORIZATION CODE FLOW:
//  1. We redirect the browser to Google's consent screen with our ClientID
//     and the profile+email scopes
//  2. Google redirects back to CallbackURL with a short-lived code
//  3. We exchange the code for an access token (server-to-server, using the
//     ClientSecret — the token never touches the browser)
//  4. We call the userinfo endpoint with that token to get the profile
//
// The SPA also supports a client-driven flow where Google's JS SDK hands
// the browser an access token and the browser posts it to us; in that case
// we skip straight to step 4 (VerifyAccessToken).
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a GoogleProvider from the given client
// registration. CallbackURL must exactly match an authorized redirect URI
// configured in the Google Cloud console.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL returns the consent-screen URL to redirect the user to.
//
// The state is a random string stored in a short-lived cookie before the
// redirect; the callback handler verifies Google echoed the same value,
// which blocks CSRF-initiated logins.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange completes the code flow: trades the authorization code for an
// access token, then fetches the user's profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that attaches the
	// bearer token to every request.
	client := p.config.Client(ctx, oauthToken)
	return fetchUserinfo(ctx, client)
}

// VerifyAccessToken validates a client-obtained Google access token by
// fetching the profile it grants access to. A token Google rejects (expired,
// revoked, or simply garbage) comes back as a non-2xx from the userinfo
// endpoint, which we surface as an error — callers map it to the same
// generic failure as bad credentials, and nothing is retried.
func (p *GoogleProvider) VerifyAccessToken(ctx context.Context, accessToken string) (*GoogleUser, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	return fetchUserinfo(ctx, client)
}

// fetchUserinfo calls the userinfo endpoint with an already-authorized
// client and decodes the profile.
func fetchUserinfo(ctx context.Context, client *http.Client) (*GoogleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("auth: building userinfo request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo returned status %d", resp.StatusCode)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("auth: decoding userinfo response: %w", err)
	}

	if gu.Sub == "" {
		return nil, fmt.Errorf("auth: Google returned a profile without a subject id")
	}

	return &gu, nil
}
