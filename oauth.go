package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// OAuthIdentity is the provider profile the callback flow needs: enough to
// map the login onto a local account, nothing more.
type OAuthIdentity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// identityExchanger abstracts the provider's code-for-identity exchange so
// handler tests can substitute a fake without touching the network.
type identityExchanger interface {
	Enabled() bool
	AuthCodeURL(state string) string
	FetchIdentity(ctx context.Context, code string) (OAuthIdentity, error)
}

type googleExchanger struct {
	conf        *oauth2.Config
	userinfoURL string
}

func newGoogleExchanger(cfg Config) *googleExchanger {
	return &googleExchanger{
		conf: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		userinfoURL: googleUserinfoURL,
	}
}

func (g *googleExchanger) Enabled() bool {
	return g.conf.ClientID != "" && g.conf.ClientSecret != ""
}

func (g *googleExchanger) AuthCodeURL(state string) string {
	return g.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// FetchIdentity exchanges the authorization code and resolves the profile
// behind it. Provider error bodies stay server-side; callers report failures
// generically.
func (g *googleExchanger) FetchIdentity(ctx context.Context, code string) (OAuthIdentity, error) {
	tok, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return OAuthIdentity{}, fmt.Errorf("code exchange failed: %w", err)
	}
	resp, err := g.conf.Client(ctx, tok).Get(g.userinfoURL)
	if err != nil {
		return OAuthIdentity{}, fmt.Errorf("userinfo request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return OAuthIdentity{}, fmt.Errorf("userinfo request returned %d", resp.StatusCode)
	}
	var ident OAuthIdentity
	if err := json.NewDecoder(resp.Body).Decode(&ident); err != nil {
		return OAuthIdentity{}, fmt.Errorf("userinfo decode failed: %w", err)
	}
	if ident.Email == "" {
		return OAuthIdentity{}, fmt.Errorf("provider returned no email")
	}
	return ident, nil
}
