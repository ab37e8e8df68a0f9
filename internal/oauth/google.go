// Package oauth verifies third-party identity tokens.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"clubcorra/internal/config"
)

var (
	// ErrInvalidIDToken means the provider rejected the token or it was issued for another client
	ErrInvalidIDToken = errors.New("invalid identity token")
	// ErrNotConfigured means no client id is set
	ErrNotConfigured = errors.New("google sign-in is not configured")
)

// Identity is the verified subject of an identity token
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
	GivenName     string
	FamilyName    string
}

// Verifier checks an identity token and returns who it belongs to
type Verifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens against the tokeninfo endpoint
type GoogleVerifier struct {
	client   *resty.Client
	url      string
	clientID string
}

// tokenInfo mirrors the tokeninfo response; Google encodes booleans as strings
type tokenInfo struct {
	Aud           string `json:"aud"`
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
}

// NewGoogleVerifier returns a verifier for the configured client id
func NewGoogleVerifier(cfg config.OAuthConfig) *GoogleVerifier {
	return &GoogleVerifier{
		client:   resty.New().SetTimeout(10 * time.Second),
		url:      cfg.GoogleTokenInfoURL,
		clientID: cfg.GoogleClientID,
	}
}

func (v *GoogleVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if v.clientID == "" {
		return nil, ErrNotConfigured
	}
	if idToken == "" {
		return nil, ErrInvalidIDToken
	}
	var info tokenInfo
	resp, err := v.client.R().
		SetContext(ctx).
		SetQueryParam("id_token", idToken).
		SetResult(&info).
		Get(v.url)
	if err != nil {
		return nil, fmt.Errorf("google tokeninfo: %w", err)
	}
	if resp.IsError() {
		return nil, ErrInvalidIDToken
	}
	if info.Aud != v.clientID || info.Sub == "" {
		return nil, ErrInvalidIDToken
	}
	return &Identity{
		Subject:       info.Sub,
		Email:         info.Email,
		EmailVerified: info.EmailVerified == "true",
		GivenName:     info.GivenName,
		FamilyName:    info.FamilyName,
	}, nil
}
