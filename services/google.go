package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/idtoken"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"skillshare/models"
)

var ErrGoogleDisabled = errors.New("google sign-in is not configured")

// GoogleAuth verifies Google identities, either from the redirect flow or
// from a Google Identity Services ID token.
type GoogleAuth struct {
	config   *oauth2.Config
	clientID string
	validate func(ctx context.Context, idToken, audience string) (*idtoken.Payload, error)
}

func NewGoogleAuth(clientID, clientSecret, redirectURL string) *GoogleAuth {
	return &GoogleAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		clientID: clientID,
		validate: idtoken.Validate,
	}
}

func (g *GoogleAuth) Enabled() bool {
	return g != nil && g.clientID != ""
}

func (g *GoogleAuth) AuthCodeURL(state string) (string, error) {
	if !g.Enabled() || g.config.ClientSecret == "" {
		return "", ErrGoogleDisabled
	}
	return g.config.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

// Exchange trades an authorization code for the user's profile.
func (g *GoogleAuth) Exchange(ctx context.Context, code string) (GoogleProfile, error) {
	if !g.Enabled() || g.config.ClientSecret == "" {
		return GoogleProfile{}, ErrGoogleDisabled
	}
	tok, err := g.config.Exchange(ctx, code)
	if err != nil {
		return GoogleProfile{}, models.AuthError("failed to exchange authorization code")
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(g.config.TokenSource(ctx, tok)))
	if err != nil {
		return GoogleProfile{}, models.InternalError("google client", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return GoogleProfile{}, models.InternalError("google userinfo", err)
	}

	return GoogleProfile{
		Subject:       info.Id,
		Email:         info.Email,
		EmailVerified: info.VerifiedEmail != nil && *info.VerifiedEmail,
		Name:          info.Name,
		Picture:       info.Picture,
	}, nil
}

// VerifyIDToken checks the signature and audience of a Google ID token.
func (g *GoogleAuth) VerifyIDToken(ctx context.Context, credential string) (GoogleProfile, error) {
	if !g.Enabled() {
		return GoogleProfile{}, ErrGoogleDisabled
	}
	payload, err := g.validate(ctx, credential, g.clientID)
	if err != nil {
		return GoogleProfile{}, models.AuthError("invalid Google credential")
	}

	claim := func(key string) string {
		s, _ := payload.Claims[key].(string)
		return s
	}
	verified, _ := payload.Claims["email_verified"].(bool)
	return GoogleProfile{
		Subject:       payload.Subject,
		Email:         claim("email"),
		EmailVerified: verified,
		Name:          claim("name"),
		Picture:       claim("picture"),
	}, nil
}

func (p GoogleProfile) String() string {
	return fmt.Sprintf("%s (%s)", p.Email, p.Name)
}
