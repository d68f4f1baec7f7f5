package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/chiaview/site-backend/errs"
)

// Admin is the identity shown to the admin UI.
type Admin struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// AdminSession is a successful sign-in: the token goes into the session cookie.
type AdminSession struct {
	Token string
	Admin Admin
}

// IdentityProvider verifies admin credentials and session tokens.
// SignIn returns an unauthorized ApiErr for bad credentials.
type IdentityProvider interface {
	SignIn(ctx context.Context, email, password string) (*AdminSession, error)
	CurrentAdmin(ctx context.Context, token string) (*Admin, error)
	SignOut(ctx context.Context, token string) error
}

// AdminAuth applies the email allow-list in front of an IdentityProvider.
type AdminAuth struct {
	provider  IdentityProvider
	allowlist map[string]bool
}

// NewAdminAuth builds the auth layer. An empty allowlist admits every email.
func NewAdminAuth(provider IdentityProvider, allowlist []string) *AdminAuth {
	allowed := make(map[string]bool, len(allowlist))
	for _, email := range allowlist {
		allowed[strings.ToLower(strings.TrimSpace(email))] = true
	}
	return &AdminAuth{provider: provider, allowlist: allowed}
}

func (a *AdminAuth) emailAllowed(email string) bool {
	if len(a.allowlist) == 0 {
		return true
	}
	return a.allowlist[strings.ToLower(email)]
}

// Login checks the allow-list, then the credentials.
func (a *AdminAuth) Login(ctx context.Context, email, password string) (*AdminSession, error) {
	if !a.emailAllowed(email) {
		return nil, errs.NewForbiddenError("Not authorized")
	}

	session, err := a.provider.SignIn(ctx, email, password)
	if err != nil {
		if errs.IsUnauthorized(err) {
			return nil, errs.NewUnauthorizedError("Invalid credentials")
		}
		return nil, errs.NewInternalErrorWithCause("Login failed", err)
	}
	if session.Token == "" {
		return nil, errs.NewInternalError("Login failed")
	}
	return session, nil
}

// Me resolves a session token. A missing or rejected token yields nil without error;
// only a failure to reach the provider is an error.
func (a *AdminAuth) Me(ctx context.Context, token string) (*Admin, error) {
	if token == "" {
		return nil, nil
	}
	admin, err := a.provider.CurrentAdmin(ctx, token)
	if err != nil {
		if errs.IsUnauthorized(err) {
			return nil, nil
		}
		return nil, err
	}
	return admin, nil
}

// Logout revokes the token when the provider supports it. Failures are only logged.
func (a *AdminAuth) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := a.provider.SignOut(ctx, token); err != nil {
		log.Warn().Err(err).Msg("admin sign-out failed")
	}
}

// displayName is the metadata name, else the local part of the email, else "Admin".
func displayName(metadataName, email string) string {
	if metadataName != "" {
		return metadataName
	}
	if local, _, _ := strings.Cut(email, "@"); local != "" {
		return local
	}
	return "Admin"
}
