package services

import (
	"context"
	"strings"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/golang-jwt/jwt/v5"

	"github.com/chiaview/site-backend/errs"
)

const (
	localAdminID   = "admin-1"
	SessionTimeout = 12 * time.Hour
)

type localClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// LocalAuth authenticates the single admin configured through the environment and
// issues HS256 session tokens.
type LocalAuth struct {
	email        string
	passwordHash string
	secret       []byte
	now          func() time.Time
}

func NewLocalAuth(email, passwordHash, secret string) *LocalAuth {
	return &LocalAuth{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: passwordHash,
		secret:       []byte(secret),
		now:          time.Now,
	}
}

func (l *LocalAuth) configured() error {
	if l.email == "" || l.passwordHash == "" || len(l.secret) == 0 {
		return errs.NewNotConfiguredError("Local admin is not configured")
	}
	return nil
}

func (l *LocalAuth) admin() Admin {
	return Admin{ID: localAdminID, Email: l.email, Name: displayName("", l.email), Role: "admin"}
}

func (l *LocalAuth) SignIn(_ context.Context, email, password string) (*AdminSession, error) {
	if err := l.configured(); err != nil {
		return nil, err
	}
	if strings.ToLower(email) != l.email {
		return nil, errs.NewUnauthorizedError("unknown admin")
	}

	match, err := argon2id.ComparePasswordAndHash(password, l.passwordHash)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("Invalid admin password hash", err)
	}
	if !match {
		return nil, errs.NewUnauthorizedError("wrong password")
	}

	now := l.now()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, localClaims{
		Email: l.email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   localAdminID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionTimeout)),
		},
	}).SignedString(l.secret)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("Failed to sign session", err)
	}

	return &AdminSession{Token: token, Admin: l.admin()}, nil
}

func (l *LocalAuth) CurrentAdmin(_ context.Context, token string) (*Admin, error) {
	if err := l.configured(); err != nil {
		return nil, err
	}

	var claims localClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return l.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(l.now))
	if err != nil || claims.Email != l.email {
		return nil, errs.NewUnauthorizedError("invalid session")
	}

	admin := l.admin()
	return &admin, nil
}

// SignOut is a no-op; local tokens simply expire.
func (l *LocalAuth) SignOut(context.Context, string) error {
	return nil
}
