package services

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chiaview/site-backend/errs"
)

type supabaseUser struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	UserMetadata struct {
		Name string `json:"name"`
	} `json:"user_metadata"`
}

type supabaseTokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        supabaseUser `json:"user"`
}

type supabaseErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e supabaseErrorResponse) message() string {
	switch {
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.Msg != "":
		return e.Msg
	default:
		return e.Error
	}
}

// SupabaseAuth talks to the Supabase Auth (GoTrue) REST API.
type SupabaseAuth struct {
	client *resty.Client
}

// NewSupabaseAuth returns a client for baseURL (the project URL, without /auth/v1).
// An empty baseURL or anonKey gives a client whose calls fail as not configured.
func NewSupabaseAuth(baseURL, anonKey string) *SupabaseAuth {
	if baseURL == "" || anonKey == "" {
		return &SupabaseAuth{}
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/auth/v1").
		SetTimeout(10*time.Second).
		SetHeader("apikey", anonKey).
		SetHeader("Accept", "application/json")
	return &SupabaseAuth{client: client}
}

func (s *SupabaseAuth) configured() error {
	if s.client == nil {
		return errs.NewNotConfiguredError("Supabase is not configured")
	}
	return nil
}

func (s *SupabaseAuth) SignIn(ctx context.Context, email, password string) (*AdminSession, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}

	var result supabaseTokenResponse
	var failure supabaseErrorResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(map[string]string{"email": email, "password": password}).
		SetResult(&result).
		SetError(&failure).
		Post("/token")
	if err != nil {
		return nil, errs.NewUpstreamError("Supabase sign-in failed", "supabase-auth", err)
	}
	if resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusUnauthorized {
		return nil, errs.NewUnauthorizedError(failure.message())
	}
	if resp.IsError() {
		return nil, errs.NewUpstreamError("Supabase sign-in failed", "supabase-auth", errs.NewApiErr(resp.StatusCode(), failure.message()))
	}

	return &AdminSession{Token: result.AccessToken, Admin: adminFromSupabase(result.User)}, nil
}

func (s *SupabaseAuth) CurrentAdmin(ctx context.Context, token string) (*Admin, error) {
	if err := s.configured(); err != nil {
		return nil, err
	}

	var user supabaseUser
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(token).
		SetResult(&user).
		Get("/user")
	if err != nil {
		return nil, errs.NewUpstreamError("Supabase session check failed", "supabase-auth", err)
	}
	if resp.IsError() || user.ID == "" {
		return nil, errs.NewUnauthorizedError("invalid session")
	}

	admin := adminFromSupabase(user)
	return &admin, nil
}

func (s *SupabaseAuth) SignOut(ctx context.Context, token string) error {
	if err := s.configured(); err != nil {
		return err
	}
	resp, err := s.client.R().SetContext(ctx).SetAuthToken(token).Post("/logout")
	if err != nil {
		return errs.NewUpstreamError("Supabase sign-out failed", "supabase-auth", err)
	}
	if resp.IsError() {
		return errs.NewUpstreamError("Supabase sign-out failed", "supabase-auth", errs.NewApiErr(resp.StatusCode(), resp.String()))
	}
	return nil
}

func adminFromSupabase(u supabaseUser) Admin {
	return Admin{
		ID:    u.ID,
		Email: u.Email,
		Name:  displayName(u.UserMetadata.Name, u.Email),
		Role:  "admin",
	}
}
