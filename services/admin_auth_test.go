package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chiaview/site-backend/errs"
)

type stubProvider struct {
	signIns   int
	signInErr error
	current   *Admin
	signOut   error
}

func (s *stubProvider) SignIn(_ context.Context, email, _ string) (*AdminSession, error) {
	s.signIns++
	if s.signInErr != nil {
		return nil, s.signInErr
	}
	return &AdminSession{Token: "tok", Admin: Admin{ID: "1", Email: email, Role: "admin"}}, nil
}

func (s *stubProvider) CurrentAdmin(context.Context, string) (*Admin, error) {
	if s.current == nil {
		return nil, errs.NewUnauthorizedError("invalid session")
	}
	return s.current, nil
}

func (s *stubProvider) SignOut(context.Context, string) error { return s.signOut }

func TestAdminAuthLoginAllowlist(t *testing.T) {
	provider := &stubProvider{}
	auth := NewAdminAuth(provider, []string{"Admin@ChiaView.org"})

	_, err := auth.Login(context.Background(), "intruder@example.com", "secret")
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, errs.StatusCode(err))
	assert.Equal(t, "Not authorized", err.Error())
	assert.Zero(t, provider.signIns)

	session, err := auth.Login(context.Background(), "admin@chiaview.org", "secret")
	require.NoError(t, err)
	assert.Equal(t, "tok", session.Token)
}

func TestAdminAuthEmptyAllowlistAdmitsEveryone(t *testing.T) {
	auth := NewAdminAuth(&stubProvider{}, nil)

	_, err := auth.Login(context.Background(), "anyone@example.com", "secret")
	assert.NoError(t, err)
}

func TestAdminAuthLoginMapsProviderErrors(t *testing.T) {
	auth := NewAdminAuth(&stubProvider{signInErr: errs.NewUnauthorizedError("wrong password")}, nil)
	_, err := auth.Login(context.Background(), "a@b.co", "x")
	assert.Equal(t, http.StatusUnauthorized, errs.StatusCode(err))
	assert.Equal(t, "Invalid credentials", err.Error())

	auth = NewAdminAuth(&stubProvider{signInErr: errs.NewNotConfiguredError("Supabase is not configured")}, nil)
	_, err = auth.Login(context.Background(), "a@b.co", "x")
	assert.Equal(t, http.StatusInternalServerError, errs.StatusCode(err))
	assert.Equal(t, "Login failed", err.Error())
}

func TestAdminAuthMe(t *testing.T) {
	auth := NewAdminAuth(&stubProvider{}, nil)

	admin, err := auth.Me(context.Background(), "")
	assert.NoError(t, err)
	assert.Nil(t, admin)

	admin, err = auth.Me(context.Background(), "expired")
	assert.NoError(t, err)
	assert.Nil(t, admin)

	auth = NewAdminAuth(&stubProvider{current: &Admin{ID: "7"}}, nil)
	admin, err = auth.Me(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "7", admin.ID)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Grace", displayName("Grace", "g@x.org"))
	assert.Equal(t, "g", displayName("", "g@x.org"))
	assert.Equal(t, "Admin", displayName("", ""))
}

func TestLocalAuthRoundTrip(t *testing.T) {
	hash, err := argon2id.CreateHash("correct horse", argon2id.DefaultParams)
	require.NoError(t, err)

	local := NewLocalAuth("Admin@ChiaView.org", hash, "session-secret")

	_, err = local.SignIn(context.Background(), "admin@chiaview.org", "wrong")
	assert.True(t, errs.IsUnauthorized(err))

	_, err = local.SignIn(context.Background(), "other@chiaview.org", "correct horse")
	assert.True(t, errs.IsUnauthorized(err))

	session, err := local.SignIn(context.Background(), "ADMIN@chiaview.org", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "admin@chiaview.org", session.Admin.Email)
	assert.Equal(t, "admin", session.Admin.Name)

	admin, err := local.CurrentAdmin(context.Background(), session.Token)
	require.NoError(t, err)
	assert.Equal(t, localAdminID, admin.ID)

	_, err = local.CurrentAdmin(context.Background(), session.Token+"x")
	assert.True(t, errs.IsUnauthorized(err))
}

func TestLocalAuthTokenExpires(t *testing.T) {
	hash, err := argon2id.CreateHash("pw", argon2id.DefaultParams)
	require.NoError(t, err)
	local := NewLocalAuth("a@b.co", hash, "s")

	issued := time.Now()
	local.now = func() time.Time { return issued }
	session, err := local.SignIn(context.Background(), "a@b.co", "pw")
	require.NoError(t, err)

	local.now = func() time.Time { return issued.Add(SessionTimeout + time.Minute) }
	_, err = local.CurrentAdmin(context.Background(), session.Token)
	assert.True(t, errs.IsUnauthorized(err))
}

func TestLocalAuthNotConfigured(t *testing.T) {
	_, err := NewLocalAuth("", "", "").SignIn(context.Background(), "a@b.co", "pw")
	assert.True(t, errs.IsNotConfigured(err))
}

func newGoTrueServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/v1/token", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		if body["password"] != "letmein" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid login credentials"}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"jwt-abc","user":{"id":"u-1","email":"pastor@chiaview.org","user_metadata":{}}}`))
	})
	mux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer jwt-abc" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"msg":"invalid JWT"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"u-1","email":"pastor@chiaview.org","user_metadata":{"name":"Pastor John"}}`))
	})
	mux.HandleFunc("/auth/v1/logout", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSupabaseAuth(t *testing.T) {
	srv := newGoTrueServer(t)
	auth := NewSupabaseAuth(srv.URL, "anon")
	ctx := context.Background()

	_, err := auth.SignIn(ctx, "pastor@chiaview.org", "nope")
	assert.True(t, errs.IsUnauthorized(err))

	session, err := auth.SignIn(ctx, "pastor@chiaview.org", "letmein")
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", session.Token)
	assert.Equal(t, Admin{ID: "u-1", Email: "pastor@chiaview.org", Name: "pastor", Role: "admin"}, session.Admin)

	admin, err := auth.CurrentAdmin(ctx, "jwt-abc")
	require.NoError(t, err)
	assert.Equal(t, "Pastor John", admin.Name)

	_, err = auth.CurrentAdmin(ctx, "forged")
	assert.True(t, errs.IsUnauthorized(err))

	assert.NoError(t, auth.SignOut(ctx, "jwt-abc"))
}

func TestSupabaseAuthNotConfigured(t *testing.T) {
	_, err := NewSupabaseAuth("", "").SignIn(context.Background(), "a@b.co", "x")
	assert.True(t, errs.IsNotConfigured(err))
}
