package services

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/chiaview/site-backend/config"
	"github.com/chiaview/site-backend/errs"
)

// FirebaseStore uses the Firebase Realtime Database REST API. Each key is a child of
// the database root.
type FirebaseStore struct {
	client *resty.Client
}

// NewFirebaseStore returns a store for databaseURL. secret, when set, is sent as the
// auth query parameter.
func NewFirebaseStore(databaseURL, secret string) *FirebaseStore {
	if databaseURL == "" {
		return &FirebaseStore{}
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(databaseURL, "/")).
		SetTimeout(15 * time.Second).
		SetHeader("Accept", "application/json")
	if secret != "" {
		client.SetQueryParam("auth", secret)
	}
	return &FirebaseStore{client: client}
}

func (s *FirebaseStore) Provider() string { return config.ProviderFirebase }

func (s *FirebaseStore) request(ctx context.Context) (*resty.Request, error) {
	if s.client == nil {
		return nil, errs.NewNotConfiguredError("Firebase is not configured")
	}
	return s.client.R().SetContext(ctx), nil
}

func childPath(key string) string {
	return "/" + url.PathEscape(key) + ".json"
}

func (s *FirebaseStore) do(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, errs.NewUpstreamError("Firebase request failed", "firebase", err)
	}
	if resp.IsError() {
		return nil, errs.NewUpstreamError("Firebase request failed", "firebase", errs.NewApiErr(resp.StatusCode(), resp.String()))
	}
	return resp, nil
}

func (s *FirebaseStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	req, err := s.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req, resty.MethodGet, childPath(key))
	if err != nil {
		return nil, err
	}
	return nonNull(resp.Body()), nil
}

// Set writes with PUT, or PATCH when merge is true.
func (s *FirebaseStore) Set(ctx context.Context, key string, value json.RawMessage, merge bool) error {
	req, err := s.request(ctx)
	if err != nil {
		return err
	}
	method := resty.MethodPut
	if merge {
		method = resty.MethodPatch
	}
	req.SetHeader("Content-Type", "application/json").SetBody([]byte(value))
	_, err = s.do(req, method, childPath(key))
	return err
}

func (s *FirebaseStore) Delete(ctx context.Context, key string) error {
	req, err := s.request(ctx)
	if err != nil {
		return err
	}
	_, err = s.do(req, resty.MethodDelete, childPath(key))
	return err
}

func (s *FirebaseStore) Snapshot(ctx context.Context) (map[string]json.RawMessage, error) {
	req, err := s.request(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req, resty.MethodGet, "/.json")
	if err != nil {
		return nil, err
	}
	body := nonNull(resp.Body())
	out := map[string]json.RawMessage{}
	if body == nil {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, errs.NewUpstreamError("Firebase returned a non-object root", "firebase", err)
	}
	return out, nil
}

// nonNull maps an empty or JSON null body to nil.
func nonNull(body []byte) json.RawMessage {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	return json.RawMessage(body)
}
