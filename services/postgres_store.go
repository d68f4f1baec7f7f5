package services

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"

	"github.com/chiaview/site-backend/config"
	"github.com/chiaview/site-backend/database"
)

// PostgresStore keeps key/value data in the data_store table.
type PostgresStore struct {
	repo *database.DataStoreRepo
}

func NewPostgresStore(repo *database.DataStoreRepo) *PostgresStore {
	return &PostgresStore{repo: repo}
}

func (s *PostgresStore) Provider() string { return config.ProviderSupabase }

func (s *PostgresStore) Get(ctx context.Context, key string) (json.RawMessage, error) {
	value, err := s.repo.Get(ctx, key)
	if err != nil || value == nil {
		return nil, err
	}
	return json.RawMessage(value), nil
}

// Set replaces the stored value. merge is ignored: rows always hold the whole value.
func (s *PostgresStore) Set(ctx context.Context, key string, value json.RawMessage, _ bool) error {
	return s.repo.Set(ctx, key, datatypes.JSON(value))
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

func (s *PostgresStore) Snapshot(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]json.RawMessage, len(rows))
	for k, v := range rows {
		out[k] = json.RawMessage(v)
	}
	return out, nil
}
