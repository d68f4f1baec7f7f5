package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

const BackupVersion = "1.0"

// KVStore is the schemaless key/value facility behind /api/{provider}/data.
// Get returns nil for a missing key. merge asks for a shallow merge of object values
// where the backend supports it.
type KVStore interface {
	Provider() string
	Get(ctx context.Context, key string) (json.RawMessage, error)
	Set(ctx context.Context, key string, value json.RawMessage, merge bool) error
	Delete(ctx context.Context, key string) error
	Snapshot(ctx context.Context) (map[string]json.RawMessage, error)
}

// Backup is the portable export document.
type Backup struct {
	Timestamp time.Time                  `json:"timestamp"`
	Version   string                     `json:"version"`
	Provider  string                     `json:"provider"`
	Data      map[string]json.RawMessage `json:"data"`
}

// ExportBackup snapshots store and names the file after the provider and time.
func ExportBackup(ctx context.Context, store KVStore, now time.Time) (*Backup, string, error) {
	data, err := store.Snapshot(ctx)
	if err != nil {
		return nil, "", err
	}
	if data == nil {
		data = map[string]json.RawMessage{}
	}
	backup := &Backup{
		Timestamp: now.UTC(),
		Version:   BackupVersion,
		Provider:  store.Provider(),
		Data:      data,
	}
	return backup, fmt.Sprintf("backup-%s-%d.json", store.Provider(), now.UnixMilli()), nil
}

// RestoreBackup writes every key of data, replacing existing values. Keys are
// written in sorted order and the first failure stops the restore.
func RestoreBackup(ctx context.Context, store KVStore, data map[string]json.RawMessage) (int, error) {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	restored := 0
	for _, k := range keys {
		if err := store.Set(ctx, k, data[k], false); err != nil {
			return restored, err
		}
		restored++
	}
	return restored, nil
}

// mergeJSON shallow-merges patch into base when both are JSON objects; otherwise patch
// replaces base.
func mergeJSON(base, patch json.RawMessage) (json.RawMessage, error) {
	var baseObj, patchObj map[string]json.RawMessage
	if len(base) == 0 || json.Unmarshal(base, &baseObj) != nil || baseObj == nil {
		return patch, nil
	}
	if json.Unmarshal(patch, &patchObj) != nil || patchObj == nil {
		return patch, nil
	}
	for k, v := range patchObj {
		baseObj[k] = v
	}
	merged, err := json.Marshal(baseObj)
	if err != nil {
		return nil, err
	}
	return merged, nil
}
