package services

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectStorageUpload(t *testing.T) {
	var gotPath, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	storage, err := NewObjectStorage(context.Background(), StorageConfig{
		Endpoint:        srv.URL,
		Region:          "us-east-1",
		Bucket:          "images",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		PublicURL:       "https://cdn.example.org/storage/v1/object/public/images/",
	})
	require.NoError(t, err)
	require.NotNil(t, storage)

	url, err := storage.Upload(context.Background(), "Photo.JPG", "image/jpeg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotPath, "/images/uploads/"), gotPath)
	assert.True(t, strings.HasSuffix(gotPath, ".jpg"), gotPath)
	assert.Equal(t, "image/jpeg", gotType)
	assert.Equal(t, "jpeg-bytes", gotBody)
	assert.Equal(t, "https://cdn.example.org/storage/v1/object/public/images"+strings.TrimPrefix(gotPath, "/images"), url)
}

func TestObjectStorageNotConfigured(t *testing.T) {
	storage, err := NewObjectStorage(context.Background(), StorageConfig{})
	assert.NoError(t, err)
	assert.Nil(t, storage)
}
