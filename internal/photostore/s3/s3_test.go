package s3

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/closet/internal/photostore"
)

type object struct {
	data        []byte
	contentType string
}

// fakeBucket answers the handful of path-style S3 calls the store makes.
func fakeBucket(t *testing.T) *httptest.Server {
	var mu sync.Mutex
	objects := map[string]object{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		key := strings.TrimPrefix(r.URL.Path, "/closet/")
		switch r.Method {
		case http.MethodPut:
			data, _ := io.ReadAll(r.Body)
			objects[key] = object{data: data, contentType: r.Header.Get("Content-Type")}
			w.Header().Set("ETag", `"etag"`)
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			obj, ok := objects[key]
			if !ok {
				w.Header().Set("Content-Type", "application/xml")
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`))
				return
			}
			w.Header().Set("Content-Type", obj.contentType)
			_, _ = w.Write(obj.data)
		case http.MethodDelete:
			delete(objects, key)
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
}

func newTestStore(t *testing.T) *S3PhotoStore {
	server := fakeBucket(t)
	t.Cleanup(server.Close)

	store, err := NewS3PhotoStore(context.Background(), Config{
		Bucket:          "closet",
		Endpoint:        server.URL,
		Region:          "auto",
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	return store
}

func TestS3PhotoStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	key, err := store.Save(ctx, "clothes/beanie", "image/png", bytes.NewReader([]byte("png bytes")))
	require.NoError(t, err)
	assert.Equal(t, "clothes/beanie.png", key)

	rc, mimeType, err := store.Get(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, []byte("png bytes"), data)
	assert.Equal(t, "image/png", mimeType)

	require.NoError(t, store.Delete(ctx, key))
	_, _, err = store.Get(ctx, key)
	assert.ErrorIs(t, err, photostore.ErrNotFound)
}

func TestS3PhotoStoreRequiresBucket(t *testing.T) {
	_, err := NewS3PhotoStore(context.Background(), Config{})
	assert.Error(t, err)
}
