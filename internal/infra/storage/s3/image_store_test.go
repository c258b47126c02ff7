package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewImageStoreValidatesConfig(t *testing.T) {
	_, err := NewImageStore(Config{Bucket: "b"}, nil)
	assert.Error(t, err)

	_, err = NewImageStore(Config{Endpoint: "http://localhost:9000"}, nil)
	assert.Error(t, err)
}

func TestObjectURLUsesPublicBase(t *testing.T) {
	store, err := NewImageStore(Config{
		Endpoint:      "http://minio:9000",
		Bucket:        "listing-images",
		PublicBaseURL: "http://localhost:9000/",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9000/listing-images/listings/l1/a.jpg", store.objectURL("/listings/l1/a.jpg"))
}

func TestObjectURLFallsBackToEndpoint(t *testing.T) {
	store, err := NewImageStore(Config{Endpoint: "http://minio:9000", Bucket: "b"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/b/k", store.objectURL("k"))
}

func TestUploadRejectsMissingInput(t *testing.T) {
	store, err := NewImageStore(Config{Endpoint: "minio:9000", Bucket: "b"}, nil)
	require.NoError(t, err)

	_, err = store.Upload(context.Background(), "k", nil, 0, "image/png")
	assert.ErrorIs(t, err, ErrBodyRequired)

	_, err = store.Upload(context.Background(), " / ", strings.NewReader("x"), 1, "image/png")
	assert.ErrorIs(t, err, ErrKeyRequired)
}

func TestUnavailable(t *testing.T) {
	_, err := Unavailable{}.Upload(context.Background(), "k", strings.NewReader("x"), 1, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestHostOf(t *testing.T) {
	assert.Equal(t, "minio:9000", hostOf("http://minio:9000"))
	assert.Equal(t, "minio:9000", hostOf("minio:9000"))
}
