package s3

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewImageStoreDerivesPublicBase(t *testing.T) {
	store, err := NewImageStore(Options{Endpoint: "http://localhost:9000", Bucket: "listing-images", AccessKey: "a", SecretKey: "b"}, nil)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000/listing-images/listings/l1/photo.jpg", store.objectURL("listings/l1/photo.jpg"))

	_, err = NewImageStore(Options{Endpoint: "localhost:9000"}, nil)
	require.Error(t, err)
}

func TestKeyForIgnoresForeignURLs(t *testing.T) {
	store, err := NewImageStore(Options{Endpoint: "localhost:9000", Bucket: "imgs", PublicBaseURL: "https://cdn.example.com/"}, nil)
	require.NoError(t, err)

	key, ok := store.keyFor("https://cdn.example.com/imgs/listings/l1/a.png")
	require.True(t, ok)
	require.Equal(t, "listings/l1/a.png", key)

	_, ok = store.keyFor("https://images.unsplash.com/photo-1")
	require.False(t, ok)
	_, ok = store.keyFor("https://cdn.example.com/imgs/")
	require.False(t, ok)
}

func TestNoopStore(t *testing.T) {
	_, err := NoopStore{}.Put(context.Background(), "k", strings.NewReader("x"), 1, "image/png")
	require.ErrorIs(t, err, ErrNotConfigured)
	require.NoError(t, NoopStore{}.Remove(context.Background(), "https://anything"))
}
