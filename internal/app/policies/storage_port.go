package policies

import (
	"context"
	"io"
)

// ImageStorage keeps listing photos in object storage.
type ImageStorage interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (publicURL string, err error)
	// Remove deletes an object previously returned by Put. URLs that do not
	// belong to the store are ignored.
	Remove(ctx context.Context, publicURL string) error
}
