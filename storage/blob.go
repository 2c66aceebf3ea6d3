package storage

import "context"

// BlobStore persists an uploaded photo and returns a URL the frontend can
// render. Implementations: LocalStore for dev, S3Store for deployments.
type BlobStore interface {
	Put(ctx context.Context, data []byte, ext string) (string, error)
}
