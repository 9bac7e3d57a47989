package storage

import "context"

// Store is the public "store" disk: uploaded images go in, a public URL/path
// string comes out and is what gets persisted on the owning row.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	PublicURL(key string) string
}
