// internal/storage/archive/interface.go
package archive

import "context"

// Storage is the durable destination of published snapshots
type Storage interface {
	// Write stores data at the given key, replacing any previous object
	Write(ctx context.Context, key string, data []byte) error

	// Read retrieves data from the given key
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns all keys matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if data exists at the given key
	Exists(ctx context.Context, key string) (bool, error)
}
