package storage

import "context"

// Store accepts a binary payload under a derived name and returns the
// reference the payload is retrievable by.
type Store interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}
