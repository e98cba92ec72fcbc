package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// DiskStore writes attachments to a local directory served statically
// under /uploads.
type DiskStore struct {
	dir string
}

func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) Dir() string {
	return s.dir
}

func (s *DiskStore) Save(_ context.Context, name string, data []byte) (string, error) {
	base := filepath.Base(name)
	if err := os.WriteFile(filepath.Join(s.dir, base), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write attachment: %w", err)
	}
	return base, nil
}
