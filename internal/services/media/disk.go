package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore writes uploads to a flat directory that is served back under
// /uploads/.
type DiskStore struct {
	root string
}

func NewDiskStore(root string) (*DiskStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &DiskStore{root: root}, nil
}

func (d *DiskStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error {
	if strings.ContainsAny(name, `/\`) {
		return errors.New("object name must not contain path separators")
	}

	f, err := os.Create(filepath.Join(d.root, name))
	if err != nil {
		return err
	}

	_, err = io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filepath.Join(d.root, name))
		return err
	}

	return nil
}
