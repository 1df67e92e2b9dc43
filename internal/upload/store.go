package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Store persists upload bodies.
type Store interface {
	Save(ctx context.Context, dir, name string, r io.Reader) (int64, error)
	Remove(dir, name string) error
}

// DiskStore writes uploads below Root.
type DiskStore struct {
	Root string
}

// NewDiskStore returns a store rooted at root.
func NewDiskStore(root string) *DiskStore {
	return &DiskStore{Root: root}
}

// Save writes r to Root/dir/name through a temp file and returns the bytes
// written.
func (s *DiskStore) Save(ctx context.Context, dir, name string, r io.Reader) (int64, error) {
	target, err := s.path(dir, name)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create upload directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, readerWithContext(ctx, r))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return n, fmt.Errorf("failed to write upload: %w", err)
	}

	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return n, fmt.Errorf("failed to move upload into place: %w", err)
	}
	return n, nil
}

// Remove deletes Root/dir/name.
func (s *DiskStore) Remove(dir, name string) error {
	target, err := s.path(dir, name)
	if err != nil {
		return err
	}
	return os.Remove(target)
}

func (s *DiskStore) path(dir, name string) (string, error) {
	if strings.ContainsAny(name, `/\`) || name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("invalid upload name %q", name)
	}
	return filepath.Join(s.Root, filepath.Clean("/" + dir)[1:], name), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
