package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	apperrors "github.com/johnquangdev/ifocus/errors"
)

// LocalSink writes artifacts below a directory, the way the web app serves
// them from its static folder
type LocalSink struct {
	dir string
}

// NewLocalSink creates a sink rooted at dir
func NewLocalSink(dir string) *LocalSink {
	return &LocalSink{dir: dir}
}

// Put writes data to dir/key, creating parent directories, and returns the path
func (s *LocalSink) Put(ctx context.Context, key, _ string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !filepath.IsLocal(key) {
		return "", apperrors.ErrInvalidArgument(fmt.Sprintf("storage key %q escapes the storage directory", key))
	}

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", apperrors.ErrStorageFailed("mkdir", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", apperrors.ErrStorageFailed("write "+key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", apperrors.ErrStorageFailed("rename "+key, err)
	}
	return path, nil
}
