package repository

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/acrylic/tracker/internal/domain/entities"
	"github.com/acrylic/tracker/internal/ports"
)

// FileStore keeps one file per key on an afero filesystem.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates a store rooted at dir on the OS filesystem
func NewFileStore(dir string) (*FileStore, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileStore{fs: afero.NewBasePathFs(fs, dir), dir: "/"}, nil
}

// NewMemoryStore creates a store that lives only in memory
func NewMemoryStore() *FileStore {
	return &FileStore{fs: afero.NewMemMapFs(), dir: "/"}
}

var _ ports.Store = (*FileStore)(nil)

func (s *FileStore) filename(key string) string {
	return path.Join(s.dir, url.PathEscape(key))
}

func (s *FileStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := afero.ReadFile(s.fs, s.filename(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, entities.ErrKeyNotFound
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *FileStore) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := s.filename(key)
	tmp := name + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, value, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := s.fs.Rename(tmp, name); err != nil {
		return fmt.Errorf("commit %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.fs.Remove(s.filename(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}

	var keys []string
	for _, info := range infos {
		if info.IsDir() || strings.HasSuffix(info.Name(), ".tmp") {
			continue
		}
		key, err := url.PathUnescape(info.Name())
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *FileStore) Close() error {
	return nil
}
