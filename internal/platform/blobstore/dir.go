package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// DirStore writes objects below a directory and links them under
// {baseURL}/files/{name}.
type DirStore struct {
	dir     string
	baseURL string
}

func NewDirStore(dir, baseURL string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir %s: %w", dir, err)
	}
	return &DirStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DirStore) Put(ctx context.Context, name string, data []byte, _ string) (string, error) {
	name, err := cleanName(name)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write blob %s: %w", name, err)
	}
	return s.baseURL + "/files/" + url.PathEscape(name), nil
}

func (s *DirStore) Get(ctx context.Context, name string) ([]byte, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}
	return data, nil
}
