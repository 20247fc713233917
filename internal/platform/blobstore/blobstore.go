// Package blobstore keeps submitted report documents and hands out links to
// them. Objects live in MinIO/S3 when configured and in a local directory
// otherwise.
package blobstore

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrBlobNotFound    = errors.New("blob not found")
	ErrInvalidBlobName = errors.New("invalid blob name")
)

// Store saves a document and returns a URL it can be retrieved from.
type Store interface {
	Put(ctx context.Context, name string, data []byte, contentType string) (string, error)
	Get(ctx context.Context, name string) ([]byte, error)
}

// cleanName rejects names that would escape the store's namespace.
func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", ErrInvalidBlobName
	}
	return name, nil
}
