// Copyright (c) 2025 Morning App Labs
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStore implements Store on top of a data directory. The layout is
// the application's on-disk contract:
//
//	<dir>/library.json          library index (JSON array)
//	<dir>/settings.json         settings (JSON object)
//	<dir>/highlights/<id>.json  highlight set per book identifier
//	<dir>/covers/<id>.jpg       cover image per book identifier
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory tree if needed.
func NewFileStore(dir string) (*FileStore, error) {
	for _, sub := range []string{"", string(DomainHighlights), string(DomainCovers)} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &FileStore{dir: dir}, nil
}

// Path returns the filesystem path that backs the given domain and key.
// Callers use it to reference cover images by path.
func (s *FileStore) Path(domain Domain, key string) string {
	switch domain {
	case DomainSettings, DomainLibrary:
		return filepath.Join(s.dir, string(domain)+".json")
	case DomainCovers:
		return filepath.Join(s.dir, string(domain), key+".jpg")
	default:
		return filepath.Join(s.dir, string(domain), key+".json")
	}
}

func (s *FileStore) Get(ctx context.Context, domain Domain, key string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(domain, key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s/%s: %w", domain, key, err)
	}
	return data, nil
}

// Set writes atomically: a temp file in the same directory is renamed
// over the target, so a crash mid-write never truncates existing data.
func (s *FileStore) Set(ctx context.Context, domain Domain, key string, data []byte) error {
	path := s.Path(domain, key)
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("write %s/%s: %w", domain, key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s/%s: %w", domain, key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s/%s: %w", domain, key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s/%s: %w", domain, key, err)
	}
	return nil
}

func (s *FileStore) Delete(ctx context.Context, domain Domain, key string) error {
	err := os.Remove(s.Path(domain, key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete %s/%s: %w", domain, key, err)
	}
	return nil
}
