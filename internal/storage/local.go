package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore writes under a directory that the router serves at /store/*.
type LocalStore struct {
	dir        string
	publicBase string
}

func NewLocalStore(dir string, publicBaseURL string) *LocalStore {
	return &LocalStore{
		dir:        strings.TrimRight(dir, "/"),
		publicBase: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
	}
}

func (s *LocalStore) PublicURL(key string) string {
	return s.publicBase + "/store/" + strings.TrimLeft(key, "/")
}

func (s *LocalStore) Put(_ context.Context, key string, body []byte, _ string) (string, error) {
	key = sanitizeKey(key)
	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	key = sanitizeKey(key)
	err := os.Remove(filepath.Join(s.dir, filepath.FromSlash(key)))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalStore) DeletePrefix(_ context.Context, prefix string) error {
	prefix = sanitizeKey(prefix)
	dir := filepath.Join(s.dir, filepath.FromSlash(filepath.Dir(prefix)))
	base := filepath.Base(prefix)

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasPrefix(entry.Name(), base) {
			if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil && !os.IsNotExist(err) {
				return err
			}
		}
	}
	return nil
}

// sanitizeKey keeps keys inside the store root.
func sanitizeKey(key string) string {
	key = strings.TrimLeft(key, "/")
	parts := strings.Split(key, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			continue
		}
		out = append(out, part)
	}
	return strings.Join(out, "/")
}
