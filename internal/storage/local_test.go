package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeKey(t *testing.T) {
	cases := []struct {
		name     string
		key      string
		expected string
	}{
		{name: "plain key", key: "menus/1-123-abcd.jpg", expected: "menus/1-123-abcd.jpg"},
		{name: "leading slash", key: "/menus/1.jpg", expected: "menus/1.jpg"},
		{name: "traversal stripped", key: "../../etc/passwd", expected: "etc/passwd"},
		{name: "dot segments dropped", key: "a/./b//c", expected: "a/b/c"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := sanitizeKey(tc.key); got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestLocalStorePublicURL(t *testing.T) {
	store := NewLocalStore("/tmp/store", "http://localhost:8080/")
	if got := store.PublicURL("menus/1.jpg"); got != "http://localhost:8080/store/menus/1.jpg" {
		t.Fatalf("unexpected url %q", got)
	}
}

func TestLocalStorePutDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "http://localhost:8080")
	ctx := context.Background()

	url, err := store.Put(ctx, "proofs/7-1-abcd.jpg", []byte("payload"), "image/jpeg")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if url != "http://localhost:8080/store/proofs/7-1-abcd.jpg" {
		t.Fatalf("unexpected url %q", url)
	}

	path := filepath.Join(dir, "proofs", "7-1-abcd.jpg")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("unexpected contents %q", data)
	}

	if err := store.Delete(ctx, "proofs/7-1-abcd.jpg"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file to be gone")
	}

	// Deleting a missing key is not an error.
	if err := store.Delete(ctx, "proofs/never-existed.jpg"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestLocalStoreDeletePrefix(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "http://localhost:8080")
	ctx := context.Background()

	keys := []string{"profiles/9-1-aa.jpg", "profiles/9-2-bb.jpg", "profiles/10-1-cc.jpg"}
	for _, key := range keys {
		if _, err := store.Put(ctx, key, []byte("x"), "image/jpeg"); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	if err := store.DeletePrefix(ctx, "profiles/9-"); err != nil {
		t.Fatalf("delete prefix: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "profiles", "9-1-aa.jpg")); !os.IsNotExist(err) {
		t.Fatalf("expected 9-1 to be deleted")
	}
	if _, err := os.Stat(filepath.Join(dir, "profiles", "9-2-bb.jpg")); !os.IsNotExist(err) {
		t.Fatalf("expected 9-2 to be deleted")
	}
	if _, err := os.Stat(filepath.Join(dir, "profiles", "10-1-cc.jpg")); err != nil {
		t.Fatalf("expected 10-1 to survive: %v", err)
	}
}
