package handlers

import (
	"regexp"
	"testing"
)

func TestObjectKeyFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^proofs/42-\d+-[0-9a-f]{8}\.jpg$`)
	key := objectKey("proofs", 42)
	if !pattern.MatchString(key) {
		t.Fatalf("unexpected key format: %s", key)
	}

	other := objectKey("proofs", 42)
	if key == other {
		t.Fatalf("expected distinct keys for repeated uploads")
	}
}

func TestRandomSuffix8(t *testing.T) {
	pattern := regexp.MustCompile(`^[0-9a-f]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		s := randomSuffix8()
		if !pattern.MatchString(s) {
			t.Fatalf("unexpected suffix %q", s)
		}
		seen[s] = true
	}
	if len(seen) < 45 {
		t.Fatalf("expected suffixes to be mostly unique, got %d distinct of 50", len(seen))
	}
}
