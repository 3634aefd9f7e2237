package xid

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewIsPrefixedAndUnique(t *testing.T) {
	seen := make(map[string]struct{}, 256)
	for i := 0; i < 256; i++ {
		id := New("s")
		if !strings.HasPrefix(id, "s-") {
			t.Fatalf("expected s- prefix, got %q", id)
		}
		if _, err := uuid.Parse(strings.TrimPrefix(id, "s-")); err != nil {
			t.Fatalf("expected uuid suffix in %q: %v", id, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestNewWithoutPrefix(t *testing.T) {
	if _, err := uuid.Parse(New("")); err != nil {
		t.Fatalf("expected bare uuid: %v", err)
	}
}
