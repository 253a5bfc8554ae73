package id

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDGenerator_NewIDIsUniqueUUID(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator()
	seen := make(map[string]struct{}, 64)
	for i := 0; i < 64; i++ {
		v, err := gen.NewID()
		if err != nil {
			t.Fatalf("new id: %v", err)
		}
		parsed, err := uuid.Parse(v)
		if err != nil {
			t.Fatalf("parse %q: %v", v, err)
		}
		if parsed.Version() != 7 {
			t.Fatalf("expected v7, got %d", parsed.Version())
		}
		if _, dup := seen[v]; dup {
			t.Fatalf("duplicate id %s", v)
		}
		seen[v] = struct{}{}
	}
}
