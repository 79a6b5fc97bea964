package postgres

import (
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
)

func TestULIDGeneratorIsMonotonicWithinMillisecond(t *testing.T) {
	frozen := time.Date(2025, 7, 2, 14, 0, 0, 0, time.UTC)
	gen := NewULIDGenerator()
	gen.now = func() time.Time { return frozen }

	prev := gen.Generate()
	for i := 0; i < 1000; i++ {
		next := gen.Generate()
		if next <= prev {
			t.Fatalf("expected %s > %s", next, prev)
		}
		prev = next
	}

	id, err := ulid.Parse(prev)
	if err != nil {
		t.Fatalf("generated ID does not parse: %v", err)
	}
	if id.Time() != ulid.Timestamp(frozen) {
		t.Fatalf("expected timestamp %d, got %d", ulid.Timestamp(frozen), id.Time())
	}
}
