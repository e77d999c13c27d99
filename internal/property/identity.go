package property

import (
	"sync"

	"github.com/google/uuid"
)

// IdentityGenerator produces participant identities.
// Implemented by UUIDv7Generator (production) and FixedGenerator (tests).
type IdentityGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 identities.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (g UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined identities for testing.
//
// Thread-safety: FixedGenerator is safe for concurrent use via internal mutex.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined identity.
//
// Panics if all identities have been consumed, to catch test
// misconfiguration early.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all identities exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
