package testutil

// FixedIDGenerator generates the same instance ID every time.
//
// This enables deterministic trace recording and golden snapshot comparison.
// The same scenario with the same FixedIDGenerator produces byte-identical
// recorded runs.
//
// Unlike tween.FixedGenerator which returns IDs in sequence, this generator
// always returns the same ID and never runs out.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a new fixed ID generator.
//
// If id is empty, Generate() returns "test-tween-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-tween-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed ID.
//
// Implements tween.IDGenerator interface.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
