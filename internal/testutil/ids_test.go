package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/tween/internal/tween"
)

var _ tween.IDGenerator = (*FixedIDGenerator)(nil)

func TestFixedIDGenerator_ReturnsSameID(t *testing.T) {
	gen := NewFixedIDGenerator("run-1")
	for i := 0; i < 3; i++ {
		assert.Equal(t, "run-1", gen.Generate())
	}
}

func TestFixedIDGenerator_DefaultID(t *testing.T) {
	assert.Equal(t, "test-tween-default", NewFixedIDGenerator("").Generate())
}
