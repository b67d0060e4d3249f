package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenSetRatio(t *testing.T) {
	t.Run("identical strings score 1", func(t *testing.T) {
		assert.InDelta(t, 1.0, TokenSetRatio("META PLATFORMS INC", "META PLATFORMS INC"), 1e-9)
	})

	t.Run("word order is ignored", func(t *testing.T) {
		assert.InDelta(t, 1.0, TokenSetRatio("PLATFORMS META INC", "META PLATFORMS INC"), 1e-9)
	})

	t.Run("duplicate tokens are ignored", func(t *testing.T) {
		assert.InDelta(t, 1.0, TokenSetRatio("META META PLATFORMS INC", "META PLATFORMS INC"), 1e-9)
	})

	t.Run("token subset scores 1", func(t *testing.T) {
		// Boilerplate like CORP must not penalize a full brand match.
		assert.InDelta(t, 1.0, TokenSetRatio("NVIDIA", "NVIDIA CORP"), 1e-9)
	})

	t.Run("partial overlap scores between 0 and 1", func(t *testing.T) {
		s := TokenSetRatio("META SYSTEMS", "META PLATFORMS INC")
		assert.Greater(t, s, 0.0)
		assert.Less(t, s, 1.0)
	})

	t.Run("disjoint strings score low", func(t *testing.T) {
		s := TokenSetRatio("APPLE", "NVIDIA CORP")
		assert.Less(t, s, 0.5)
	})

	t.Run("empty input scores 0", func(t *testing.T) {
		assert.Zero(t, TokenSetRatio("", "NVIDIA CORP"))
		assert.Zero(t, TokenSetRatio("NVIDIA", ""))
		assert.Zero(t, TokenSetRatio("", ""))
	})

	t.Run("symmetric", func(t *testing.T) {
		a, b := "WHATSAPP", "META PLATFORMS INC"
		assert.InDelta(t, TokenSetRatio(a, b), TokenSetRatio(b, a), 1e-9)
	})
}

func TestIndelRatio(t *testing.T) {
	assert.InDelta(t, 1.0, indelRatio("ABC", "ABC"), 1e-9)
	assert.InDelta(t, 0.0, indelRatio("ABC", "XYZ"), 1e-9)
	// LCS("ABCD","ABXD") = 3 -> 2*3/8
	assert.InDelta(t, 0.75, indelRatio("ABCD", "ABXD"), 1e-9)
	assert.InDelta(t, 1.0, indelRatio("", ""), 1e-9)
}
