package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeeds(t *testing.T) {
	seeds, err := ParseSeeds("Sodium\n\n  Lithium  \r\nFarmer's Delight\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Sodium", "Lithium", "Farmer's Delight"}, seeds)
}

func TestParseSeedsUnrelated(t *testing.T) {
	for _, text := range []string{"N/A", "  N/A\n", "", "\n \n"} {
		_, err := ParseSeeds(text)
		assert.ErrorIs(t, err, ErrUnrelatedRequest, "%q", text)
	}
}
