package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildLegend(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		legend, err := BuildLegend(map[string]string{
			"id1":      "0",
			"id1_desc": "none",
			"id2":      "1",
			"id2_desc": "low",
		})
		require.NoError(t, err)

		assert.Equal(t, Legend{"0": "none", "1": "low"}, legend)
	})

	t.Run("missing desc sibling", func(t *testing.T) {
		_, err := BuildLegend(map[string]string{
			"id1":      "0",
			"id1_desc": "none",
			"id2":      "1",
		})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no _desc sibling")
	})

	t.Run("empty input", func(t *testing.T) {
		legend, err := BuildLegend(map[string]string{})
		require.NoError(t, err)
		assert.Empty(t, legend)
	})
}
