package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheck(t *testing.T) {
	t.Parallel()

	h, err := HashPassword("miel-2024")
	require.NoError(t, err)
	assert.NotEqual(t, "miel-2024", h)
	assert.True(t, CheckPassword(h, "miel-2024"))
	assert.False(t, CheckPassword(h, "admin123"))
	assert.False(t, CheckPassword("not-a-hash", "miel-2024"))
}
