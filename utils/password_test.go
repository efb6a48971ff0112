package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		p, err := GeneratePassword(8)
		require.NoError(t, err)
		require.Len(t, p, 8)
		for _, r := range p {
			require.True(t, strings.ContainsRune(passwordChars, r))
		}
		seen[p] = true
	}
	// 20 draws from a 62^8 space colliding would mean the RNG is broken.
	require.Greater(t, len(seen), 1)
}
