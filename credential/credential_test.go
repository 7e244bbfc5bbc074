package credential

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIDFormat(t *testing.T) {
	id := NewID()

	assert.True(t, strings.HasPrefix(id, Prefix))
	require.Regexp(t, regexp.MustCompile(`^CERT-\d{8}T\d{6}-[0-9A-F]{10}$`), id)
}

func TestNewIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewID()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
