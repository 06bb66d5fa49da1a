package tickets

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "ORDER:abc", truncate("ORDER:abc", 64))
	assert.Equal(t, "abcd...", truncate("abcdefgh", 4))

	// "₹" is three bytes; a cut inside it backs off to the rune start
	scan := "ORDER:" + strings.Repeat("₹", 30)
	out := truncate(scan, 64)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, "ORDER:"+strings.Repeat("₹", 19)+"...", out)
}
