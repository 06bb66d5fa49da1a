package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "BAN KAFILA", c.Title)
	assert.Equal(t, "PAC Ground, Kanpur", c.Location)
	assert.Equal(t, "INR", c.Currency)
	require.Len(t, c.Tickets, 5)

	expected := map[string]int64{
		"silver": 999,
		"gold":   2199,
		"fanpit": 3499,
		"vip":    15000,
		"vvip":   25000,
	}
	for id, price := range expected {
		tier, ok := c.Tier(id)
		require.True(t, ok, id)
		assert.Equal(t, price, tier.UnitPrice, id)
	}

	_, ok := c.Tier("platinum")
	assert.False(t, ok)
}

func TestParsePrice(t *testing.T) {
	cases := map[string]int64{
		"₹999":     999,
		"₹2,199":   2199,
		"Rs 15000": 15000,
	}
	for in, want := range cases {
		got, err := ParsePrice(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParsePrice("free")
	assert.Error(t, err)
}

func TestLoadOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	raw := "title: TEST\nslug: test\ndate: \"2026-02-01T00:00:00\"\nlocation: Hall\ntickets:\n  - id: ga\n    name: GENERAL\n    price: \"₹500\"\n"
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "TEST", c.Title)
	assert.Equal(t, "INR", c.Currency)

	tier, ok := c.Tier("ga")
	require.True(t, ok)
	assert.Equal(t, int64(500), tier.UnitPrice)
}

func TestParseRejectsBadCatalogs(t *testing.T) {
	_, err := Parse([]byte("title: X\ntickets: []\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("title: X\ntickets:\n  - id: a\n    price: \"₹1\"\n  - id: a\n    price: \"₹2\"\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = Parse([]byte("title: X\nunknown: 1\ntickets:\n  - id: a\n    price: \"₹1\"\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
