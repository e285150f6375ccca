package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	assert.True(t, c.Has("AAPL"))
	assert.True(t, c.Has("aapl"))
	assert.True(t, c.Has("^AORD"))
	assert.False(t, c.Has("ZZZZ"))

	assert.Equal(t, "Apple", c.DisplayName("AAPL"))
	assert.Equal(t, "apple", c.Keyword("AAPL"))
	assert.Equal(t, "Commonwealth Bank", c.DisplayName("cba.ax"))
	assert.Equal(t, []string{"All ordinaries", "All ords"}, c.Aliases("^AORD"))

	// Unknown tickers fall back to the symbol itself
	assert.Equal(t, "ZZZZ", c.DisplayName("ZZZZ"))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
"FOO": ["Foo Industries", "Foo"]
"BAR": ["Bar Corp"]
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"BAR", "FOO"}, c.Symbols())
	assert.Equal(t, "foo industries", c.Keyword("foo"))
}

func TestLoadRejectsEmptyAliasList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`"FOO": []`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
