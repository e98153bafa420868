package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forgecore.log")
	l, err := New(Config{Level: "debug", Encoding: "json", Output: path})
	require.NoError(t, err)

	l.Debug("routed")
	require.NoError(t, l.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level":"DEBUG"`)
	assert.Contains(t, string(data), `"msg":"routed"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNewFallsBackOnBadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forgecore.log")
	l, err := New(Config{Level: "chatty", Output: path})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(-1), "debug is off at info level")
	assert.True(t, l.Core().Enabled(0))
}
