package denylist

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BuildsKeywordUnion(t *testing.T) {
	d, err := New(Config{
		Properties: []string{"window"},
		Functions:  []string{"eval", "alert"},
		Objects:    []string{"WebSocket", "Function"},
	})
	require.NoError(t, err)

	assert.True(t, d.IsProperty("window"))
	assert.True(t, d.IsFunction("eval"))
	assert.True(t, d.IsObject("WebSocket"))
	assert.False(t, d.IsFunction("window"))
	assert.False(t, d.IsObject("eval"))

	assert.Equal(t, []string{"Function", "WebSocket", "alert", "eval", "window"}, d.Keywords())
}

func TestNew_RejectsEmptyNames(t *testing.T) {
	_, err := New(Config{Functions: []string{"eval", ""}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid deny-list")
}

func TestDefault(t *testing.T) {
	d := Default()

	testCases := []struct {
		name  string
		check func(string) bool
		value string
	}{
		{"window is a property", d.IsProperty, "window"},
		{"eval is a function", d.IsFunction, "eval"},
		{"alert is a function", d.IsFunction, "alert"},
		{"WebSocket is an object", d.IsObject, "WebSocket"},
		{"fetch is a keyword", d.IsKeyword, "fetch"},
		{"close is a function", d.IsFunction, "close"},
		{"print is a function", d.IsFunction, "print"},
		{"name is a property", d.IsProperty, "name"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, tc.check(tc.value))
		})
	}
}

func TestDefaultConfig_ReturnsIndependentCopies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Functions[0] = "mutated"

	assert.NotEqual(t, "mutated", DefaultConfig().Functions[0])
}

func TestLoader_Load(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/policy/deny.json", []byte(`{
		"properties": ["document"],
		"functions": ["fetch"],
		"objects": ["Worker"]
	}`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/policy/deny.yaml", []byte(`
properties: [document]
functions:
  - fetch
objects:
  - Worker
`), 0644))
	require.NoError(t, afero.WriteFile(fs, "/policy/deny.toml", []byte(""), 0644))
	require.NoError(t, afero.WriteFile(fs, "/policy/broken.json", []byte("{"), 0644))

	loader := NewLoader(fs)

	for _, path := range []string{"/policy/deny.json", "/policy/deny.yaml"} {
		t.Run(path, func(t *testing.T) {
			d, err := loader.Load(path)
			require.NoError(t, err)
			assert.Equal(t, []string{"document"}, d.Properties())
			assert.Equal(t, []string{"fetch"}, d.Functions())
			assert.Equal(t, []string{"Worker"}, d.Objects())
		})
	}

	t.Run("empty path uses default", func(t *testing.T) {
		d, err := loader.Load("")
		require.NoError(t, err)
		assert.True(t, d.IsFunction("eval"))
	})

	t.Run("unsupported extension", func(t *testing.T) {
		_, err := loader.Load("/policy/deny.toml")
		assert.ErrorContains(t, err, "unsupported deny-list format")
	})

	t.Run("malformed file", func(t *testing.T) {
		_, err := loader.Load("/policy/broken.json")
		assert.ErrorContains(t, err, "parse deny-list")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.Load("/policy/missing.json")
		assert.ErrorContains(t, err, "read deny-list")
	})
}
