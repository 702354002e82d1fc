package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/nfrund/livetone/internal/denylist"
)

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	denyListPath, denyListFormat = "", "json"
	runWatch, runFeedURL, runTag = false, "", ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.js")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "livetone v0.1.0\n", out)
}

func TestValidate(t *testing.T) {
	t.Run("clean script", func(t *testing.T) {
		path := writeScript(t, "LiveTone.setBpm(90); LiveTone.start()")
		out, err := execute(t, "validate", path)
		require.NoError(t, err)
		assert.Contains(t, out, "OK")
	})

	t.Run("violations", func(t *testing.T) {
		path := writeScript(t, "eval('1'); new WebSocket('ws://x')")
		out, err := execute(t, "validate", path)
		require.ErrorIs(t, err, errInvalid)
		assert.Contains(t, out, "function_call")
		assert.Contains(t, out, "WebSocket")
		assert.Contains(t, out, "ValidationError: Contains invalid codes(such as: Calling the 'eval' is not allowed)")
	})

	t.Run("syntax error", func(t *testing.T) {
		path := writeScript(t, "function (")
		out, err := execute(t, "validate", path)
		require.ErrorIs(t, err, errInvalid)
		assert.Contains(t, out, "SyntaxError")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.js"))
		require.Error(t, err)
	})
}

func TestDenyList(t *testing.T) {
	out, err := execute(t, "denylist", "--format", "yaml")
	require.NoError(t, err)

	var cfg denylist.Config
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	assert.Contains(t, cfg.Functions, "eval")
	assert.Contains(t, cfg.Objects, "WebSocket")

	_, err = execute(t, "denylist", "--format", "xml")
	require.Error(t, err)
}

func TestDenyList_CustomFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deny.yaml")
	require.NoError(t, os.WriteFile(path, []byte("properties: [window]\nfunctions: [alert]\nobjects: []\n"), 0o644))

	out, err := execute(t, "denylist", "--denylist", path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"properties":["window"],"functions":["alert"],"objects":[]}`, out)
}

func TestRun_OneShot(t *testing.T) {
	t.Run("playing", func(t *testing.T) {
		path := writeScript(t, "LiveTone.setBpm(90); LiveTone.start()")
		out, err := execute(t, "run", path)
		require.NoError(t, err)
		assert.Contains(t, out, "state: Playing")
	})

	t.Run("rejected", func(t *testing.T) {
		path := writeScript(t, "fetch('/x')")
		out, err := execute(t, "run", path)
		require.ErrorIs(t, err, errInvalid)
		assert.Contains(t, out, "DisallowedFunctionCallError: Calling the 'fetch' is not allowed")
		assert.Contains(t, out, "state: Error")
	})
}
