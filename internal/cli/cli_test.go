package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_LevelGating(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger("error", "text", &buf)
	logger.Warn("quiet")
	logger.Error("loud")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "loud")
}

func TestNewLogger_JSONFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger("info", "json", &buf)
	logger.Info("hello")

	assert.Contains(t, buf.String(), `"msg":"hello"`)
}

func TestNewLogger_UnknownLevelDefaultsToWarn(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := newLogger("chatty", "text", &buf)
	logger.Info("info")
	logger.Warn("warn")

	out := buf.String()
	assert.NotContains(t, out, "msg=info")
	assert.Contains(t, out, "msg=warn")
}

func TestRootCommand_Subcommands(t *testing.T) {
	t.Parallel()

	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"brew", "pour", "sip", "new", "add", "fmt", "lint", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"version"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "teapot 0.1.0")
}
