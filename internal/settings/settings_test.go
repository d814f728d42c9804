package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	s := Default()
	assert.Equal(t, "cc", s.CC)
	assert.Equal(t, "ar", s.AR)
	assert.Equal(t, "nm", s.NM)
	assert.Equal(t, runtime.NumCPU(), s.Jobs)
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	t.Parallel()

	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cc: clang\njobs: 2\n"), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "clang", s.CC)
	assert.Equal(t, 2, s.Jobs)
	assert.Equal(t, "ar", s.AR)
	assert.Equal(t, "nm", s.NM)
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cc: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
