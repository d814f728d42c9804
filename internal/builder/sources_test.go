package builder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teapot-build/teapot/internal/graph"
	"github.com/teapot-build/teapot/internal/manifest"
)

// sourceLeaf builds a Leaf in dir with the given declared/enabled features
// and source files under src/, without going through manifest loading.
func sourceLeaf(t *testing.T, dir string, declared, enabled []string, files ...string) *graph.Leaf {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	for _, name := range files {
		path := filepath.Join(dir, "src", name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("// test fixture\n"), 0o644))
	}
	requested := map[string]bool{"linux": true}
	for _, name := range enabled {
		requested[name] = true
	}
	return &graph.Leaf{
		Manifest: &manifest.Manifest{Package: manifest.Package{Name: "pkg", Version: "0.1.0"}},
		Path:     dir,
		Features: graph.ResolveFeatures(declared, requested),
	}
}

func names(t *testing.T, sources []string) []string {
	t.Helper()
	out := make([]string, 0, len(sources))
	for _, s := range sources {
		out = append(out, filepath.Base(s))
	}
	return out
}

func TestSelectSources_FeatureTags(t *testing.T) {
	t.Parallel()

	t.Run("enabled tag selects, unknown tag always selects", func(t *testing.T) {
		t.Parallel()
		leaf := sourceLeaf(t, t.TempDir(), []string{"x"}, []string{"x"},
			"foo.c", "foo.x.c", "foo.y.c")

		sources, err := SelectSources(leaf)
		require.NoError(t, err)
		// foo.x.c is in because x is enabled; foo.y.c is in because "y" is
		// not a feature this leaf knows, so it does not gate anything.
		assert.Equal(t, []string{"foo.c", "foo.x.c", "foo.y.c"}, names(t, sources))
	})

	t.Run("disabled tag deselects", func(t *testing.T) {
		t.Parallel()
		leaf := sourceLeaf(t, t.TempDir(), []string{"x"}, nil,
			"foo.c", "foo.x.c", "foo.y.c")

		sources, err := SelectSources(leaf)
		require.NoError(t, err)
		assert.Equal(t, []string{"foo.c", "foo.y.c"}, names(t, sources))
	})

	t.Run("platform tags gate on the host feature", func(t *testing.T) {
		t.Parallel()
		leaf := sourceLeaf(t, t.TempDir(), nil, nil,
			"io.c", "io.linux.c", "io.windows.c")

		sources, err := SelectSources(leaf)
		require.NoError(t, err)
		assert.Equal(t, []string{"io.c", "io.linux.c"}, names(t, sources))
	})
}

func TestSelectSources_FiltersExtensionAndRecurses(t *testing.T) {
	t.Parallel()

	leaf := sourceLeaf(t, t.TempDir(), nil, nil,
		"main.c", "util.h", "nested/impl.c", "README")

	sources, err := SelectSources(leaf)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.c", "impl.c"}, names(t, sources))
}

func TestSelectSources_MissingSrcDir(t *testing.T) {
	t.Parallel()

	leaf := &graph.Leaf{
		Manifest: &manifest.Manifest{Package: manifest.Package{Name: "empty"}},
		Path:     t.TempDir(),
	}
	_, err := SelectSources(leaf)
	require.Error(t, err)
}
