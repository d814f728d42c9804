package builder

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/teapot-build/teapot/internal/graph"
	"github.com/teapot-build/teapot/internal/toolchain"
)

// SelectSources enumerates the C sources under the Leaf's src directory and
// applies the conditional-compilation naming convention. The walk is
// lexical, so the result is deterministic for a fixed tree.
func SelectSources(leaf *graph.Leaf) ([]string, error) {
	root := filepath.Join(leaf.Path, "src")
	var sources []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != toolchain.SourceExt {
			return nil
		}
		if sourceSelected(leaf, d.Name()) {
			sources = append(sources, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerating sources of %q: %w", leaf.Name(), err)
	}
	return sources, nil
}

// sourceSelected applies the `<stem>.<tag>.c` rule: when the tag names a
// feature this Leaf knows, the file is included iff that feature is
// enabled. A missing tag, or a tag that is not a known feature name, never
// gates the file. The second half means a typoed feature tag compiles
// unconditionally instead of failing; that is the established convention,
// so keep it in mind when renaming features.
func sourceSelected(leaf *graph.Leaf, name string) bool {
	stem := strings.TrimSuffix(name, toolchain.SourceExt)
	dot := strings.LastIndex(stem, ".")
	if dot < 0 {
		return true
	}
	tag := stem[dot+1:]
	for _, f := range leaf.Features {
		if f.Name == tag {
			return f.Enabled
		}
	}
	return true
}
