// Package builder walks a resolved Leaf tree and drives the toolchain over
// it: depth-first archive builds for every node, then a final binary or
// test-harness link for the root.
package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/teapot-build/teapot/internal/ctxlog"
	"github.com/teapot-build/teapot/internal/graph"
	"github.com/teapot-build/teapot/internal/manifest"
	"github.com/teapot-build/teapot/internal/settings"
	"github.com/teapot-build/teapot/internal/toolchain"
)

// Profile selects the optimization/debug flavor of a build.
type Profile int

const (
	// Debug compiles with debug info and no optimization.
	Debug Profile = iota
	// Release compiles at the highest optimization level.
	Release
)

// Dir returns the per-profile subdirectory under target/.
func (p Profile) Dir() string {
	if p == Release {
		return "release"
	}
	return "debug"
}

// Builder runs the build for one invocation. It holds no state across
// invocations; every build is a clean rebuild.
type Builder struct {
	out       io.Writer
	settings  *settings.Settings
	targetDir string
	profile   Profile
}

// New creates a Builder writing artifacts and progress as configured.
func New(out io.Writer, s *settings.Settings, targetDir string, profile Profile) *Builder {
	return &Builder{out: out, settings: s, targetDir: targetDir, profile: profile}
}

// Build compiles leaf and everything below it. Children build first, so
// every dependency archive exists on disk before its parent needs it as a
// link input. Every Leaf, the root included, is materialized as a static
// archive; that uniformity is what lets the final binary and test-harness
// links treat the root like any dependency.
func (b *Builder) Build(ctx context.Context, leaf *graph.Leaf) error {
	for _, child := range leaf.Children {
		if err := b.Build(ctx, child); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(b.targetDir, 0o755); err != nil {
		return fmt.Errorf("creating target directory: %w", err)
	}

	sources, err := SelectSources(leaf)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Building leaf.",
		"package", leaf.Name(),
		"sources", len(sources),
		"profile", b.profile.Dir())

	comp := b.configure(leaf)
	prog := newProgress(b.out, leaf.Name(), leaf.Version())
	if err := comp.Compile(ctx, sources, prog.compiling); err != nil {
		prog.finish()
		return err
	}
	prog.linking(len(sources))
	if err := comp.Link(ctx, leaf.Name(), toolchain.Library); err != nil {
		prog.finish()
		return err
	}
	prog.finish()
	return nil
}

// BuildBinary builds the whole tree, synthesizes the entry shim and links
// the final executable. It returns the executable's path.
func (b *Builder) BuildBinary(ctx context.Context, root *graph.Leaf) (string, error) {
	if err := b.Build(ctx, root); err != nil {
		return "", err
	}

	shim := filepath.Join(b.targetDir, entryFileName)
	if err := os.WriteFile(shim, []byte(entryShim(root.Name())), 0o644); err != nil {
		return "", fmt.Errorf("writing entry shim: %w", err)
	}

	comp := toolchain.New(b.targetDir, b.settings)
	if err := comp.Compile(ctx, []string{shim}, nil); err != nil {
		return "", err
	}
	b.addLinkInputs(comp, root)
	if err := comp.Link(ctx, root.Name(), toolchain.Binary); err != nil {
		return "", err
	}
	return comp.BinaryPath(root.Name()), nil
}

// BuildTestHarness builds the root archive, discovers its test symbols and
// links a harness binary that runs them. An archive with no test symbols
// yields a valid, vacuous harness. It returns the harness binary's path.
func (b *Builder) BuildTestHarness(ctx context.Context, root *graph.Leaf) (string, error) {
	if err := b.Build(ctx, root); err != nil {
		return "", err
	}

	comp := toolchain.New(b.targetDir, b.settings)
	symbols, err := toolchain.Symbols(ctx, b.settings.NM, comp.ArchivePath(root.Name()))
	if err != nil {
		return "", err
	}
	var tests []string
	for _, name := range symbols {
		if strings.HasPrefix(name, TestSymbolPrefix) {
			tests = append(tests, name)
		}
	}
	ctxlog.FromContext(ctx).Debug("Test symbols discovered.", "count", len(tests))

	harness := filepath.Join(b.targetDir, harnessFileName)
	if err := os.WriteFile(harness, []byte(testHarness(tests)), 0o644); err != nil {
		return "", fmt.Errorf("writing test harness: %w", err)
	}

	if err := comp.Compile(ctx, []string{harness}, nil); err != nil {
		return "", err
	}
	b.addLinkInputs(comp, root)
	name := root.Name() + "-test"
	if err := comp.Link(ctx, name, toolchain.Binary); err != nil {
		return "", err
	}
	return comp.BinaryPath(name), nil
}

// configure sets up a fresh Compiler for one Leaf: include paths for the
// Leaf and its transitive dependencies, one bare define per enabled feature,
// the flattened manifest defines, and the profile flags.
func (b *Builder) configure(leaf *graph.Leaf) *toolchain.Compiler {
	comp := toolchain.New(b.targetDir, b.settings)
	for _, dir := range IncludePaths(leaf) {
		comp.Include(dir)
	}
	for _, d := range FeatureDefines(leaf) {
		comp.Define(d)
	}
	for _, d := range leaf.Defines {
		comp.Define(d)
	}
	if b.profile == Release {
		comp.SetOptimizationLevel(3)
	} else {
		comp.EnableDebugInfo()
	}
	return comp
}

// addLinkInputs appends every archive of the tree in pre-order (root first)
// plus a system-library flag for each flattened library anywhere in the
// tree.
func (b *Builder) addLinkInputs(comp *toolchain.Compiler, root *graph.Leaf) {
	var walk func(l *graph.Leaf)
	walk = func(l *graph.Leaf) {
		comp.AddStaticLibrary(l.Name())
		for _, lib := range l.Libraries {
			comp.AddSystemLibrary(lib)
		}
		for _, child := range l.Children {
			walk(child)
		}
	}
	walk(root)
}

// IncludePaths returns leaf's own include and src directories followed by
// the include directory of every transitive dependency.
func IncludePaths(leaf *graph.Leaf) []string {
	paths := []string{
		filepath.Join(leaf.Path, "include"),
		filepath.Join(leaf.Path, "src"),
	}
	var walk func(l *graph.Leaf)
	walk = func(l *graph.Leaf) {
		for _, child := range l.Children {
			paths = append(paths, filepath.Join(child.Path, "include"))
			walk(child)
		}
	}
	walk(leaf)
	return paths
}

// FeatureDefines returns one bare define per enabled feature, uppercased
// and prefixed so feature flags cannot collide with manifest defines.
func FeatureDefines(leaf *graph.Leaf) []manifest.Define {
	var defs []manifest.Define
	for _, f := range leaf.Features {
		if f.Enabled {
			defs = append(defs, manifest.Define{Name: "TEA_FEATURE_" + strings.ToUpper(f.Name)})
		}
	}
	return defs
}
