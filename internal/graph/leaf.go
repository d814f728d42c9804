// Package graph resolves a manifest tree into a tree of Leaves: one fully
// feature-instantiated build node per dependency declaration, with the
// feature-gated dependency, define and library lists already flattened.
package graph

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/teapot-build/teapot/internal/ctxlog"
	"github.com/teapot-build/teapot/internal/manifest"
)

// Leaf is one resolved build node. It owns its manifest, its resolved
// feature set and the flattened define/library lists, plus one child Leaf
// per enabled dependency in declaration order. A Leaf lives for a single
// build invocation; nothing is cached across runs.
type Leaf struct {
	Manifest  *manifest.Manifest
	Path      string
	Features  []Feature
	Defines   []manifest.Define
	Libraries []string
	Children  []*Leaf
}

// Name returns the package name, which doubles as the archive/binary stem.
func (l *Leaf) Name() string { return l.Manifest.Package.Name }

// Version returns the informational package version.
func (l *Leaf) Version() string { return l.Manifest.Package.Version }

// FeatureEnabled reports whether the named feature exists on this Leaf and
// is enabled.
func (l *Leaf) FeatureEnabled(name string) bool {
	for _, f := range l.Features {
		if f.Name == name {
			return f.Enabled
		}
	}
	return false
}

// Build loads the manifest in dir and recursively resolves the whole
// dependency tree. requested holds the feature names asked of the root
// package (usually none); host is the implicit platform feature name that is
// auto-added to every Leaf at every depth. Any missing or malformed manifest
// fails the whole resolution.
func Build(ctx context.Context, dir string, requested []string, host string) (*Leaf, error) {
	return build(ctx, dir, requestSet(requested, host), host)
}

func build(ctx context.Context, dir string, requested map[string]bool, host string) (*Leaf, error) {
	m, err := manifest.Load(ctx, dir)
	if err != nil {
		return nil, err
	}

	features := ResolveFeatures(m.Package.Features, requested)
	leaf := &Leaf{
		Manifest:  m,
		Path:      dir,
		Features:  features,
		Defines:   flatten(m.Defines.Base, m.Defines.Feature, features),
		Libraries: flatten(m.Libraries.Base, m.Libraries.Feature, features),
	}

	deps := flatten(m.Dependencies.Base, m.Dependencies.Feature, features)
	for _, dep := range deps {
		// A dependency sees only the features its declaration requests,
		// plus the platform feature. The parent's own enabled set does not
		// propagate.
		child, err := build(ctx, filepath.Join(dir, dep.Path), requestSet(dep.Features, host), host)
		if err != nil {
			return nil, fmt.Errorf("resolving dependency %q of %q: %w", dep.Name, m.Package.Name, err)
		}
		leaf.Children = append(leaf.Children, child)
	}

	ctxlog.FromContext(ctx).Debug("Leaf resolved.",
		"package", leaf.Name(),
		"path", dir,
		"enabled", enabledNames(features),
		"children", len(leaf.Children))
	return leaf, nil
}

// flatten appends, after the base list, each enabled feature's list in
// feature universe order. Duplicates across lists are preserved; the result
// is a pure function of its inputs.
func flatten[T any](base []T, gated map[string][]T, features []Feature) []T {
	out := append([]T(nil), base...)
	for _, f := range features {
		if f.Enabled {
			out = append(out, gated[f.Name]...)
		}
	}
	return out
}

func enabledNames(features []Feature) []string {
	var names []string
	for _, f := range features {
		if f.Enabled {
			names = append(names, f.Name)
		}
	}
	return names
}
