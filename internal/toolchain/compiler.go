// Package toolchain wraps the external C toolchain: a compiler driver for
// compiling and linking, an archiver for static libraries, and a symbol
// inspector for test discovery. Accumulated flags and artifact paths are
// passed to the tools verbatim; a nonzero exit is always fatal.
package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/teapot-build/teapot/internal/ctxlog"
	"github.com/teapot-build/teapot/internal/manifest"
	"github.com/teapot-build/teapot/internal/settings"
)

// SourceExt is the source file extension the toolchain recognizes.
const SourceExt = ".c"

// OutputType selects the artifact a link step produces.
type OutputType int

const (
	// Binary links an executable via the compiler driver.
	Binary OutputType = iota
	// Library archives the accumulated artifacts into a static library.
	Library
)

// Compiler accumulates include paths, defines, optimization/debug flags and
// artifact paths, then drives the external toolchain. One Compiler serves
// one compile+link step and is discarded afterwards.
type Compiler struct {
	targetDir string
	cc        string
	ar        string
	jobs      int

	compileFlags []string
	linkFlags    []string
	defines      []manifest.Define

	// Link inputs: freshly compiled object groups are prepended, archives
	// and extra objects are appended.
	artifacts []string
}

// New creates a Compiler writing its artifacts under targetDir, using the
// toolchain binaries and job count from s.
func New(targetDir string, s *settings.Settings) *Compiler {
	return &Compiler{
		targetDir: targetDir,
		cc:        s.CC,
		ar:        s.AR,
		jobs:      s.Jobs,
		linkFlags: []string{"-lm"},
	}
}

// Include adds an include search path.
func (c *Compiler) Include(path string) {
	c.compileFlags = append(c.compileFlags, "-I"+path)
}

// Define adds a preprocessor define. An empty value defines the bare symbol.
func (c *Compiler) Define(d manifest.Define) {
	c.defines = append(c.defines, d)
}

// SetOptimizationLevel adds an -O<level> flag.
func (c *Compiler) SetOptimizationLevel(level int) {
	c.compileFlags = append(c.compileFlags, fmt.Sprintf("-O%d", level))
}

// EnableDebugInfo adds the debug-info flag.
func (c *Compiler) EnableDebugInfo() {
	c.compileFlags = append(c.compileFlags, "-g")
}

// AddStaticLibrary appends a previously built archive to the link inputs.
func (c *Compiler) AddStaticLibrary(name string) {
	c.artifacts = append(c.artifacts, c.ArchivePath(name))
}

// AddSystemLibrary appends a -l flag for a system library to the link step.
func (c *Compiler) AddSystemLibrary(name string) {
	c.linkFlags = append(c.linkFlags, "-l"+name)
}

// ArchivePath returns where the archive for name lives under the target
// directory.
func (c *Compiler) ArchivePath(name string) string {
	return filepath.Join(c.targetDir, "lib"+name+".a")
}

// BinaryPath returns where the executable for name lives under the target
// directory.
func (c *Compiler) BinaryPath(name string) string {
	return filepath.Join(c.targetDir, name)
}

// objectPath mirrors a source path under the object output directory, so
// same-named files in different directories never collide. Parent-directory
// segments are rewritten to keep the object inside the tree.
func (c *Compiler) objectPath(src string) string {
	clean := filepath.Clean(src)
	if vol := filepath.VolumeName(clean); vol != "" {
		clean = clean[len(vol):]
	}
	clean = strings.TrimPrefix(clean, string(filepath.Separator))

	parts := strings.Split(clean, string(filepath.Separator))
	for i, part := range parts {
		if part == ".." {
			parts[i] = "__"
		}
	}
	mirrored := filepath.Join(parts...)
	mirrored = strings.TrimSuffix(mirrored, filepath.Ext(mirrored)) + ".o"
	return filepath.Join(c.targetDir, "objects", mirrored)
}

// Compile turns every source into an object file. Sources compile
// independently across a bounded worker pool; the first failure cancels the
// rest and is returned with its captured output. onProgress, when non-nil,
// observes the monotonically increasing completion count. On success the
// produced objects are prepended to the link inputs in source order.
func (c *Compiler) Compile(ctx context.Context, sources []string, onProgress func(done, total int)) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Compile started.", "sources", len(sources), "jobs", c.jobs)

	var done atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.jobs)
	for _, src := range sources {
		src := src
		g.Go(func() error {
			obj := c.objectPath(src)
			if err := os.MkdirAll(filepath.Dir(obj), 0o755); err != nil {
				return fmt.Errorf("creating object directory: %w", err)
			}

			args := make([]string, 0, len(c.defines)+len(c.compileFlags)+4)
			for _, d := range c.defines {
				if d.Value == "" {
					args = append(args, "-D"+d.Name)
				} else {
					args = append(args, "-D"+d.Name+"="+d.Value)
				}
			}
			args = append(args, c.compileFlags...)
			args = append(args, "-c", src, "-o", obj)

			if err := run(gctx, c.cc, args...); err != nil {
				return fmt.Errorf("compiling %s: %w", src, err)
			}
			if onProgress != nil {
				onProgress(int(done.Add(1)), len(sources))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	objects := make([]string, 0, len(sources)+len(c.artifacts))
	for _, src := range sources {
		objects = append(objects, c.objectPath(src))
	}
	c.artifacts = append(objects, c.artifacts...)
	logger.Debug("Compile finished.", "objects", len(sources))
	return nil
}

// Link produces the named artifact from the accumulated inputs: an archive
// via the archiver for Library, an executable via the compiler driver plus
// link flags for Binary.
func (c *Compiler) Link(ctx context.Context, name string, output OutputType) error {
	logger := ctxlog.FromContext(ctx)

	switch output {
	case Library:
		artifact := c.ArchivePath(name)
		logger.Debug("Archiving.", "artifact", artifact, "inputs", len(c.artifacts))
		args := append([]string{"rcs", artifact}, c.artifacts...)
		if err := run(ctx, c.ar, args...); err != nil {
			return fmt.Errorf("archiving %s: %w", name, err)
		}
	case Binary:
		artifact := c.BinaryPath(name)
		logger.Debug("Linking.", "artifact", artifact, "inputs", len(c.artifacts))
		args := append(append([]string{}, c.linkFlags...), c.artifacts...)
		args = append(args, "-o", artifact)
		if err := run(ctx, c.cc, args...); err != nil {
			return fmt.Errorf("linking %s: %w", name, err)
		}
	default:
		return fmt.Errorf("unknown output type %d", output)
	}
	return nil
}
