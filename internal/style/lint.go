package style

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/teapot-build/teapot/internal/builder"
	"github.com/teapot-build/teapot/internal/graph"
)

// Lint runs the given clang-tidy binary over the leaf's selected sources,
// passing the same include paths and defines a build of the leaf would use
// so the analyzer sees the code the compiler would. Tool output streams to
// out unmodified.
func Lint(ctx context.Context, binary string, leaf *graph.Leaf, out io.Writer) error {
	sources, err := builder.SelectSources(leaf)
	if err != nil {
		return err
	}

	args := append([]string{}, sources...)
	args = append(args, "--")
	for _, dir := range builder.IncludePaths(leaf) {
		args = append(args, "-I"+dir)
	}
	defines := append(builder.FeatureDefines(leaf), leaf.Defines...)
	for _, def := range defines {
		if def.Value == "" {
			args = append(args, "-D"+def.Name)
			continue
		}
		args = append(args, "-D"+def.Name+"="+def.Value)
	}

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", binary, err)
	}
	return nil
}
