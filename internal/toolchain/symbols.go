package toolchain

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/teapot-build/teapot/internal/ctxlog"
)

// Symbols lists the exported, defined symbol names in an archive, in the
// order the inspector reports them. That order is whatever the tool
// produces; it is not guaranteed to be alphabetical, declaration order, or
// stable across toolchain versions.
func Symbols(ctx context.Context, nm, archive string) ([]string, error) {
	args := []string{"-g", "--defined-only", archive}
	cmd := exec.CommandContext(ctx, nm, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", archive, &InvocationError{
			Command: nm + " " + strings.Join(args, " "),
			Output:  stdout.String() + stderr.String(),
			Err:     err,
		})
	}

	names := parseSymbols(stdout.Bytes())
	ctxlog.FromContext(ctx).Debug("Symbols inspected.", "archive", archive, "count", len(names))
	return names, nil
}

// parseSymbols extracts symbol names from nm output. Archive listings
// interleave member headers ("lib.a:member.o:") and blank lines with the
// "<address> <type> <name>" records; only the records carry a name. A single
// leading underscore is stripped to cover toolchains that mangle C symbols
// that way.
func parseSymbols(out []byte) []string {
	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 3 {
			continue
		}
		names = append(names, strings.TrimPrefix(fields[2], "_"))
	}
	return names
}
