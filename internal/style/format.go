// Package style shells out to clang tooling for the `fmt` and `lint`
// commands. Both tools are optional extras; nothing in the build pipeline
// depends on this package.
package style

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/teapot-build/teapot/internal/toolchain"
)

// Format runs the given clang-format binary over every C source and header
// under dir's src and include trees. With check set it rewrites nothing and
// instead prints a unified diff per drifting file, returning an error when
// any file needs formatting.
func Format(ctx context.Context, binary, dir string, check bool, out io.Writer) error {
	files, err := collectFiles(dir)
	if err != nil {
		return err
	}

	drifted := 0
	for _, file := range files {
		if !check {
			if err := runFormat(ctx, binary, file); err != nil {
				return err
			}
			continue
		}
		diff, err := formatDiff(ctx, binary, file)
		if err != nil {
			return err
		}
		if diff != "" {
			fmt.Fprint(out, diff)
			drifted++
		}
	}
	if drifted > 0 {
		return fmt.Errorf("%d file(s) need formatting", drifted)
	}
	return nil
}

// collectFiles walks dir/src and dir/include for .c and .h files. A missing
// include tree is fine; libraries without public headers have none.
func collectFiles(dir string) ([]string, error) {
	var files []string
	for _, sub := range []string{"src", "include"} {
		root := filepath.Join(dir, sub)
		if _, err := os.Stat(root); os.IsNotExist(err) {
			if sub == "include" {
				continue
			}
			return nil, fmt.Errorf("no src directory in %s", dir)
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch filepath.Ext(path) {
			case ".c", ".h":
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", root, err)
		}
	}
	return files, nil
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func runFormat(ctx context.Context, binary, file string) error {
	cmd := exec.CommandContext(ctx, binary, "-i", file)
	if output, err := cmd.CombinedOutput(); err != nil {
		return &toolchain.InvocationError{
			Command: binary + " -i " + file,
			Output:  string(output),
			Err:     err,
		}
	}
	return nil
}

// formatDiff returns a unified diff between file's contents and the
// formatter's output, or "" when they agree.
func formatDiff(ctx context.Context, binary, file string) (string, error) {
	original, err := readFile(file)
	if err != nil {
		return "", err
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, file)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &toolchain.InvocationError{
			Command: binary + " " + file,
			Output:  stderr.String(),
			Err:     err,
		}
	}

	formatted := stdout.String()
	if formatted == original {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(formatted),
		FromFile: file,
		ToFile:   file + " (formatted)",
		Context:  3,
	})
}
