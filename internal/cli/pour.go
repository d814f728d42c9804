package cli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"
)

var (
	pourRelease bool
	pourDebug   bool
)

var pourCmd = &cobra.Command{
	Use:   "pour",
	Short: "Build and run the current package",
	Long: `Build the current package tree like brew, then run the resulting
executable with stdin, stdout and stderr attached. The program's exit code
becomes teapot's exit code.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		binary, err := buildBinary(cmd, pourRelease)
		if err != nil {
			return err
		}
		return runBinary(cmd.Context(), binary)
	},
}

func init() {
	registerProfileFlags(pourCmd, &pourRelease, &pourDebug)
}

func runBinary(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, abs)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
