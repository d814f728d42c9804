package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/teapot-build/teapot/internal/graph"
	"github.com/teapot-build/teapot/internal/style"
)

var lintBinary string

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Run clang-tidy over the current package's sources",
	Long: `Run clang-tidy over the root package's selected sources with the same
include paths and defines a build would use.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		root, err := graph.Build(ctx, ".", nil, graph.HostPlatform(runtime.GOOS))
		if err != nil {
			return err
		}
		return style.Lint(ctx, lintBinary, root, cmd.OutOrStdout())
	},
}

func init() {
	lintCmd.Flags().StringVar(&lintBinary, "linter", "clang-tidy", "linter binary to invoke")
}
