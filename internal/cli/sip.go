package cli

import (
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/teapot-build/teapot/internal/builder"
	"github.com/teapot-build/teapot/internal/graph"
)

var sipCmd = &cobra.Command{
	Use:   "sip",
	Short: "Build and run the package's test harness",
	Long: `Build the current package tree in the debug profile, discover test_
functions exported by the root package's archive and run them through a
generated harness.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		root, err := graph.Build(ctx, ".", nil, graph.HostPlatform(runtime.GOOS))
		if err != nil {
			return err
		}

		target := filepath.Join("target", builder.Debug.Dir())
		b := builder.New(cmd.OutOrStdout(), cfg, target, builder.Debug)
		harness, err := b.BuildTestHarness(ctx, root)
		if err != nil {
			return err
		}
		return runBinary(ctx, harness)
	},
}
