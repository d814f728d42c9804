package cli

import (
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/teapot-build/teapot/internal/builder"
	"github.com/teapot-build/teapot/internal/ctxlog"
	"github.com/teapot-build/teapot/internal/graph"
)

var (
	brewRelease bool
	brewDebug   bool
)

var brewCmd = &cobra.Command{
	Use:   "brew",
	Short: "Build the current package tree into an executable",
	Long: `Resolve the dependency tree rooted at the current directory, compile every
package into a static archive and link the root package into an executable
under target/debug or target/release.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := buildBinary(cmd, brewRelease)
		return err
	},
}

func init() {
	registerProfileFlags(brewCmd, &brewRelease, &brewDebug)
}

func registerProfileFlags(cmd *cobra.Command, release, debug *bool) {
	cmd.Flags().BoolVar(release, "release", false, "build with optimizations")
	cmd.Flags().BoolVar(debug, "debug", false, "build with debug info (the default)")
	cmd.MarkFlagsMutuallyExclusive("release", "debug")
}

// buildBinary resolves the tree rooted at the working directory and links
// the program binary, returning its path.
func buildBinary(cmd *cobra.Command, release bool) (string, error) {
	ctx := cmd.Context()
	log := ctxlog.FromContext(ctx)

	host := graph.HostPlatform(runtime.GOOS)
	log.Debug("resolving dependency tree", "host", host)
	root, err := graph.Build(ctx, ".", nil, host)
	if err != nil {
		return "", err
	}

	profile := builder.Debug
	if release {
		profile = builder.Release
	}
	target := filepath.Join("target", profile.Dir())
	log.Debug("building", "package", root.Name(), "profile", profile.Dir())

	b := builder.New(cmd.OutOrStdout(), cfg, target, profile)
	return b.BuildBinary(ctx, root)
}
