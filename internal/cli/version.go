package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version is the tool version, overridable at link time.
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "teapot %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	},
}
