package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teapot-build/teapot/internal/scaffold"
)

var (
	newLib bool
	newBin bool
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a new package directory",
	Long: `Create a new package directory with a starter manifest and starter
sources.

Examples:
  teapot new kettle --bin
  teapot new steep --lib`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		kind := scaffold.Library
		if newBin {
			kind = scaffold.Binary
		}
		if err := scaffold.NewPackage(".", name, kind); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created package %s\n", name)
		return nil
	},
}

func init() {
	newCmd.Flags().BoolVar(&newLib, "lib", false, "create a library package")
	newCmd.Flags().BoolVar(&newBin, "bin", false, "create a binary package")
	newCmd.MarkFlagsOneRequired("lib", "bin")
	newCmd.MarkFlagsMutuallyExclusive("lib", "bin")
}
