package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teapot-build/teapot/internal/scaffold"
)

var (
	addPath     string
	addFeatures []string
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a dependency to the current package's manifest",
	Long: `Record a path dependency in the current directory's tea.hcl.

Examples:
  teapot add mathx --path ../mathx
  teapot add logx --path ../logx --features color,timestamps`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if err := scaffold.AddDependency(".", name, addPath, addFeatures); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added dependency %s\n", name)
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addPath, "path", "", "relative path to the dependency package")
	addCmd.Flags().StringSliceVar(&addFeatures, "features", nil, "features to request from the dependency")
	_ = addCmd.MarkFlagRequired("path")
}
