package cli

import (
	"github.com/spf13/cobra"

	"github.com/teapot-build/teapot/internal/style"
)

var (
	fmtCheck  bool
	fmtBinary string
)

var fmtCmd = &cobra.Command{
	Use:   "fmt",
	Short: "Format the current package's sources with clang-format",
	RunE: func(cmd *cobra.Command, args []string) error {
		return style.Format(cmd.Context(), fmtBinary, ".", fmtCheck, cmd.OutOrStdout())
	},
}

func init() {
	fmtCmd.Flags().BoolVar(&fmtCheck, "check", false, "print diffs instead of rewriting files")
	fmtCmd.Flags().StringVar(&fmtBinary, "formatter", "clang-format", "formatter binary to invoke")
}
