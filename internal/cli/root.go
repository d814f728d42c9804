// Package cli defines the teapot command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teapot-build/teapot/internal/ctxlog"
	"github.com/teapot-build/teapot/internal/settings"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	jobs      int
	cfg       *settings.Settings
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "teapot",
	Short: "A build orchestrator for trees of C packages",
	Long: `teapot builds trees of local C packages.

Each package directory carries a tea.hcl manifest naming the package, its
features and its path dependencies. teapot resolves the tree, compiles every
package into a static archive and links the root package into an executable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(logLevel, logFormat, os.Stderr)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))

		var err error
		cfg, err = settings.Load(cfgFile)
		if err != nil {
			return err
		}
		if jobs > 0 {
			cfg.Jobs = jobs
		}
		return nil
	},
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "settings file (default is $HOME/.config/teapot/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().IntVarP(&jobs, "jobs", "j", 0, "parallel compile jobs (default is the CPU count)")

	rootCmd.AddCommand(brewCmd)
	rootCmd.AddCommand(pourCmd)
	rootCmd.AddCommand(sipCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(fmtCmd)
	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(versionCmd)
}
