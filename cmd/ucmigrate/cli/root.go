// Package cli implements the ucmigrate command-line interface using Cobra.
// It provides commands for discovering UC-compatible IAM roles and migrating
// them to Unity Catalog storage credentials.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/databrickslabs/ucmigrate/internal/config"
	"github.com/databrickslabs/ucmigrate/internal/install"
	"github.com/databrickslabs/ucmigrate/internal/log"
)

var (
	verbose    bool
	jsonOut    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "ucmigrate",
	Short: "Migrate AWS instance profile access to Unity Catalog storage credentials",
	Long: `ucmigrate moves S3 access that was granted through AWS instance
profiles onto Unity Catalog storage credentials.

The flow is: discover IAM roles whose trust policy admits the Unity Catalog
account, review the role-to-bucket action plan, then create and validate one
storage credential per role. Nothing is applied without confirmation.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log.Init(log.Options{
			Verbose:    verbose,
			JSONFormat: jsonOut,
		})
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads the config file selected by --config (or the default).
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// openStore opens the state database named by the config.
func openStore(cfg *config.Config) (*install.Store, error) {
	return install.OpenStore(cfg.StorePath())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to ucmigrate.yaml (default: ./ucmigrate.yaml)")
}
