// Package commands provides the CLI commands for Inkwell.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/inkwell-ai/inkwell/internal/config"
	"github.com/inkwell-ai/inkwell/internal/logging"
	"github.com/inkwell-ai/inkwell/internal/vault"
	"github.com/inkwell-ai/inkwell/pkg/types"
)

var (
	// Version information set at build time
	Version   = "0.1.0"
	BuildTime = "dev"
)

// Global flags
var (
	vaultDir string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "inkwell",
	Short: "Inkwell - AI agent for your note vault",
	Long: `Inkwell embeds an AI agent in a markdown note vault: sessions are
plain markdown documents, and the agent works on notes through a
capability-gated tool set.

Run 'inkwell sessions' to list recent sessions, 'inkwell tools' to see
the tool catalog, or 'inkwell migrate' to upgrade a legacy state folder.`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultDir, "vault", "", "Vault directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")

	rootCmd.SetVersionTemplate(fmt.Sprintf("inkwell %s (%s)\n", Version, BuildTime))

	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads configuration and opens the vault.
func setup() (*types.Config, *vault.FS, error) {
	dir := vaultDir
	if dir == "" {
		var err error
		if dir, err = os.Getwd(); err != nil {
			return nil, nil, err
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logging.Init(logging.Config{Level: logging.ParseLevel(cfg.LogLevel), Output: os.Stderr, Pretty: true})

	return cfg, vault.NewFS(cfg.VaultPath), nil
}
