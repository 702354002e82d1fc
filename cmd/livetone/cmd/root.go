package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nfrund/livetone/internal/config"
	"github.com/nfrund/livetone/internal/denylist"
	"github.com/nfrund/livetone/internal/logging"
	"github.com/nfrund/livetone/internal/validation"
)

var (
	cfg          *config.Config
	denyListPath string
)

var rootCmd = &cobra.Command{
	Use:   "livetone",
	Short: "Validate and run live-coded music scripts",
	Long: `livetone checks JavaScript live-coding scripts against a deny-list of
browser and runtime globals, then runs the scripts that pass in a sandbox
with the LiveTone namespace bound.

Available commands:
  validate    Scan a script and report disallowed names
  run         Run a script, optionally watching it and joining a feed
  serve       Serve the validation API and the collaborator relay
  denylist    Print the effective deny-list

Use "livetone [command] --help" for more information about a specific command.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Install(os.Stderr)

		var err error
		if cfg, err = config.New(); err != nil {
			return err
		}
		if denyListPath != "" {
			cfg.DenyListPath = denyListPath
		}
		return nil
	},
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&denyListPath, "denylist", "", "deny-list file (.json, .yaml); overrides LIVETONE_DENYLIST")
}

// loadValidator builds a validator for the configured deny-list.
func loadValidator() (*validation.Validator, error) {
	deny, err := denylist.NewOSLoader().Load(cfg.GetDenyListPath())
	if err != nil {
		return nil, fmt.Errorf("load deny-list: %w", err)
	}
	return validation.New(deny), nil
}

// background is used when a command runs without a cobra context.
func background(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
