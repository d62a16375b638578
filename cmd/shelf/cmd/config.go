package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/printandread/shelf/internal/adapter"
)

func newConfigCommand(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var (
		apiURL string
		force  bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a configuration file with default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := flags.configFile
			if path == "" {
				path = filepath.Join(adapter.DefaultConfigDir(), "config.yaml")
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := adapter.DefaultConfig()
			if apiURL != "" {
				cfg.API.BaseURL = apiURL
			} else if flags.apiURL != "" {
				cfg.API.BaseURL = flags.apiURL
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := adapter.SaveConfig(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&apiURL, "url", "", "catalogue API base URL")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}
