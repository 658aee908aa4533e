package cli

import (
	"bufio"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rescale/rescale-analyses/internal/config"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rescale-analyses configuration",
		Long: `Configuration management commands for rescale-analyses.

Commands:
  init  - Create a configuration file
  show  - Display the effective configuration
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool
	var detailsEnabled bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration",
		Long: `Create the configuration file. Values not given as flags are
prompted for. The API key, if given, is stored in the shared token file
with owner-only permissions and never in the config file.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg := config.DefaultConfig()
			cfg.Username = user
			cfg.ListingURL = listingURL
			cfg.ListingFile = listingFile
			cfg.DetailsEnabled = detailsEnabled

			reader := bufio.NewReader(cmd.InOrStdin())
			var err error
			for cfg.Username == "" {
				if cfg.Username, err = promptLine(reader, out, "Username (required)", ""); err != nil {
					return err
				}
				if cfg.Username == "" {
					if _, peekErr := reader.Peek(1); peekErr != nil {
						return fmt.Errorf("username is required")
					}
				}
			}
			if cfg.ListingURL == "" && cfg.ListingFile == "" {
				if cfg.ListingURL, err = promptLine(reader, out, "Listing service URL", ""); err != nil {
					return err
				}
			}

			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.SaveConfigCSV(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(out, "Configuration saved to: %s\n", path)

			if apiKey != "" {
				tokenPath := config.GetDefaultTokenPath()
				if err := config.WriteTokenFile(tokenPath, apiKey); err != nil {
					return err
				}
				fmt.Fprintf(out, "API key saved to: %s\n", tokenPath)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")
	cmd.Flags().BoolVar(&detailsEnabled, "details", false, "Show the details action in menus")

	return cmd
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n\n", configPath())
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, kv := range configForDisplay(cfg) {
				fmt.Fprintf(tw, "%s\t%s\n", kv[0], kv[1])
			}
			tw.Flush()

			if err := cfg.Validate(); err != nil {
				fmt.Fprintf(out, "\nWarning: %v\n", err)
			}
			return nil
		},
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), configPath())
			return nil
		},
	}
}

// configForDisplay hides secrets when printing a config.
func configForDisplay(cfg *config.Config) [][2]string {
	mask := func(s string) string {
		if s == "" {
			return "(not set)"
		}
		return "(set)"
	}
	return [][2]string{
		{"username", cfg.Username},
		{"listing_url", cfg.ListingURL},
		{"listing_file", cfg.ListingFile},
		{"default_sort_column", cfg.DefaultSortColumn},
		{"default_sort_direction", cfg.DefaultSortDirection},
		{"details_enabled", fmt.Sprint(cfg.DetailsEnabled)},
		{"narrow_width", fmt.Sprint(cfg.NarrowWidth)},
		{"admin_policy_path", cfg.AdminPolicyPath},
		{"max_retries", fmt.Sprint(cfg.MaxRetries)},
		{"log_level", cfg.LogLevel},
		{"log_file", cfg.LogFile},
		{"proxy_mode", cfg.ProxyMode},
		{"proxy_host", cfg.ProxyHost},
		{"api_key", mask(cfg.APIKey)},
	}
}
