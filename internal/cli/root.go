// Package cli provides the command-line interface for rescale-analyses.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rescale/rescale-analyses/internal/config"
	"github.com/rescale/rescale-analyses/internal/logging"
	"github.com/rescale/rescale-analyses/internal/version"
)

var (
	// Global flags
	cfgFile     string
	user        string
	listingURL  string
	listingFile string
	apiKey      string
	verbose     bool

	// Global logger
	logger  *logging.Logger
	logFile io.Closer

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "rescale-analyses",
		Short: "Browse analyses and run the actions you are allowed to take",
		Long: `Rescale Analyses ` + version.Version + ` - Built: ` + version.BuildTime + `
Lists analyses, tracks a selection, and shows which actions
(relaunch, delete, open session, extend time, ...) the current
user may take on it.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = logging.NewLogger(cmd.ErrOrStderr())
			if verbose {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default "+config.GetDefaultConfigPath()+")")
	rootCmd.PersistentFlags().StringVarP(&user, "user", "u", "", "Acting user (overrides "+config.EnvUser+" and config)")
	rootCmd.PersistentFlags().StringVar(&listingURL, "listing-url", "", "Listing service base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&listingFile, "listing-file", "", "Read the listing from a JSON file instead of the service")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key for the listing service (overrides all other sources)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")

	rootCmd.Version = version.Version + " (" + version.BuildTime + ")"

	return rootCmd
}

// Execute runs the CLI.
func Execute() error {
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, cancelling...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()
	if logFile != nil {
		logFile.Close()
	}

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newAnalysesCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}

// configPath returns the --config value or the default location.
func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.GetDefaultConfigPath()
}

// loadConfig loads the config file and applies environment and flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigCSV(configPath())
	if err != nil {
		return nil, err
	}
	cfg.MergeWithFlags(user, listingURL, apiKey)
	if listingFile != "" {
		cfg.ListingFile = listingFile
		if listingURL == "" {
			// An explicit file on the command line wins over a configured URL
			cfg.ListingURL = ""
		}
	}

	if !verbose {
		logging.SetGlobalLevel(logging.ParseLevel(cfg.LogLevel))
	}
	if cfg.LogFile != "" && logFile == nil {
		logFile = GetLogger().AddFileOutput(cfg.LogFile)
	}
	return cfg, nil
}
