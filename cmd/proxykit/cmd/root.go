package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/funvibe/proxykit/internal/config"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "proxykit",
	Short: "proxykit - synthesize proxy types at run time",
	Long: `proxykit builds proxy types over classes and contracts and routes
their calls through a policy.

The CLI loads contracts from .proto services and Go interfaces, shows which
methods the configured rules intercept, and synthesizes proxies for them.
Settings come from proxykit.yaml, found in the current directory or a parent.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Level()
		name := logLevel
		if name == "" {
			name = os.Getenv(config.EnvLogLevel)
		}
		if name != "" {
			if err := level.UnmarshalText([]byte(name)); err != nil {
				return fmt.Errorf("invalid log level %q", name)
			}
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is proxykit.yaml in . or a parent, or $"+config.EnvConfig+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (overrides the config file)")
}

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv(config.EnvConfig)
	}
	if path == "" {
		found, err := config.Find(".")
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
