package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jward/depparse/internal/config"
	"github.com/spf13/cobra"
)

var (
	flagDB        string
	flagFormat    string
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

// settings is the resolved configuration: defaults, then --config, then flags.
var settings = config.Default()

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "depparse",
	Short:         "Arc-standard dependency parsing with pluggable oracles",
	Long:          "Depparse parses whitespace-tokenized sentences with a transition oracle and stores the dependency arcs in a SQLite treebank.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := validateFormat(flagFormat); err != nil {
			return err
		}
		if err := loadSettings(cmd); err != nil {
			return err
		}
		logger, err := newLogger(os.Stderr, settings.LogLevel, settings.LogFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(logger)
		return nil
	},
	// No Run; prints help by default.
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "database path (default: .depparse/treebank.db)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "HCL configuration file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level: debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format: text|json")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(sentencesCmd)
	rootCmd.AddCommand(deleteCmd)
}

// validateFormat rejects unknown --format values.
func validateFormat(format string) error {
	switch format {
	case "json", "text":
		return nil
	}
	return fmt.Errorf("invalid --format %q: must be json or text", format)
}

// loadSettings layers the config file and explicitly set flags over the
// defaults.
func loadSettings(cmd *cobra.Command) error {
	if flagConfig != "" {
		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		settings = cfg
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		settings.Database = flagDB
	}
	if flags.Changed("log-level") || flagConfig == "" {
		settings.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") || flagConfig == "" {
		settings.LogFormat = flagLogFormat
	}
	applyParseFlags(cmd)
	return settings.Validate()
}

// newLogger builds the stderr logger in the configured level and format.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// resolveDBPath returns the database path from --db, the config file, or
// the default under the working directory.
func resolveDBPath() (string, error) {
	path := settings.Database
	if path == "" {
		path = filepath.Join(".depparse", "treebank.db")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving database path %q: %w", path, err)
	}
	return abs, nil
}
