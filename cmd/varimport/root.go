package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	var cfgFile string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "varimport",
		Short: "Import genomic variation data from VCF files",
		Long: `varimport validates a VCF file with external validator tools,
aggregates per-contig variant statistics, cross-references identifiers
against assembly and sample metadata, and saves a Variation record.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(cfgFile)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.varimport.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")

	cmd.AddCommand(newImportCmd(&logLevel))
	cmd.AddCommand(newValidateCmd(&logLevel))
	cmd.AddCommand(newRunsCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("varimport version %s (%s) built %s\n", version, commit, date)
		},
	}
}

// initConfig loads configuration from file and environment.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigName(".varimport")
			viper.SetConfigType("yaml")
		}
	}

	viper.SetEnvPrefix("VARIMPORT")
	viper.AutomaticEnv()

	setConfigDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) {
			return nil // config file is optional
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func setConfigDefaults() {
	home, _ := os.UserHomeDir()

	viper.SetDefault("scratch", filepath.Join(os.TempDir(), "varimport"))
	viper.SetDefault("staging.root", "/staging")
	viper.SetDefault("workspace.url", "")
	viper.SetDefault("fileservice.url", "")
	viper.SetDefault("auth.token", "")
	viper.SetDefault("validator.timeout", 10*time.Minute)
	viper.SetDefault("crosscheck.mode", "lenient")
	viper.SetDefault("ledger.path", filepath.Join(home, ".varimport", "runs.duckdb"))
}

// newLogger builds the CLI logger at the requested level.
func newLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
