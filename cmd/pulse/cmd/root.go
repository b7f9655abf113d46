package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTracePulse/internal/config"
	"github.com/OpenTraceLab/OpenTracePulse/internal/logging"
)

var (
	// Global flags
	verbose     bool
	configPath  string
	logLevel    string
	logJSON     bool
	cacheDir    string
	metricsFile string
	timeout     time.Duration

	// Resolved before every command
	settings = config.Default()
	logger   = logging.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "pulse",
	Short: "Pulse network simulator and cycle extrapolator",
	Long: `Simulate networks of flip-flop and conjunction modules that exchange
low and high pulses, one button press at a time.

Examples:
  pulse count testdata/chain.txt                 # Low*high pulses over 1000 presses
  pulse min testdata/counters.txt --target rx    # Fewest presses until rx gets a low pulse
  pulse info testdata/counters.txt --dot         # Graphviz view of the network`,
	Version:           "0.3.0",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
	rootCmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "directory for cached results (disabled when empty)")
	rootCmd.PersistentFlags().StringVar(&metricsFile, "metrics-file", "", "write Prometheus textfile metrics after the run")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "abort after this long (0 = no timeout)")
}

// loadSettings merges the config file, environment and flags.
func loadSettings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logJSON {
		cfg.Log.JSON = true
	}
	if cacheDir != "" {
		cfg.Cache.Dir = cacheDir
	}
	if metricsFile != "" {
		cfg.Metrics.File = metricsFile
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if verbose && level > slog.LevelDebug {
		level = slog.LevelDebug
	}

	settings = cfg
	logger = logging.New(logging.Config{
		Level:  level,
		JSON:   cfg.Log.JSON,
		Output: os.Stderr,
	})
	return nil
}
