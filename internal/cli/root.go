// Package cli implements the smartcube command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/SeamusWaldron/smartcube/internal/config"
	"github.com/SeamusWaldron/smartcube/internal/logging"
	"github.com/SeamusWaldron/smartcube/internal/protocol"
	"github.com/SeamusWaldron/smartcube/internal/recorder"
	"github.com/SeamusWaldron/smartcube/internal/storage"
)

const version = "0.2.0"

var (
	// Global flags
	cfgPath string
	dbPath  string
	verbose bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "smartcube",
	Short: "QiYi smart cube trainer",
	Long: `smartcube - A trainer for QiYi smart cubes.

Connect to your cube over Bluetooth, follow generated scrambles, and time
full CFOP solves or drill F2L and OLL cases with automatic phase splits.
Every finished solve is stored for later review.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			loaded.Storage.DBPath = dbPath
		}
		cfg = loaded

		l, err := logging.New(cfg.Logging.Level, cfg.Logging.File, verbose)
		if err != nil {
			return err
		}
		logger = l
		logger.Debug("config loaded", zap.String("path", cfgPath), zap.String("mode", cfg.Training.Mode))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (default: ~/.smartcube/smartcube.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
}

// cubeKey parses the configured AES key.
func cubeKey() ([]byte, error) {
	if cfg.Device.Key == "" {
		return nil, fmt.Errorf("no cube key configured; run 'smartcube config init --key <hex>' or set SMARTCUBE_KEY")
	}
	return protocol.ParseKey(cfg.Device.Key)
}

// openDB opens the solve history.
func openDB() (*storage.DB, error) {
	db, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// openStateFile opens the state file next to the config file.
func openStateFile() (*recorder.StateFile, error) {
	return recorder.NewStateFile(filepath.Join(filepath.Dir(cfgPath), "state.json"))
}
