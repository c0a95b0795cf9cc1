package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/jonaycp/my-timesheet/internal/config"
	"github.com/jonaycp/my-timesheet/internal/store"
)

var (
	// Global flags
	verbose    bool
	configPath string
	dataDir    string

	cfg    *config.AppConfig
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "Extract one person's shifts from a roster spreadsheet",
	Long: `timesheet reads a roster workbook (two header rows: place, shift;
then one row per day) and lists every cell that mentions a name,
grouped by week and day.

Run "timesheet serve" for the web page or "timesheet extract" for the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		loaded, _, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("failed to load config %s: %w", path, err)
		}
		cfg = loaded
		if dataDir != "" {
			cfg.Data.DataDir = dataDir
		}

		logger, err = newLogger(verbose || cfg.Server.DevMode)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zc.Build()
}

// openStore 打开数据目录下的 SQLite（链接缓存）
func openStore() (*store.Store, error) {
	dir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, err
	}
	return store.New(filepath.Join(dir, store.DBFileName))
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: config.toml next to the executable)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (overrides config)")

	rootCmd.AddCommand(serveCmd, extractCmd, linkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
