package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/torb/config"
	"github.com/rustyeddy/torb/logging"
)

var (
	cfgFile  string
	envFile  string
	logLevel string

	cfg    *config.Config
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "torb",
	Short: "Tokyo opening range breakout signals with virtual trading",
	Long: `torb watches one FX pair for breakouts of the Tokyo opening range
(09:00-10:00 JST), waits for a retest of the broken level and manages a
virtual trade for every confirmed signal.

It provides tools for:
  - Running the signal and virtual trade engine against OANDA prices
  - Inspecting the opening range and its filters for any day
  - Querying the trade journal

No orders are ever sent to a broker.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults when empty")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with OANDA credentials")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level")
}

func setup(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	if cfgFile == "" {
		cfg = config.Default()
	} else {
		c, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	cfg.ApplyEnv()
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	l, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	logger = l
	return nil
}
