package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/torb/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage configuration files for the engine.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  torb config init -o torb.yaml
  torb config validate -f torb.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	RunE:  runConfigValidate,
}

var (
	configInitOutput   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "torb.yaml", "output config file path")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	c := config.Default()
	if err := c.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("✓ Created default configuration: %s\n", configInitOutput)
	fmt.Println("\nPut OANDA_TOKEN and OANDA_ACCOUNT_ID in .env and run with:")
	fmt.Printf("  torb run -c %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	c, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Printf("✓ Configuration valid: %s\n", configValidatePath)
	fmt.Printf("  Account: %.0f %s (Risk: %.1f%%)\n", c.Account.Notional, c.Account.Currency, c.Account.RiskPercent*100)
	fmt.Printf("  Instrument: %s\n", c.Strategy.Instrument)
	fmt.Printf("  Engine: every %s, max %d positions, hold %s\n", c.Engine.Interval, c.Engine.MaxPositions, c.Engine.MaxHold)
	fmt.Printf("  Journal: %s\n", c.Journal.Type)
	return nil
}
