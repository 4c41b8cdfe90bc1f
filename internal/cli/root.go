package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"paper-trader/internal/config"
	"paper-trader/internal/logging"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	DataDir string
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		DataDir: config.DefaultDataDir(),
	}

	rootCmd := &cobra.Command{
		Use:   "papertrader",
		Short: "Paper Trader - a polling paper trading engine",
		Long: `Paper Trader evaluates market data on a fixed cycle, decides whether to
enter or exit a simulated leveraged position, and maintains a persistent
paper trading ledger with running performance statistics.

Use 'papertrader run' to start trading, 'papertrader account' to inspect
the ledger, and 'papertrader trades' to list trade history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
				app.DataDir = dir
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/papertrader)")
	rootCmd.PersistentFlags().String("data-dir", "", "ledger data directory (default: ~/.config/papertrader/data)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newAccountCmd(app))
	rootCmd.AddCommand(newTradesCmd(app))
	rootCmd.AddCommand(newSummaryCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("Paper Trader v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and manage application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	output.Bold("Trading")
	output.Printf("  Symbol:          %s\n", cfg.Trading.Symbol)
	output.Printf("  Timeframe:       %s\n", cfg.Trading.Timeframe)
	output.Printf("  Risk Percent:    %.2f%%\n", cfg.Trading.RiskPercent)
	output.Printf("  Initial Balance: %.2f\n", cfg.Trading.InitialBalance)
	output.Printf("  Leverage:        %.0fx\n", cfg.Trading.Leverage)
	output.Println()

	output.Bold("Indicators")
	output.Printf("  RSI:             %d (oversold %.0f / overbought %.0f)\n",
		cfg.Indicators.RSIPeriod, cfg.Indicators.RSIOversold, cfg.Indicators.RSIOverbought)
	output.Printf("  ATR:             %d\n", cfg.Indicators.ATRPeriod)
	output.Printf("  EMA:             fast %d / slow %d / trend %d\n",
		cfg.Indicators.EMAFast, cfg.Indicators.EMASlow, cfg.Indicators.EMATrend)
	output.Println()

	output.Bold("Signals")
	output.Printf("  Min Conditions:  %d/4\n", cfg.Signals.MinConditions)
	output.Printf("  Volume Threshold: %.2f\n", cfg.Signals.VolumeThreshold)
	output.Printf("  Filters:         volume=%v trend=%v volatility=%v\n",
		cfg.Signals.UseVolumeFilter, cfg.Signals.UseTrendFilter, cfg.Signals.UseVolatilityFilter)
	output.Println()

	output.Bold("Risk")
	output.Printf("  Profit Target:   %.2f%%\n", cfg.Risk.ProfitTarget)
	output.Printf("  Stop Loss:       %.2f%%\n", cfg.Risk.StopLoss)
	output.Printf("  Trailing Stop:   %v (ATR mult %.1f)\n", cfg.Risk.TrailingStop, cfg.Risk.TrailingStopATR)

	return nil
}
