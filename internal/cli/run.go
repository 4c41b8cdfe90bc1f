package cli

import (
	"context"
	"errors"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"paper-trader/internal/config"
	"paper-trader/internal/engine"
	"paper-trader/internal/ledger"
	"paper-trader/internal/logging"
	"paper-trader/internal/marketdata"
	"paper-trader/internal/store"
)

func newRunCmd(app *App) *cobra.Command {
	var (
		once   bool
		preset string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the paper trading engine",
		Long: `Run the engine: each cycle fetches the latest bar window, evaluates the
strategy, and executes entries/exits against the paper ledger.

By default the engine loops until interrupted; --once runs a single cycle
and exits, for externally scheduled invocation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config
			if preset != "" {
				p, err := config.Preset(preset)
				if err != nil {
					return err
				}
				cfg = p
			}

			logger := logging.WithSymbol(app.Logger, cfg.Trading.Symbol)

			jsonStore, err := store.NewJSONStore(app.DataDir)
			if err != nil {
				return err
			}

			journal, err := store.NewSQLiteJournal(filepath.Join(app.DataDir, "trades.db"))
			if err != nil {
				logger.Warn().Err(err).Msg("Trade journal unavailable")
				journal = nil
			}
			if journal != nil {
				defer journal.Close()
			}

			led, err := ledger.Open(jsonStore, journalOrNil(journal), cfg.Trading.InitialBalance, logger)
			if err != nil {
				return err
			}

			data := marketdata.NewRestClient()
			eng := engine.New(cfg, data, led, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if once {
				return eng.RunOnce(ctx)
			}

			err = eng.Run(ctx)
			if errors.Is(err, context.Canceled) {
				logger.Info().Msg("Stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run exactly one cycle then exit")
	cmd.Flags().StringVar(&preset, "preset", "", "use a named preset: conservative or aggressive")

	return cmd
}

// journalOrNil converts a possibly-nil concrete journal into the interface,
// avoiding a non-nil interface wrapping a nil pointer.
func journalOrNil(j *store.SQLiteJournal) store.TradeJournal {
	if j == nil {
		return nil
	}
	return j
}
