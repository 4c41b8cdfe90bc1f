package cli

import (
	"path/filepath"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"paper-trader/internal/ledger"
	"paper-trader/internal/models"
	"paper-trader/internal/store"
	"paper-trader/pkg/utils"
)

func newAccountCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show the paper account balance and open positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			jsonStore, err := store.NewJSONStore(app.DataDir)
			if err != nil {
				return err
			}
			account, err := jsonStore.Load()
			if err != nil {
				return err
			}
			if account == nil {
				output.Dim("No paper account yet. Run 'papertrader run' first.")
				return nil
			}

			if output.IsJSON() {
				return output.JSON(account)
			}

			output.Bold("Paper Account")
			output.Printf("  Balance: %s\n", utils.FormatCurrency(account.Balance))
			output.Printf("  Trades:  %d\n", len(account.TradeHistory))
			output.Println()

			if len(account.Positions) == 0 {
				output.Dim("No open positions.")
				return nil
			}

			output.Bold("Open Positions")
			tbl := tablewriter.NewWriter(output.Writer())
			tbl.Header("Symbol", "Size", "Entry", "Stop", "Margin", "Lev", "Opened")
			for symbol, pos := range account.Positions {
				tbl.Append(
					symbol,
					formatFloat(pos.Size, 8),
					formatFloat(pos.EntryPrice, 2),
					formatFloat(pos.StopLossPrice, 2),
					formatFloat(pos.Margin, 2),
					formatFloat(pos.Leverage, 0)+"x",
					pos.OpenedAt.Format(time.DateTime),
				)
			}
			tbl.Render()
			return nil
		},
	}
}

func newSummaryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show performance statistics over closed trades",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			jsonStore, err := store.NewJSONStore(app.DataDir)
			if err != nil {
				return err
			}
			account, err := jsonStore.Load()
			if err != nil {
				return err
			}
			var history []models.TradeRecord
			if account != nil {
				history = account.TradeHistory
			}

			summary := ledger.Summarize(history)
			if output.IsJSON() {
				return output.JSON(summary)
			}

			output.Bold("Performance Summary")
			output.Printf("  Total Trades:   %d\n", summary.TotalTrades)
			output.Printf("  Winning:        %d\n", summary.WinningTrades)
			output.Printf("  Losing:         %d\n", summary.LosingTrades)
			output.Printf("  Total Profit:   %s\n", utils.FormatCurrency(summary.TotalProfit))
			output.Printf("  Win Rate:       %.2f%%\n", summary.WinRate)
			return nil
		},
	}
}

func newTradesCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List executed trades, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			records, err := loadTrades(app, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				output.Dim("No trades recorded yet.")
				return nil
			}

			if output.IsJSON() {
				return output.JSON(records)
			}

			tbl := tablewriter.NewWriter(output.Writer())
			tbl.Header("Time", "Symbol", "Type", "Price", "Size", "Lev", "Margin", "Profit", "Balance")
			for _, r := range records {
				tbl.Append(
					r.Timestamp.Format(time.DateTime),
					r.Symbol,
					string(r.Type),
					formatFloat(r.Price, 2),
					formatFloat(r.Size, 8),
					formatFloat(r.Leverage, 0)+"x",
					formatFloat(r.Margin, 2),
					formatProfit(r.Profit),
					formatFloat(r.BalanceAfter, 2),
				)
			}
			tbl.Render()
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "maximum trades to list (0 = all)")
	return cmd
}

// loadTrades prefers the sqlite journal and falls back to the account
// snapshot's history when the journal is unavailable.
func loadTrades(app *App, limit int) ([]models.TradeRecord, error) {
	journal, err := store.NewSQLiteJournal(filepath.Join(app.DataDir, "trades.db"))
	if err == nil {
		defer journal.Close()
		records, jerr := journal.List(limit)
		if jerr == nil && len(records) > 0 {
			return records, nil
		}
	}

	jsonStore, err := store.NewJSONStore(app.DataDir)
	if err != nil {
		return nil, err
	}
	account, err := jsonStore.Load()
	if err != nil || account == nil {
		return nil, err
	}

	history := account.TradeHistory
	// Newest first, matching the journal ordering
	records := make([]models.TradeRecord, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		records = append(records, history[i])
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, nil
}

func formatFloat(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func formatProfit(v float64) string {
	if v > 0 {
		return "+" + strconv.FormatFloat(v, 'f', 2, 64)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
