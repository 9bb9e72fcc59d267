package journal

import (
	"fmt"
	"io"
	"sort"
)

// WriteSummary renders a Summary as a plain-text report.
func WriteSummary(w io.Writer, sum Summary, strategyNames map[string]string) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Journal Summary")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", sum.TotalTrades)
	fmt.Fprintf(w, "Open:          %d\n", sum.OpenTrades)
	fmt.Fprintf(w, "Closed:        %d\n", sum.ClosedTrades)
	fmt.Fprintf(w, "Wins:          %d\n", sum.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", sum.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", sum.WinRate)
	fmt.Fprintf(w, "Win Streak:    %d (max %d)\n", sum.CurrentStreak, sum.MaxStreak)
	if sum.ClosedTrades > 0 {
		fmt.Fprintf(w, "Days Held:     %.1f avg, %.1f median\n", sum.AvgDaysHeld, sum.MedianDaysHeld)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Net P&L:       %.2f\n", sum.TotalPnL)
	fmt.Fprintf(w, "Avg P&L:       %.2f\n", sum.AvgPnL)
	fmt.Fprintf(w, "Best Trade:    %.2f\n", sum.BestTrade)
	fmt.Fprintf(w, "Worst Trade:   %.2f\n", sum.WorstTrade)
	fmt.Fprintf(w, "Expectancy:    %.2f\n", sum.Expectancy)
	fmt.Fprintf(w, "ROI:           %.2f%%\n", sum.ROI)
	if sum.ProfitFactor > 0 {
		fmt.Fprintf(w, "Profit Factor: %.2f\n", sum.ProfitFactor)
	}
	if sum.RiskReward > 0 {
		fmt.Fprintf(w, "Avg Win/Loss:  %.2f\n", sum.RiskReward)
	}
	fmt.Fprintf(w, "Sharpe:        %.2f\n", sum.SharpeRatio)
	if sum.MaxDrawdown > 0 {
		fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", sum.MaxDrawdown)
	}

	if len(sum.Monthly) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Monthly P&L")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, m := range sum.Monthly {
			fmt.Fprintf(w, "%s        %10.2f\n", m.Month, m.PnL)
		}
	}

	if len(sum.PnLByStrategy) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "P&L by Strategy")
		fmt.Fprintln(w, "--------------------------------------------------")
		for _, id := range sortedKeys(sum.PnLByStrategy) {
			name := strategyNames[id]
			if name == "" {
				name = id
			}
			fmt.Fprintf(w, "%-24s %10.2f\n", name, sum.PnLByStrategy[id])
		}
	}

	fmt.Fprintln(w)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
