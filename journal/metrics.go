package journal

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// EquityPoint is one step of the cumulative P&L curve.
type EquityPoint struct {
	Date   string  `json:"date"`
	Equity float64 `json:"equity"`
}

// MonthlyPnL is realized P&L bucketed by exit month ("2006-01").
type MonthlyPnL struct {
	Month string  `json:"month"`
	PnL   float64 `json:"pnl"`
}

// Summary aggregates a (typically pre-filtered) trade set. Percentage
// metrics are value*100 doubles; rounding is the presenter's problem, not
// ours. AvgLoss is signed (negative or zero).
type Summary struct {
	TotalTrades  int
	OpenTrades   int
	ClosedTrades int
	Wins         int
	Losses       int

	WinRate      float64
	TotalPnL     float64
	AvgPnL       float64
	GrossProfit  float64
	GrossLoss    float64
	ProfitFactor float64
	AvgWin       float64
	AvgLoss      float64
	RiskReward   float64
	Expectancy   float64
	BestTrade    float64
	WorstTrade   float64
	SharpeRatio  float64
	MaxDrawdown  float64
	ROI          float64

	CurrentStreak int
	MaxStreak     int

	AvgDaysHeld    float64
	MedianDaysHeld float64

	EquityCurve   []EquityPoint
	PnLByStrategy map[string]float64
	Monthly       []MonthlyPnL
}

// Compute reduces trades to a Summary. Pure, no I/O. The equity curve starts
// from initialCapital (0 for a plain cumulative-P&L curve) with a synthetic
// leading point at the earliest exit date.
func Compute(trades []Trade, initialCapital float64) Summary {
	sum := Summary{
		TotalTrades:   len(trades),
		PnLByStrategy: map[string]float64{},
	}

	var closed []Trade
	for _, t := range trades {
		if t.Closed() {
			closed = append(closed, t)
		} else {
			sum.OpenTrades++
		}
	}
	sum.ClosedTrades = len(closed)
	closed = sortTradesByExit(closed)

	var pnls, returns []float64
	for _, t := range closed {
		pnls = append(pnls, t.PnL)
		returns = append(returns, t.PnLPercent)
		sum.TotalPnL += t.PnL
		sum.PnLByStrategy[t.StrategyID] += t.PnL
		switch {
		case t.PnL > 0:
			sum.Wins++
			sum.GrossProfit += t.PnL
		case t.PnL < 0:
			sum.Losses++
			sum.GrossLoss += -t.PnL
		default:
			sum.Wins++ // breakeven counts as a win, matching Derive
		}
	}

	if len(closed) > 0 {
		sum.WinRate = float64(sum.Wins) / float64(len(closed)) * 100
		sum.AvgPnL = sum.TotalPnL / float64(len(closed))
		sum.BestTrade = floats(pnls).max()
		sum.WorstTrade = floats(pnls).min()
	}
	if sum.GrossLoss > 0 {
		sum.ProfitFactor = sum.GrossProfit / sum.GrossLoss
	}
	if sum.Wins > 0 {
		sum.AvgWin = sum.GrossProfit / float64(sum.Wins)
	}
	if sum.Losses > 0 {
		sum.AvgLoss = -sum.GrossLoss / float64(sum.Losses)
	}
	if sum.AvgLoss != 0 {
		sum.RiskReward = math.Abs(sum.AvgWin / sum.AvgLoss)
	}
	sum.Expectancy = sum.WinRate/100*sum.AvgWin + (1-sum.WinRate/100)*sum.AvgLoss

	sum.SharpeRatio = sharpeLike(returns)
	sum.EquityCurve = equityCurve(closed, initialCapital)
	sum.MaxDrawdown = maxDrawdownPct(sum.EquityCurve)
	sum.CurrentStreak, sum.MaxStreak = winStreaks(closed)
	sum.AvgDaysHeld, sum.MedianDaysHeld = holdStats(closed)
	sum.Monthly = monthlyPnL(closed)
	sum.ROI = roi(trades, sum.TotalPnL)

	return sum
}

// sharpeLike is mean return over sample standard deviation. With one or zero
// data points the stddev is forced to 1, so a single trade yields its own
// average return rather than a division by zero.
func sharpeLike(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	avg := stat.Mean(returns, nil)
	sd := 1.0
	if len(returns) > 1 {
		sd = stat.StdDev(returns, nil)
	}
	if sd <= 0 {
		return 0
	}
	return avg / sd
}

// equityCurve walks closed trades in exit-date order accumulating P&L. The
// leading synthetic point anchors the curve at initialCapital on the
// earliest exit date.
func equityCurve(closedSorted []Trade, initialCapital float64) []EquityPoint {
	if len(closedSorted) == 0 {
		return nil
	}
	curve := make([]EquityPoint, 0, len(closedSorted)+1)
	curve = append(curve, EquityPoint{Date: closedSorted[0].ExitDate, Equity: initialCapital})
	equity := initialCapital
	for _, t := range closedSorted {
		equity += t.PnL
		curve = append(curve, EquityPoint{Date: t.ExitDate, Equity: equity})
	}
	return curve
}

// maxDrawdownPct is the largest peak-to-trough decline on the curve,
// expressed as a percentage of the running peak at which it occurred.
func maxDrawdownPct(curve []EquityPoint) float64 {
	peak, maxDD, peakAtMax := 0.0, 0.0, 0.0
	for i, p := range curve {
		if i == 0 || p.Equity > peak {
			peak = p.Equity
		}
		if dd := peak - p.Equity; dd > maxDD {
			maxDD = dd
			peakAtMax = peak
		}
	}
	if peakAtMax <= 0 {
		return 0
	}
	return maxDD / peakAtMax * 100
}

// winStreaks returns the trailing run of wins and the longest run overall,
// walking closed trades in exit-date order.
func winStreaks(closedSorted []Trade) (current, longest int) {
	run := 0
	for _, t := range closedSorted {
		if t.PnL > 0 {
			run++
			if run > longest {
				longest = run
			}
		} else {
			run = 0
		}
	}
	return run, longest
}

// holdStats reports mean and median days held across closed trades. Days
// held is the ceiling of the entry-to-exit span; trades with unparseable
// dates are skipped.
func holdStats(closed []Trade) (mean, median float64) {
	var days []float64
	for _, t := range closed {
		entry, err := time.Parse(dateLayout, t.EntryDate)
		if err != nil {
			continue
		}
		exit, err := time.Parse(dateLayout, t.ExitDate)
		if err != nil {
			continue
		}
		days = append(days, math.Ceil(exit.Sub(entry).Hours()/24))
	}
	if len(days) == 0 {
		return 0, 0
	}
	mean = stat.Mean(days, nil)

	sort.Float64s(days)
	n := len(days)
	if n%2 == 1 {
		median = days[n/2]
	} else {
		median = (days[n/2-1] + days[n/2]) / 2
	}
	return mean, median
}

func monthlyPnL(closed []Trade) []MonthlyPnL {
	byMonth := map[string]float64{}
	for _, t := range closed {
		d, err := time.Parse(dateLayout, t.ExitDate)
		if err != nil {
			continue
		}
		byMonth[d.Format("2006-01")] += t.PnL
	}
	out := make([]MonthlyPnL, 0, len(byMonth))
	for m, pnl := range byMonth {
		out = append(out, MonthlyPnL{Month: m, PnL: pnl})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// roi is realized P&L over total capital deployed, open positions included.
func roi(trades []Trade, totalPnL float64) float64 {
	invested := 0.0
	for _, t := range trades {
		invested += t.EntryPrice * float64(t.Quantity)
	}
	if invested <= 0 {
		return 0
	}
	return totalPnL / invested * 100
}

type floats []float64

func (f floats) max() float64 {
	m := f[0]
	for _, v := range f[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

func (f floats) min() float64 {
	m := f[0]
	for _, v := range f[1:] {
		if v < m {
			m = v
		}
	}
	return m
}
