package journal

import "strings"

// DerivedFields are the values computed from a trade's entry/exit fields.
type DerivedFields struct {
	PnL        float64
	PnLPercent float64
	RiskReward float64
	Status     Status
}

// Derive computes P&L, percentage return, risk:reward and status from a
// trade's fields. It is pure: same input, same output, no I/O.
//
// An open trade (either exit field absent) always derives as
// {Open, 0, 0}. Risk:reward is fixed at entry from stop/target and is not
// recomputed on close.
func Derive(t Trade) DerivedFields {
	d := DerivedFields{
		RiskReward: RiskReward(t.EntryPrice, t.StopLoss, t.Target),
	}

	if !t.Closed() {
		d.Status = StatusOpen
		return d
	}

	direction := 1.0
	if t.Side == SideShort {
		direction = -1.0
	}

	d.PnL = (t.ExitPrice - t.EntryPrice) * float64(t.Quantity) * direction
	if t.EntryPrice != 0 {
		d.PnLPercent = (t.ExitPrice - t.EntryPrice) / t.EntryPrice * 100 * direction
	}
	if d.PnL >= 0 {
		d.Status = StatusWin
	} else {
		d.Status = StatusLoss
	}
	return d
}

// RiskReward is planned reward over planned risk, |target-entry| / |entry-stop|.
// Zero risk (stop at entry, or no stop) yields 0 rather than dividing by zero.
func RiskReward(entry, stop, target float64) float64 {
	risk := abs(entry - stop)
	reward := abs(target - entry)
	if risk == 0 || stop == 0 || target == 0 {
		return 0
	}
	return reward / risk
}

// NormalizeSymbol upper-cases the ticker and applies the NSE ".NS" suffix
// when the symbol carries no exchange suffix at all.
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return ""
	}
	if !strings.Contains(symbol, ".") {
		symbol += ".NS"
	}
	return symbol
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
