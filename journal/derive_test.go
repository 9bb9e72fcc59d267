package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveLongWin(t *testing.T) {
	t.Parallel()

	d := Derive(Trade{
		Side: SideLong, EntryPrice: 100, ExitPrice: 120, Quantity: 10,
		EntryDate: "2024-01-10", ExitDate: "2024-01-20",
	})

	assert.InDelta(t, 200.0, d.PnL, 1e-9)
	assert.InDelta(t, 20.0, d.PnLPercent, 1e-9)
	assert.Equal(t, StatusWin, d.Status)
}

func TestDeriveShortLoss(t *testing.T) {
	t.Parallel()

	// Short position, price rose: same magnitude as the long case, sign flipped.
	d := Derive(Trade{
		Side: SideShort, EntryPrice: 100, ExitPrice: 120, Quantity: 10,
		EntryDate: "2024-01-10", ExitDate: "2024-01-20",
	})

	assert.InDelta(t, -200.0, d.PnL, 1e-9)
	assert.InDelta(t, -20.0, d.PnLPercent, 1e-9)
	assert.Equal(t, StatusLoss, d.Status)
}

func TestDeriveShortWin(t *testing.T) {
	t.Parallel()

	d := Derive(Trade{
		Side: SideShort, EntryPrice: 100, ExitPrice: 80, Quantity: 5,
		EntryDate: "2024-01-10", ExitDate: "2024-01-20",
	})

	assert.InDelta(t, 100.0, d.PnL, 1e-9)
	assert.Equal(t, StatusWin, d.Status)
}

func TestDeriveBreakevenIsWin(t *testing.T) {
	t.Parallel()

	d := Derive(Trade{
		Side: SideLong, EntryPrice: 100, ExitPrice: 100, Quantity: 10,
		EntryDate: "2024-01-10", ExitDate: "2024-01-20",
	})

	assert.Zero(t, d.PnL)
	assert.Equal(t, StatusWin, d.Status)
}

func TestDeriveOpenTrade(t *testing.T) {
	t.Parallel()

	// Either exit field missing means open with zero P&L.
	cases := []Trade{
		{Side: SideLong, EntryPrice: 100, Quantity: 10, EntryDate: "2024-01-10"},
		{Side: SideLong, EntryPrice: 100, Quantity: 10, EntryDate: "2024-01-10", ExitDate: "2024-01-20"},
		{Side: SideLong, EntryPrice: 100, Quantity: 10, EntryDate: "2024-01-10", ExitPrice: 120},
	}
	for _, tr := range cases {
		d := Derive(tr)
		assert.Equal(t, StatusOpen, d.Status)
		assert.Zero(t, d.PnL)
		assert.Zero(t, d.PnLPercent)
	}
}

func TestDeriveOpenTradeKeepsRiskReward(t *testing.T) {
	t.Parallel()

	d := Derive(Trade{
		Side: SideLong, EntryPrice: 100, Quantity: 10, EntryDate: "2024-01-10",
		StopLoss: 95, Target: 115,
	})

	assert.Equal(t, StatusOpen, d.Status)
	assert.InDelta(t, 3.0, d.RiskReward, 1e-9)
}

func TestRiskReward(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, RiskReward(100, 90, 120), 1e-9)
	assert.InDelta(t, 2.0, RiskReward(100, 110, 80), 1e-9) // short setup

	// Degenerate setups yield 0, never a division by zero.
	assert.Zero(t, RiskReward(100, 100, 120))
	assert.Zero(t, RiskReward(100, 0, 120))
	assert.Zero(t, RiskReward(100, 90, 0))
}

func TestNormalizeSymbol(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "RELIANCE.NS", NormalizeSymbol(" reliance "))
	assert.Equal(t, "TCS.NS", NormalizeSymbol("tcs"))
	assert.Equal(t, "AAPL.US", NormalizeSymbol("aapl.us"))
	assert.Equal(t, "", NormalizeSymbol("  "))
}
