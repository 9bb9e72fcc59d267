package journal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteSummary(t *testing.T) {
	t.Parallel()

	sum := Compute([]Trade{
		closedTrade(100, "2024-01-01", "2024-01-05"),
		closedTrade(-40, "2024-02-01", "2024-02-05"),
	}, 0)
	sum.PnLByStrategy = map[string]float64{"s1": 60}

	var buf strings.Builder
	WriteSummary(&buf, sum, map[string]string{"s1": "Breakout"})
	out := buf.String()

	assert.Contains(t, out, "Trades:        2")
	assert.Contains(t, out, "Win Rate:      50.00%")
	assert.Contains(t, out, "Net P&L:       60.00")
	assert.Contains(t, out, "2024-01")
	assert.Contains(t, out, "Breakout")
}
