package journal

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "a,b,c", []string{"a", "b", "c"}},
		{"quoted comma", `AAPL,"New York, Inc.",100`, []string{"AAPL", "New York, Inc.", "100"}},
		{"doubled quote", `"say ""hi""",x`, []string{`say "hi"`, "x"}},
		{"whitespace trimmed", " a , b ", []string{"a", "b"}},
		{"empty fields", "a,,c", []string{"a", "", "c"}},
		{"all quoted", `"a","b","c"`, []string{"a", "b", "c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseLine(tc.in))
		})
	}
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	s, acc, strat := newTestStore(t)
	added, err := s.AddTrade(longTrade(acc, strat))
	require.NoError(t, err)
	_, err = s.CloseTrade(added.ID, "2024-01-20", 120.5)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, s.ExportCSV(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	assert.Equal(t, `"Symbol","Entry Date","Exit Date","Entry Price","Exit Price","Quantity","Order Type","Strategy","Account","P&L","P&L %","Status"`, lines[0])
	assert.Equal(t, `"RELIANCE.NS","2024-01-10","2024-01-20","100.00","120.50","10","Long","Breakout","Main Account","205.00","20.50%","Win"`, lines[1])
}

func TestExportCSVOpenTrade(t *testing.T) {
	t.Parallel()

	s, acc, strat := newTestStore(t)
	_, err := s.AddTrade(longTrade(acc, strat))
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, s.ExportCSV(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	fields := ParseLine(lines[1])
	assert.Equal(t, "", fields[2], "open trade has no exit date")
	assert.Equal(t, "", fields[4], "open trade has no exit price")
	assert.Equal(t, "0.00", fields[9])
	assert.Equal(t, "Open", fields[11])
}

func TestExportCSVQuotesEmbeddedQuotes(t *testing.T) {
	t.Parallel()

	s, acc, _ := newTestStore(t)
	strat, err := s.AddStrategy(`The "Gap" Play`)
	require.NoError(t, err)
	_, err = s.AddTrade(longTrade(acc, strat))
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, s.ExportCSV(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	fields := ParseLine(lines[1])
	assert.Equal(t, `The "Gap" Play`, fields[7])
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()

	s, acc, strat := newTestStore(t)
	added, err := s.AddTrade(longTrade(acc, strat))
	require.NoError(t, err)
	_, err = s.CloseTrade(added.ID, "2024-01-20", 120)
	require.NoError(t, err)

	short := longTrade(acc, strat)
	short.Symbol = "TCS"
	short.Side = SideShort
	_, err = s.AddTrade(short)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, s.ExportCSV(&buf))

	dst := NewStore(zerolog.Nop())
	imp := NewImporter(dst, 2025, 100000)
	rep, err := imp.ImportCSV(buf.String())
	require.NoError(t, err)

	assert.Equal(t, 2, rep.Imported)
	assert.Zero(t, rep.Failed)

	trades := dst.Trades()
	require.Len(t, trades, 2)
	assert.Equal(t, "RELIANCE.NS", trades[0].Symbol)
	assert.Equal(t, StatusWin, trades[0].Status)
	assert.InDelta(t, 200.0, trades[0].PnL, 1e-9)
	assert.Equal(t, SideShort, trades[1].Side)
	assert.Equal(t, StatusOpen, trades[1].Status)

	// Names survived the trip as reference data.
	_, ok := dst.FindAccountByName("Main Account")
	assert.True(t, ok)
	_, ok = dst.FindStrategyByName("Breakout")
	assert.True(t, ok)
}
