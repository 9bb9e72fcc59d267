package journal

import (
	"fmt"
	"io"
	"strings"
)

// ExportHeader is the fixed CSV export schema. Import understands these
// columns (and many looser variants), so an exported file re-imports
// cleanly.
var ExportHeader = []string{
	"Symbol", "Entry Date", "Exit Date", "Entry Price", "Exit Price",
	"Quantity", "Order Type", "Strategy", "Account", "P&L", "P&L %", "Status",
}

// ExportCSV writes every trade with all fields double-quoted, prices and P&L
// to two decimals, and the percent column suffixed with '%'. Strategy and
// account columns carry names, not ids.
//
// encoding/csv only quotes when forced to, so the always-quoted format is
// written by hand here.
func (s *Store) ExportCSV(w io.Writer) error {
	accounts := map[string]string{}
	for _, a := range s.Accounts() {
		accounts[a.ID] = a.Name
	}
	strategies := map[string]string{}
	for _, st := range s.Strategies() {
		strategies[st.ID] = st.Name
	}

	if err := writeQuotedRow(w, ExportHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range s.Trades() {
		exitPrice, pnl, pnlPct := "", "0.00", "0.00%"
		if t.Closed() {
			exitPrice = fmt.Sprintf("%.2f", t.ExitPrice)
			pnl = fmt.Sprintf("%.2f", t.PnL)
			pnlPct = fmt.Sprintf("%.2f%%", t.PnLPercent)
		}
		row := []string{
			t.Symbol,
			t.EntryDate,
			t.ExitDate,
			fmt.Sprintf("%.2f", t.EntryPrice),
			exitPrice,
			fmt.Sprintf("%d", t.Quantity),
			sideLabel(t.Side),
			strategies[t.StrategyID],
			accounts[t.AccountID],
			pnl,
			pnlPct,
			string(t.Status),
		}
		if err := writeQuotedRow(w, row); err != nil {
			return fmt.Errorf("write trade %s: %w", t.ID, err)
		}
	}
	return nil
}

func writeQuotedRow(w io.Writer, fields []string) error {
	quoted := make([]string, len(fields))
	for i, f := range fields {
		quoted[i] = `"` + strings.ReplaceAll(f, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
	return err
}

func sideLabel(side Side) string {
	if side == SideShort {
		return "Short"
	}
	return "Long"
}

// ParseLine splits one CSV line honoring double-quoted fields: a comma
// separates fields only outside quotes, a doubled quote inside a quoted
// field is a literal quote, and each field is trimmed of surrounding
// whitespace and quotes.
func ParseLine(line string) []string {
	var fields []string
	var cur strings.Builder
	inQuotes := false

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				cur.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case ch == ',' && !inQuotes:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(ch)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}
