package journal

import (
	"fmt"
	"strings"
	"time"
)

// Outcome filter values. Outcome applies to closed trades only: an open
// trade never matches "win" or "loss".
const (
	OutcomeAll  = "all"
	OutcomeWin  = "win"
	OutcomeLoss = "loss"
	OutcomeOpen = "open"
)

// Filter narrows a trade set. Every present field ANDs into the predicate;
// empty fields (and Outcome "all") impose no constraint. Apply is total: a
// malformed date bound is ignored rather than failing the whole query, and
// Warnings reports what was ignored so the caller can log it.
type Filter struct {
	AccountID  string
	StrategyID string
	Outcome    string
	DateFrom   string
	DateTo     string
	Symbol     string
}

const dateLayout = "2006-01-02"

// Apply returns the trades matching the filter, preserving input order.
func (f Filter) Apply(trades []Trade) []Trade {
	from, fromOK := parseBound(f.DateFrom)
	to, toOK := parseBound(f.DateTo)

	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		if f.AccountID != "" && f.AccountID != "all" && t.AccountID != f.AccountID {
			continue
		}
		if f.StrategyID != "" && f.StrategyID != "all" && t.StrategyID != f.StrategyID {
			continue
		}
		if !matchOutcome(f.Outcome, t.Status) {
			continue
		}
		if !matchDateRange(t.EntryDate, from, fromOK, to, toOK) {
			continue
		}
		if f.Symbol != "" && !strings.Contains(strings.ToLower(t.Symbol), strings.ToLower(f.Symbol)) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Warnings lists date bounds that could not be parsed and were therefore
// ignored. The filter itself never logs.
func (f Filter) Warnings() []string {
	var warns []string
	if _, ok := parseBound(f.DateFrom); f.DateFrom != "" && !ok {
		warns = append(warns, fmt.Sprintf("ignoring unparseable date bound %q", f.DateFrom))
	}
	if _, ok := parseBound(f.DateTo); f.DateTo != "" && !ok {
		warns = append(warns, fmt.Sprintf("ignoring unparseable date bound %q", f.DateTo))
	}
	return warns
}

func parseBound(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func matchOutcome(outcome string, status Status) bool {
	switch strings.ToLower(outcome) {
	case "", OutcomeAll:
		return true
	case OutcomeWin:
		return status == StatusWin
	case OutcomeLoss:
		return status == StatusLoss
	case OutcomeOpen:
		return status == StatusOpen || status == StatusPartiallyClosed
	default:
		// Unknown outcome values impose no constraint.
		return true
	}
}

// matchDateRange compares the entry date against inclusive bounds. A trade
// whose entry date doesn't parse passes both bounds.
func matchDateRange(entryDate string, from time.Time, fromOK bool, to time.Time, toOK bool) bool {
	if !fromOK && !toOK {
		return true
	}
	d, err := time.Parse(dateLayout, entryDate)
	if err != nil {
		return true
	}
	if fromOK && d.Before(from) {
		return false
	}
	if toOK && d.After(to) {
		return false
	}
	return true
}
