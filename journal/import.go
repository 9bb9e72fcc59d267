package journal

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/rustyeddy/tradebook/pkg/id"
)

// Importer merges messy external CSV/JSON into the ledger. Rows are
// validated independently: a bad row is recorded and skipped, never aborting
// the run. Accounts and strategies named by a row are created on demand,
// but only after the row itself validates, so a rejected row leaves no
// orphan reference data behind.
type Importer struct {
	store *Store

	// FallbackYear repairs truncated three-digit years like "6/18/202".
	FallbackYear int
	// DefaultBalance seeds auto-created accounts.
	DefaultBalance float64
}

// NewImporter wires an import pipeline to its target ledger.
func NewImporter(store *Store, fallbackYear int, defaultBalance float64) *Importer {
	return &Importer{store: store, FallbackYear: fallbackYear, DefaultBalance: defaultBalance}
}

// RowError is one rejected row with its 1-based line (or array index) and
// the reason it failed.
type RowError struct {
	Line   int
	Reason string
}

// Report is the outcome of one import run. Warnings are non-fatal: the row
// still imported, but a value needed aggressive cleanup.
type Report struct {
	Imported int
	Failed   int
	Rejected []RowError
	Warnings []string
}

// Canonical import fields and the header spellings accepted for each.
// Matching is case-insensitive on the trimmed header.
var headerSynonyms = map[string][]string{
	"symbol":     {"symbol", "stock", "scrip", "ticker", "instrument"},
	"entryDate":  {"entry date", "entrydate", "buy date", "purchase date", "open date"},
	"exitDate":   {"exit date", "exitdate", "sell date", "close date"},
	"entryPrice": {"entry price", "entryprice", "buy price", "purchase price"},
	"exitPrice":  {"exit price", "exitprice", "sell price", "close price"},
	"quantity":   {"quantity", "qty", "shares", "units"},
	"orderType":  {"order type", "ordertype", "type", "side", "buy sell"},
	"strategy":   {"strategy", "method", "approach"},
	"account":    {"account", "broker", "platform"},
	"status":     {"status", "result", "outcome"},
}

// ImportCSV parses delimited text and merges the valid rows into the ledger
// in one batch. The only hard error is input with no header row at all;
// everything else degrades to per-row rejections and warnings.
func (im *Importer) ImportCSV(text string) (Report, error) {
	var rep Report

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	header := -1
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			header = i
			break
		}
	}
	if header < 0 {
		return rep, errors.New("import: empty input, no header row")
	}

	mapping := mapHeaders(ParseLine(lines[header]))

	var batch []Trade
	for i := header + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		values := ParseLine(lines[i])
		raw := func(field string) string {
			idx, ok := mapping[field]
			if !ok || idx >= len(values) {
				return ""
			}
			return strings.TrimSpace(values[idx])
		}

		t, warns, reason := im.buildRow(raw)
		lineNo := i + 1
		for _, w := range warns {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("line %d: %s", lineNo, w))
		}
		if reason != "" {
			rep.Failed++
			rep.Rejected = append(rep.Rejected, RowError{Line: lineNo, Reason: reason})
			continue
		}
		batch = append(batch, t)
		rep.Imported++
	}

	im.store.merge(batch)
	return rep, nil
}

// buildRow normalizes, validates, and derives a single row. A non-empty
// reason means rejection. Reference data is created only after the row
// validates.
func (im *Importer) buildRow(raw func(string) string) (Trade, []string, string) {
	var warns []string

	symbol := NormalizeSymbol(raw("symbol"))
	entryPrice, entryPriceOK := normalizePrice(raw("entryPrice"))
	exitPrice, exitPriceOK := normalizePrice(raw("exitPrice"))
	quantity := normalizeQuantity(raw("quantity"))

	entryDate, warned := NormalizeDate(raw("entryDate"), im.FallbackYear)
	if warned {
		warns = append(warns, fmt.Sprintf("unrecognized entry date %q kept as-is", entryDate))
	}
	exitDate := ""
	if v := raw("exitDate"); v != "" {
		exitDate, warned = NormalizeDate(v, im.FallbackYear)
		if warned {
			warns = append(warns, fmt.Sprintf("unrecognized exit date %q kept as-is", exitDate))
		}
	}

	switch {
	case raw("symbol") == "":
		return Trade{}, warns, "symbol is empty"
	case !entryPriceOK || entryPrice <= 0:
		return Trade{}, warns, fmt.Sprintf("entry price %q missing or not positive", raw("entryPrice"))
	case quantity <= 0:
		return Trade{}, warns, fmt.Sprintf("quantity %q not positive", raw("quantity"))
	case entryDate == "":
		return Trade{}, warns, "entry date is empty"
	}

	// A half-set exit would leave status inconsistent with the exit fields;
	// treat the position as still open.
	if (exitDate == "") != (!exitPriceOK || exitPrice == 0) {
		warns = append(warns, "exit date and exit price must come together; importing as open")
		exitDate = ""
		exitPrice = 0
	}

	strategyName := raw("strategy")
	if strategyName == "" {
		strategyName = "Imported"
	}
	accountName := raw("account")
	if accountName == "" {
		accountName = "Main Account"
	}
	strat := im.ensureStrategy(strategyName)
	acc := im.ensureAccount(accountName)

	t := Trade{
		ID:         id.New(),
		Symbol:     symbol,
		AccountID:  acc.ID,
		StrategyID: strat.ID,
		Side:       normalizeSide(raw("orderType")),
		EntryDate:  entryDate,
		EntryPrice: entryPrice,
		Quantity:   quantity,
		ExitDate:   exitDate,
		ExitPrice:  exitPrice,
	}

	// The status column, if any, is advisory only: derivation from the exit
	// fields is authoritative.
	d := Derive(t)
	t.PnL = d.PnL
	t.PnLPercent = d.PnLPercent
	t.RiskReward = d.RiskReward
	t.Status = d.Status
	return t, warns, ""
}

func (im *Importer) ensureAccount(name string) Account {
	if acc, ok := im.store.FindAccountByName(name); ok {
		return acc
	}
	acc, err := im.store.AddAccount(name, im.DefaultBalance)
	if err != nil {
		// Lost a race with another import of the same name; look it up again.
		acc, _ = im.store.FindAccountByName(name)
	}
	return acc
}

func (im *Importer) ensureStrategy(name string) Strategy {
	if strat, ok := im.store.FindStrategyByName(name); ok {
		return strat
	}
	strat, err := im.store.AddStrategy(name)
	if err != nil {
		strat, _ = im.store.FindStrategyByName(name)
	}
	return strat
}

// ImportJSON merges a full snapshot export into the ledger. Accounts and
// strategies are matched to existing ones by name (created when absent), and
// every trade is re-validated and re-derived, so a hand-edited file cannot
// smuggle in inconsistent derived fields. Trades index into the report by
// array position, 1-based.
func (im *Importer) ImportJSON(data []byte) (Report, error) {
	var rep Report

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return rep, fmt.Errorf("import: parse json: %w", err)
	}
	for _, key := range []string{"accounts", "strategies", "trades"} {
		if _, ok := probe[key]; !ok {
			return rep, fmt.Errorf("import: missing %q array, not a journal export", key)
		}
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return rep, fmt.Errorf("import: decode snapshot: %w", err)
	}
	if snap.Version != "" && snap.Version != SchemaVersion {
		rep.Warnings = append(rep.Warnings,
			fmt.Sprintf("schema version %q differs from %q, importing anyway", snap.Version, SchemaVersion))
	}

	// Remap the file's ids onto this ledger's reference data by name.
	accountIDs := map[string]string{}
	for _, a := range snap.Accounts {
		if a.Name == "" {
			continue
		}
		if existing, ok := im.store.FindAccountByName(a.Name); ok {
			accountIDs[a.ID] = existing.ID
			continue
		}
		balance := a.Balance
		if balance == 0 {
			balance = im.DefaultBalance
		}
		created, err := im.store.AddAccount(a.Name, balance)
		if err != nil {
			created, _ = im.store.FindAccountByName(a.Name)
		}
		accountIDs[a.ID] = created.ID
	}
	strategyIDs := map[string]string{}
	for _, st := range snap.Strategies {
		if st.Name == "" {
			continue
		}
		strategyIDs[st.ID] = im.ensureStrategy(st.Name).ID
	}

	var batch []Trade
	for i, t := range snap.Trades {
		idx := i + 1
		switch {
		case strings.TrimSpace(t.Symbol) == "":
			rep.Failed++
			rep.Rejected = append(rep.Rejected, RowError{Line: idx, Reason: "symbol is empty"})
			continue
		case t.EntryPrice <= 0:
			rep.Failed++
			rep.Rejected = append(rep.Rejected, RowError{Line: idx, Reason: "entry price not positive"})
			continue
		case t.Quantity <= 0:
			rep.Failed++
			rep.Rejected = append(rep.Rejected, RowError{Line: idx, Reason: "quantity not positive"})
			continue
		case t.EntryDate == "":
			rep.Failed++
			rep.Rejected = append(rep.Rejected, RowError{Line: idx, Reason: "entry date is empty"})
			continue
		}

		t.Symbol = NormalizeSymbol(t.Symbol)
		if mapped, ok := accountIDs[t.AccountID]; ok {
			t.AccountID = mapped
		} else {
			t.AccountID = im.ensureAccount("Main Account").ID
		}
		if mapped, ok := strategyIDs[t.StrategyID]; ok {
			t.StrategyID = mapped
		} else {
			t.StrategyID = im.ensureStrategy("Imported").ID
		}
		if t.Side != SideShort {
			t.Side = SideLong
		}
		t.ID = id.New()
		t.ParentID = ""

		partial := t.Status == StatusPartiallyClosed
		d := Derive(t)
		t.PnL = d.PnL
		t.PnLPercent = d.PnLPercent
		t.RiskReward = d.RiskReward
		if partial && d.Status == StatusOpen {
			t.Status = StatusPartiallyClosed
		} else {
			t.Status = d.Status
		}

		batch = append(batch, t)
		rep.Imported++
	}

	im.store.merge(batch)
	return rep, nil
}

// mapHeaders assigns each canonical field the first matching column.
// Unmapped fields read as empty strings downstream, which validation
// reports per-row instead of aborting.
func mapHeaders(headers []string) map[string]int {
	mapping := map[string]int{}
	for field, names := range headerSynonyms {
		for i, h := range headers {
			h = strings.ToLower(strings.TrimSpace(h))
			for _, name := range names {
				if h == name {
					mapping[field] = i
					break
				}
			}
			if _, ok := mapping[field]; ok {
				break
			}
		}
	}
	return mapping
}

// normalizePrice strips quotes, grouping commas, currency symbols, and
// whitespace, then parses a float. Unparseable input reports !ok.
func normalizePrice(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0, false
	}
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// normalizeQuantity keeps only digits and parses an integer, defaulting to 1
// on anything unusable. Quantity defaults forward rather than failing the
// row, to maximize import yield.
func normalizeQuantity(s string) int {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.Atoi(b.String())
	if err != nil || v <= 0 {
		return 1
	}
	return v
}

func normalizeSide(s string) Side {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sell", "short", "s":
		return SideShort
	default:
		return SideLong
	}
}

var (
	isoDateRe   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	slashDateRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2,4})$`)
	dashDateRe  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{2,4})$`)
)

// NormalizeDate coerces common spellings to "2006-01-02". Slash and dash
// forms read month-first, swapping when the first part can't be a month.
// Two-digit years map to 19xx from 50 up, 20xx below; a truncated
// three-digit year is replaced with fallbackYear. Input matching nothing is
// returned unchanged with warned=true so the caller can surface it.
func NormalizeDate(s string, fallbackYear int) (normalized string, warned bool) {
	clean := strings.TrimSpace(strings.Trim(s, `"' `))
	if clean == "" {
		return "", false
	}

	if m := isoDateRe.FindStringSubmatch(clean); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return clean, true
		}
		return fmt.Sprintf("%04d-%02d-%02d", year, month, day), false
	}

	m := slashDateRe.FindStringSubmatch(clean)
	if m == nil {
		m = dashDateRe.FindStringSubmatch(clean)
	}
	if m == nil {
		return clean, true
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	if month > 12 && day <= 12 {
		month, day = day, month
	}

	year, _ := strconv.Atoi(m[3])
	switch len(m[3]) {
	case 2:
		if year >= 50 {
			year += 1900
		} else {
			year += 2000
		}
	case 3:
		year = fallbackYear
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return clean, true
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), false
}
