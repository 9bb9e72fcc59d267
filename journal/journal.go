// Package journal owns the trade ledger: accounts, strategies, and trades,
// plus the analytics and import/export machinery built on top of it.
//
// The Store is the only component that mutates ledger data. Everything else
// (Derive, Filter, Compute, the import pipeline) either reads a snapshot of
// the ledger or hands validated rows back to the Store for merging.
package journal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rustyeddy/tradebook/pkg/id"
)

// Side is the direction of a trade.
type Side string

const (
	SideLong  Side = "long"
	SideShort Side = "short"
)

// Status is the lifecycle state of a trade. A trade is Open until both exit
// fields are set; once closed it is Win or Loss by sign of P&L. A parent
// trade that has been partially closed stays open as PartiallyClosed.
type Status string

const (
	StatusOpen            Status = "Open"
	StatusWin             Status = "Win"
	StatusLoss            Status = "Loss"
	StatusPartiallyClosed Status = "PartiallyClosed"
)

// Account is a broker account trades are booked against.
type Account struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

// Strategy is a named trading approach.
type Strategy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Trade is the central ledger entity. Dates are calendar dates in
// "2006-01-02" form; an empty ExitDate or zero ExitPrice means the position
// is still open. The derived fields (PnL, PnLPercent, RiskReward, Status)
// are recomputed by the Store on every mutation and never set by callers.
type Trade struct {
	ID         string  `json:"id"`
	Symbol     string  `json:"symbol"`
	AccountID  string  `json:"accountId"`
	StrategyID string  `json:"strategyId"`
	Side       Side    `json:"side"`
	EntryDate  string  `json:"entryDate"`
	EntryPrice float64 `json:"entryPrice"`
	Quantity   int     `json:"quantity"`
	StopLoss   float64 `json:"stopLoss,omitempty"`
	Target     float64 `json:"target,omitempty"`
	ExitDate   string  `json:"exitDate,omitempty"`
	ExitPrice  float64 `json:"exitPrice,omitempty"`

	// ParentID links a closed child produced by a partial close back to the
	// trade it was split from.
	ParentID string `json:"parentId,omitempty"`

	PnL        float64 `json:"pnl"`
	PnLPercent float64 `json:"pnlPercent"`
	RiskReward float64 `json:"riskReward"`
	Status     Status  `json:"status"`
}

// Closed reports whether both exit fields are set.
func (t Trade) Closed() bool {
	return t.ExitDate != "" && t.ExitPrice != 0
}

// Snapshot is the serialized form of the ledger, also the JSON export/import
// schema.
type Snapshot struct {
	Accounts   []Account  `json:"accounts"`
	Strategies []Strategy `json:"strategies"`
	Trades     []Trade    `json:"trades"`
	ExportDate string     `json:"exportDate,omitempty"`
	Version    string     `json:"version,omitempty"`
}

// SchemaVersion is stamped into JSON exports. A mismatch on import is a
// warning, not a rejection.
const SchemaVersion = "1.0"

var (
	ErrNotFound      = errors.New("not found")
	ErrEmptyName     = errors.New("name must not be empty")
	ErrDuplicateName = errors.New("name already exists")
)

// ReferentialError is returned when deleting an account or strategy that
// trades still reference. Refs is the number of blocking trades.
type ReferentialError struct {
	Kind string
	Name string
	Refs int
}

func (e *ReferentialError) Error() string {
	return fmt.Sprintf("cannot delete %s %q: referenced by %d trade(s)", e.Kind, e.Name, e.Refs)
}

// Store is the authoritative in-memory ledger. Reads may run concurrently;
// writes take the exclusive lock for the whole logical transaction so
// invariant checks never interleave with mutation.
type Store struct {
	mu         sync.RWMutex
	accounts   []Account
	strategies []Strategy
	trades     []Trade
	log        zerolog.Logger
}

// NewStore returns an empty ledger.
func NewStore(log zerolog.Logger) *Store {
	return &Store{log: log.With().Str("component", "ledger").Logger()}
}

// ---- accounts ----

// AddAccount creates an account with a unique, case-insensitive name.
func (s *Store) AddAccount(name string, balance float64) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return Account{}, fmt.Errorf("account: %w", ErrEmptyName)
	}
	if _, ok := s.findAccountByName(name); ok {
		return Account{}, fmt.Errorf("account %q: %w", name, ErrDuplicateName)
	}

	acc := Account{ID: id.NewUUID(), Name: name, Balance: balance}
	s.accounts = append(s.accounts, acc)
	s.log.Debug().Str("account", name).Msg("account added")
	return acc, nil
}

// UpdateAccount renames an account and/or adjusts its balance.
func (s *Store) UpdateAccount(accountID, name string, balance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("account: %w", ErrEmptyName)
	}
	if other, ok := s.findAccountByName(name); ok && other.ID != accountID {
		return fmt.Errorf("account %q: %w", name, ErrDuplicateName)
	}
	for i := range s.accounts {
		if s.accounts[i].ID == accountID {
			s.accounts[i].Name = name
			s.accounts[i].Balance = balance
			return nil
		}
	}
	return fmt.Errorf("account %q: %w", accountID, ErrNotFound)
}

// DeleteAccount removes an account. It fails with a ReferentialError while
// any trade references it; the ledger is left unchanged.
func (s *Store) DeleteAccount(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.accounts {
		if s.accounts[i].ID == accountID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("account %q: %w", accountID, ErrNotFound)
	}

	refs := 0
	for _, t := range s.trades {
		if t.AccountID == accountID {
			refs++
		}
	}
	if refs > 0 {
		return &ReferentialError{Kind: "account", Name: s.accounts[idx].Name, Refs: refs}
	}

	s.accounts = append(s.accounts[:idx], s.accounts[idx+1:]...)
	return nil
}

// Accounts returns a copy of all accounts.
func (s *Store) Accounts() []Account {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Account, len(s.accounts))
	copy(out, s.accounts)
	return out
}

// FindAccountByName matches case-insensitively on the trimmed name.
func (s *Store) FindAccountByName(name string) (Account, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findAccountByName(name)
}

func (s *Store) findAccountByName(name string) (Account, bool) {
	for _, a := range s.accounts {
		if strings.EqualFold(a.Name, strings.TrimSpace(name)) {
			return a, true
		}
	}
	return Account{}, false
}

// ---- strategies ----

// AddStrategy creates a strategy with a unique, case-insensitive name.
func (s *Store) AddStrategy(name string) (Strategy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return Strategy{}, fmt.Errorf("strategy: %w", ErrEmptyName)
	}
	if _, ok := s.findStrategyByName(name); ok {
		return Strategy{}, fmt.Errorf("strategy %q: %w", name, ErrDuplicateName)
	}

	strat := Strategy{ID: id.NewUUID(), Name: name}
	s.strategies = append(s.strategies, strat)
	s.log.Debug().Str("strategy", name).Msg("strategy added")
	return strat, nil
}

// UpdateStrategy renames a strategy.
func (s *Store) UpdateStrategy(strategyID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("strategy: %w", ErrEmptyName)
	}
	if other, ok := s.findStrategyByName(name); ok && other.ID != strategyID {
		return fmt.Errorf("strategy %q: %w", name, ErrDuplicateName)
	}
	for i := range s.strategies {
		if s.strategies[i].ID == strategyID {
			s.strategies[i].Name = name
			return nil
		}
	}
	return fmt.Errorf("strategy %q: %w", strategyID, ErrNotFound)
}

// DeleteStrategy removes a strategy unless trades still reference it.
func (s *Store) DeleteStrategy(strategyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.strategies {
		if s.strategies[i].ID == strategyID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("strategy %q: %w", strategyID, ErrNotFound)
	}

	refs := 0
	for _, t := range s.trades {
		if t.StrategyID == strategyID {
			refs++
		}
	}
	if refs > 0 {
		return &ReferentialError{Kind: "strategy", Name: s.strategies[idx].Name, Refs: refs}
	}

	s.strategies = append(s.strategies[:idx], s.strategies[idx+1:]...)
	return nil
}

// Strategies returns a copy of all strategies.
func (s *Store) Strategies() []Strategy {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Strategy, len(s.strategies))
	copy(out, s.strategies)
	return out
}

// FindStrategyByName matches case-insensitively on the trimmed name.
func (s *Store) FindStrategyByName(name string) (Strategy, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.findStrategyByName(name)
}

func (s *Store) findStrategyByName(name string) (Strategy, bool) {
	for _, st := range s.strategies {
		if strings.EqualFold(st.Name, strings.TrimSpace(name)) {
			return st, true
		}
	}
	return Strategy{}, false
}

// ---- trades ----

// AddTrade validates and books a new trade. The symbol is normalized, the id
// is assigned here, and derived fields are computed before the trade becomes
// visible.
func (s *Store) AddTrade(t Trade) (Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addTrade(t)
}

func (s *Store) addTrade(t Trade) (Trade, error) {
	t.Symbol = NormalizeSymbol(t.Symbol)
	if t.Symbol == "" {
		return Trade{}, errors.New("trade: symbol must not be empty")
	}
	if t.Side != SideLong && t.Side != SideShort {
		return Trade{}, fmt.Errorf("trade: invalid side %q", t.Side)
	}
	if t.EntryPrice <= 0 {
		return Trade{}, fmt.Errorf("trade: entry price must be positive, got %v", t.EntryPrice)
	}
	if t.Quantity <= 0 {
		return Trade{}, fmt.Errorf("trade: quantity must be positive, got %d", t.Quantity)
	}
	if t.EntryDate == "" {
		return Trade{}, errors.New("trade: entry date must not be empty")
	}
	if !s.hasAccount(t.AccountID) {
		return Trade{}, fmt.Errorf("trade: account %q: %w", t.AccountID, ErrNotFound)
	}
	if !s.hasStrategy(t.StrategyID) {
		return Trade{}, fmt.Errorf("trade: strategy %q: %w", t.StrategyID, ErrNotFound)
	}

	t.ID = id.New()
	s.recompute(&t)
	s.trades = append(s.trades, t)
	s.log.Debug().Str("symbol", t.Symbol).Str("side", string(t.Side)).Msg("trade added")
	return t, nil
}

// Trade returns a single trade by id.
func (s *Store) Trade(tradeID string) (Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.trades {
		if t.ID == tradeID {
			return t, nil
		}
	}
	return Trade{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
}

// Trades returns a copy of all trades in insertion order.
func (s *Store) Trades() []Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Trade, len(s.trades))
	copy(out, s.trades)
	return out
}

// CloseTrade sets the exit fields and recomputes derived values. Closing an
// unknown or already-closed trade is a hard error: that is caller misuse,
// not bad input.
func (s *Store) CloseTrade(tradeID, exitDate string, exitPrice float64) (Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exitDate == "" || exitPrice <= 0 {
		return Trade{}, fmt.Errorf("close trade: exit date and positive exit price required")
	}
	for i := range s.trades {
		if s.trades[i].ID != tradeID {
			continue
		}
		if s.trades[i].Closed() {
			return Trade{}, fmt.Errorf("close trade %q: already closed", tradeID)
		}
		s.trades[i].ExitDate = exitDate
		s.trades[i].ExitPrice = exitPrice
		s.trades[i].Status = "" // full close supersedes PartiallyClosed
		s.recompute(&s.trades[i])
		s.log.Debug().Str("symbol", s.trades[i].Symbol).Float64("pnl", s.trades[i].PnL).Msg("trade closed")
		return s.trades[i], nil
	}
	return Trade{}, fmt.Errorf("close trade %q: %w", tradeID, ErrNotFound)
}

// PartialClose splits a trade: quantity shares are closed out into a new
// immutable child record referencing the parent, and the parent stays open
// with the remainder, marked PartiallyClosed.
func (s *Store) PartialClose(tradeID string, quantity int, exitDate string, exitPrice float64) (Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if exitDate == "" || exitPrice <= 0 {
		return Trade{}, fmt.Errorf("partial close: exit date and positive exit price required")
	}
	for i := range s.trades {
		if s.trades[i].ID != tradeID {
			continue
		}
		parent := &s.trades[i]
		if parent.Closed() {
			return Trade{}, fmt.Errorf("partial close %q: already closed", tradeID)
		}
		if quantity <= 0 || quantity >= parent.Quantity {
			return Trade{}, fmt.Errorf("partial close %q: quantity must be in [1, %d)", tradeID, parent.Quantity)
		}

		child := *parent
		child.ID = id.New()
		child.ParentID = parent.ID
		child.Quantity = quantity
		child.ExitDate = exitDate
		child.ExitPrice = exitPrice
		child.Status = ""
		s.recompute(&child)

		parent.Quantity -= quantity
		parent.Status = StatusPartiallyClosed
		s.recompute(parent)

		s.trades = append(s.trades, child)
		return child, nil
	}
	return Trade{}, fmt.Errorf("partial close %q: %w", tradeID, ErrNotFound)
}

// DeleteTrades removes the given trades and returns how many were found.
func (s *Store) DeleteTrades(tradeIDs ...string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	doomed := make(map[string]bool, len(tradeIDs))
	for _, tid := range tradeIDs {
		doomed[tid] = true
	}
	kept := s.trades[:0]
	removed := 0
	for _, t := range s.trades {
		if doomed[t.ID] {
			removed++
			continue
		}
		kept = append(kept, t)
	}
	s.trades = kept
	return removed
}

// merge appends a batch of already-validated trades in one exclusive
// section, so an import is never partially visible.
func (s *Store) merge(batch []Trade) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = append(s.trades, batch...)
}

// recompute refreshes the derived fields, preserving PartiallyClosed on a
// parent that is still open. Callers hold the write lock.
func (s *Store) recompute(t *Trade) {
	d := Derive(*t)
	t.PnL = d.PnL
	t.PnLPercent = d.PnLPercent
	t.RiskReward = d.RiskReward
	if t.Status == StatusPartiallyClosed && d.Status == StatusOpen {
		return
	}
	t.Status = d.Status
}

func (s *Store) hasAccount(accountID string) bool {
	for _, a := range s.accounts {
		if a.ID == accountID {
			return true
		}
	}
	return false
}

func (s *Store) hasStrategy(strategyID string) bool {
	for _, st := range s.strategies {
		if st.ID == strategyID {
			return true
		}
	}
	return false
}

// ---- snapshot ----

// Serialize copies the full ledger into a Snapshot stamped with the export
// date and schema version.
func (s *Store) Serialize() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Accounts:   make([]Account, len(s.accounts)),
		Strategies: make([]Strategy, len(s.strategies)),
		Trades:     make([]Trade, len(s.trades)),
		ExportDate: time.Now().UTC().Format(time.RFC3339),
		Version:    SchemaVersion,
	}
	copy(snap.Accounts, s.accounts)
	copy(snap.Strategies, s.strategies)
	copy(snap.Trades, s.trades)
	return snap
}

// Hydrate replaces the ledger contents with a snapshot, recomputing every
// trade's derived fields so status can never disagree with the exit fields.
// Trades referencing unknown accounts or strategies are rejected.
func (s *Store) Hydrate(snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := make(map[string]bool, len(snap.Accounts))
	for _, a := range snap.Accounts {
		accounts[a.ID] = true
	}
	strategies := make(map[string]bool, len(snap.Strategies))
	for _, st := range snap.Strategies {
		strategies[st.ID] = true
	}
	for _, t := range snap.Trades {
		if !accounts[t.AccountID] {
			return fmt.Errorf("hydrate: trade %q references unknown account %q", t.ID, t.AccountID)
		}
		if !strategies[t.StrategyID] {
			return fmt.Errorf("hydrate: trade %q references unknown strategy %q", t.ID, t.StrategyID)
		}
	}

	s.accounts = make([]Account, len(snap.Accounts))
	copy(s.accounts, snap.Accounts)
	s.strategies = make([]Strategy, len(snap.Strategies))
	copy(s.strategies, snap.Strategies)
	s.trades = make([]Trade, len(snap.Trades))
	copy(s.trades, snap.Trades)
	for i := range s.trades {
		s.recompute(&s.trades[i])
	}

	s.log.Debug().
		Int("accounts", len(s.accounts)).
		Int("strategies", len(s.strategies)).
		Int("trades", len(s.trades)).
		Msg("ledger hydrated")
	return nil
}

// sortTradesByExit orders trades by exit date ascending, stable on ties.
// ISO dates compare correctly as strings.
func sortTradesByExit(trades []Trade) []Trade {
	out := make([]Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ExitDate < out[j].ExitDate
	})
	return out
}
