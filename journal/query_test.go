package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filterFixture() []Trade {
	return []Trade{
		{ID: "t1", Symbol: "RELIANCE.NS", AccountID: "a1", StrategyID: "s1",
			EntryDate: "2024-01-10", Status: StatusWin},
		{ID: "t2", Symbol: "TCS.NS", AccountID: "a1", StrategyID: "s2",
			EntryDate: "2024-02-10", Status: StatusLoss},
		{ID: "t3", Symbol: "INFY.NS", AccountID: "a2", StrategyID: "s1",
			EntryDate: "2024-03-10", Status: StatusOpen},
		{ID: "t4", Symbol: "RELIANCE.NS", AccountID: "a2", StrategyID: "s2",
			EntryDate: "2024-04-10", Status: StatusPartiallyClosed},
	}
}

func ids(trades []Trade) []string {
	out := make([]string, len(trades))
	for i, t := range trades {
		out[i] = t.ID
	}
	return out
}

func TestFilterEmptyMatchesAll(t *testing.T) {
	t.Parallel()

	got := Filter{}.Apply(filterFixture())
	assert.Len(t, got, 4)
}

func TestFilterByAccount(t *testing.T) {
	t.Parallel()

	got := Filter{AccountID: "a1"}.Apply(filterFixture())
	assert.Equal(t, []string{"t1", "t2"}, ids(got))

	got = Filter{AccountID: "all"}.Apply(filterFixture())
	assert.Len(t, got, 4)
}

func TestFilterByStrategy(t *testing.T) {
	t.Parallel()

	got := Filter{StrategyID: "s1"}.Apply(filterFixture())
	assert.Equal(t, []string{"t1", "t3"}, ids(got))
}

func TestFilterByOutcome(t *testing.T) {
	t.Parallel()

	fix := filterFixture()

	assert.Equal(t, []string{"t1"}, ids(Filter{Outcome: OutcomeWin}.Apply(fix)))
	assert.Equal(t, []string{"t2"}, ids(Filter{Outcome: OutcomeLoss}.Apply(fix)))
	// "open" includes partially closed parents.
	assert.Equal(t, []string{"t3", "t4"}, ids(Filter{Outcome: OutcomeOpen}.Apply(fix)))
	assert.Len(t, Filter{Outcome: OutcomeAll}.Apply(fix), 4)
	assert.Len(t, Filter{Outcome: "WIN"}.Apply(fix), 1, "outcome is case-insensitive")
}

func TestFilterByDateRange(t *testing.T) {
	t.Parallel()

	fix := filterFixture()

	got := Filter{DateFrom: "2024-02-01", DateTo: "2024-03-31"}.Apply(fix)
	assert.Equal(t, []string{"t2", "t3"}, ids(got))

	// Bounds are inclusive.
	got = Filter{DateFrom: "2024-01-10", DateTo: "2024-01-10"}.Apply(fix)
	assert.Equal(t, []string{"t1"}, ids(got))
}

func TestFilterBySymbol(t *testing.T) {
	t.Parallel()

	got := Filter{Symbol: "reliance"}.Apply(filterFixture())
	assert.Equal(t, []string{"t1", "t4"}, ids(got))

	got = Filter{Symbol: "ZZZ"}.Apply(filterFixture())
	assert.Empty(t, got)
}

func TestFilterCombinedAND(t *testing.T) {
	t.Parallel()

	got := Filter{AccountID: "a2", Outcome: OutcomeOpen, Symbol: "RELIANCE"}.Apply(filterFixture())
	assert.Equal(t, []string{"t4"}, ids(got))
}

func TestFilterIdempotent(t *testing.T) {
	t.Parallel()

	f := Filter{AccountID: "a1", Outcome: OutcomeAll}
	once := f.Apply(filterFixture())
	twice := f.Apply(once)
	assert.Equal(t, once, twice)
}

func TestFilterBadDateBoundIgnored(t *testing.T) {
	t.Parallel()

	f := Filter{DateFrom: "not-a-date"}
	got := f.Apply(filterFixture())
	assert.Len(t, got, 4)

	warns := f.Warnings()
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "not-a-date")
}

func TestFilterUnparseableTradeDatePassesBounds(t *testing.T) {
	t.Parallel()

	trades := []Trade{{ID: "t1", Symbol: "X.NS", EntryDate: "garbage", Status: StatusOpen}}
	got := Filter{DateFrom: "2024-01-01", DateTo: "2024-12-31"}.Apply(trades)
	assert.Len(t, got, 1)
}
