package core

import "sort"

// BalanceLine is a view-only projection of an expense record. The derived
// fields are never written back to storage; persistence payloads are built
// from the embedded Expense alone.
type BalanceLine struct {
	Expense
	RunningBalance Money `json:"runningBalance"`
	Editing        bool  `json:"-"`
}

// ProjectBalances turns the complete, unordered snapshot of persisted
// records into a display-ready sequence: sorted ascending by date, each
// record annotated with the cumulative balance up to and including it,
// then reversed so the most recent record comes first.
//
// The sort is stable, so records sharing a date keep their relative input
// order; the stores return snapshots ordered by (occurredOn, id), which
// makes the projection deterministic. Records without a valid date sort
// last. The projection recomputes from scratch on every snapshot and is
// idempotent for an unchanged input.
func ProjectBalances(records []Expense) []BalanceLine {
	lines := make([]BalanceLine, len(records))
	for i, r := range records {
		lines[i] = BalanceLine{Expense: r}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		di, dj := lines[i].OccurredOn, lines[j].OccurredOn
		if di.IsZero() {
			return false
		}
		if dj.IsZero() {
			return true
		}
		return di.Before(dj)
	})

	var acc int64
	for i := range lines {
		acc += lines[i].Amount.Cents
		lines[i].RunningBalance = Money{Cents: acc}
	}

	for i, j := 0, len(lines)-1; i < j; i, j = i+1, j-1 {
		lines[i], lines[j] = lines[j], lines[i]
	}
	return lines
}

// TotalBalance sums all amounts in the snapshot. For a non-empty set it
// equals the running balance of the chronologically last record.
func TotalBalance(records []Expense) Money {
	var acc int64
	for _, r := range records {
		acc += r.Amount.Cents
	}
	return Money{Cents: acc}
}
