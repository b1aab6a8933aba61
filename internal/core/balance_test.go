package core

import (
	"reflect"
	"testing"
)

func expenses() []Expense {
	return []Expense{
		{ID: "b", Name: "refund", OccurredOn: NewDate(2024, 1, 3), Amount: Money{Cents: 2000}},
		{ID: "a", Name: "salary", OccurredOn: NewDate(2024, 1, 1), Amount: Money{Cents: 10000}},
		{ID: "c", Name: "groceries", OccurredOn: NewDate(2024, 1, 2), Amount: Money{Cents: -4000}},
	}
}

func TestProjectBalancesScenario(t *testing.T) {
	// Amounts [100, -40, 20] on consecutive days project to running
	// balances [100, 60, 80] ascending, displayed most recent first.
	lines := ProjectBalances(expenses())
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}

	wantIDs := []string{"b", "c", "a"}
	wantBalances := []int64{8000, 6000, 10000}
	for i, line := range lines {
		if line.ID != wantIDs[i] {
			t.Fatalf("line %d expected id %s, got %s", i, wantIDs[i], line.ID)
		}
		if line.RunningBalance.Cents != wantBalances[i] {
			t.Fatalf("line %d expected balance %d, got %d", i, wantBalances[i], line.RunningBalance.Cents)
		}
	}
}

func TestProjectBalancesLastEqualsTotal(t *testing.T) {
	records := expenses()
	lines := ProjectBalances(records)
	// Display order is reversed, so the chronologically last record is first.
	if lines[0].RunningBalance != TotalBalance(records) {
		t.Fatalf("last running balance %v != total %v", lines[0].RunningBalance, TotalBalance(records))
	}
}

func TestProjectBalancesIdempotent(t *testing.T) {
	records := expenses()
	first := ProjectBalances(records)
	second := ProjectBalances(records)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("projection not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestProjectBalancesEqualDatesStable(t *testing.T) {
	records := []Expense{
		{ID: "x", OccurredOn: NewDate(2024, 5, 1), Amount: Money{Cents: 100}},
		{ID: "y", OccurredOn: NewDate(2024, 5, 1), Amount: Money{Cents: 200}},
		{ID: "z", OccurredOn: NewDate(2024, 5, 1), Amount: Money{Cents: 300}},
	}
	lines := ProjectBalances(records)
	// Input order preserved in the ascending pass, so reversed on display.
	wantIDs := []string{"z", "y", "x"}
	wantBalances := []int64{600, 300, 100}
	for i, line := range lines {
		if line.ID != wantIDs[i] || line.RunningBalance.Cents != wantBalances[i] {
			t.Fatalf("line %d got id=%s balance=%d", i, line.ID, line.RunningBalance.Cents)
		}
	}
}

func TestProjectBalancesUndatedSortLast(t *testing.T) {
	records := []Expense{
		{ID: "undated", Amount: Money{Cents: 500}},
		{ID: "dated", OccurredOn: NewDate(2024, 1, 1), Amount: Money{Cents: 100}},
	}
	lines := ProjectBalances(records)
	// Undated records sort last chronologically, so first on display.
	if lines[0].ID != "undated" {
		t.Fatalf("expected undated record first on display, got %s", lines[0].ID)
	}
	if lines[0].RunningBalance.Cents != 600 {
		t.Fatalf("expected 600, got %d", lines[0].RunningBalance.Cents)
	}
}

func TestProjectBalancesEmpty(t *testing.T) {
	lines := ProjectBalances(nil)
	if len(lines) != 0 {
		t.Fatalf("expected empty projection, got %d lines", len(lines))
	}
}
