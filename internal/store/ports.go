// Package store defines the document-store ports the rest of the
// application talks to, and the record types persisted through them.
package store

import (
	"context"
	"errors"

	"saldo/internal/core"
)

var ErrNotFound = errors.New("record not found")

// User is an authenticated account. PasswordHash is a bcrypt hash.
type User struct {
	ID           string
	Email        string
	PasswordHash string
}

type (
	// ExpenseStore is the port for the expense record collection.
	// Create assigns and returns a fresh identity; Update replaces all
	// fields of the record with the given identity; Get and Delete
	// address records by identity and fail with ErrNotFound when no
	// such record exists. ListExpenses returns the full collection
	// ordered by (occurredOn, id) so snapshots are deterministic.
	ExpenseStore interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		CreateExpense(ctx context.Context, e core.Expense) (string, error)
		UpdateExpense(ctx context.Context, e core.Expense) error
		DeleteExpense(ctx context.Context, id string) error
	}

	// UserStore is the port for the user collection.
	UserStore interface {
		UserByEmail(ctx context.Context, email string) (User, error)
		CreateUser(ctx context.Context, u User) (string, error)
	}

	// PermissionStore is the coarse permission-flag collection keyed by
	// user identity. Users without an entry are read-only.
	PermissionStore interface {
		CanEdit(ctx context.Context, userID string) (bool, error)
		SetEditor(ctx context.Context, userID string, canEdit bool) error
	}

	// Store is the full document-store boundary.
	Store interface {
		ExpenseStore
		UserStore
		PermissionStore
	}
)
