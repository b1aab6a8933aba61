// Package sqlite persists the document collections in a local SQLite
// database. Record identities are UUIDs assigned on creation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"saldo/internal/core"
	"saldo/internal/store"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ListExpenses implements store.ExpenseStore. The (occurred_on, id)
// ordering keeps snapshot order deterministic across reads, which the
// balance projection's stable sort relies on for equal dates.
func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, occurred_on, amount_cents, attachment
		 FROM expenses ORDER BY occurred_on, id`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return out, nil
}

func (r *Repository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, occurred_on, amount_cents, attachment
		 FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	return e, err
}

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, name, occurred_on, amount_cents, attachment)
		 VALUES (?, ?, ?, ?, ?)`,
		id, e.Name, e.OccurredOn.String(), e.Amount.Cents, e.Attachment)
	if err != nil {
		return "", fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"name", e.Name,
		"amount_cents", e.Amount.Cents,
		"occurred_on", e.OccurredOn.String())

	return id, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses
		 SET name = ?, occurred_on = ?, amount_cents = ?, attachment = ?,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		e.Name, e.OccurredOn.String(), e.Amount.Cents, e.Attachment, e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository) UserByEmail(ctx context.Context, email string) (store.User, error) {
	var u store.User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash FROM users WHERE email = ?`, email).
		Scan(&u.ID, &u.Email, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, store.ErrNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *Repository) CreateUser(ctx context.Context, u store.User) (string, error) {
	id := u.ID
	if id == "" {
		id = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash) VALUES (?, ?, ?)`,
		id, u.Email, u.PasswordHash)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (r *Repository) CanEdit(ctx context.Context, userID string) (bool, error) {
	var canEdit bool
	err := r.db.QueryRowContext(ctx,
		`SELECT can_edit FROM permissions WHERE user_id = ?`, userID).Scan(&canEdit)
	if errors.Is(err, sql.ErrNoRows) {
		// No permission document means read-only.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get permission flag: %w", err)
	}
	return canEdit, nil
}

func (r *Repository) SetEditor(ctx context.Context, userID string, canEdit bool) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO permissions (user_id, can_edit) VALUES (?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET can_edit = excluded.can_edit`,
		userID, canEdit)
	if err != nil {
		return fmt.Errorf("set permission flag: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e          core.Expense
		occurredOn string
		cents      int64
	)
	if err := row.Scan(&e.ID, &e.Name, &occurredOn, &cents, &e.Attachment); err != nil {
		return core.Expense{}, err
	}
	if occurredOn != "" {
		d, err := core.ParseDate(occurredOn)
		if err != nil {
			return core.Expense{}, fmt.Errorf("scan expense %s: %w", e.ID, err)
		}
		e.OccurredOn = d
	}
	e.Amount = core.Money{Cents: cents}
	return e, nil
}
