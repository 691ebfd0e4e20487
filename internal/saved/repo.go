package saved

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// Saved lists live as JSON arrays on the user row. Entries are kept as raw
// JSON so legacy shapes survive a rewrite untouched.
const (
	collegesColumn  = "saved_colleges"
	materialsColumn = "saved_materials"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) SavedColleges(ctx context.Context, email string) ([]json.RawMessage, error) {
	return r.load(ctx, collegesColumn, email)
}

func (r *Repo) UpdateSavedColleges(ctx context.Context, email string, fn UpdateFunc) error {
	return r.update(ctx, collegesColumn, email, fn)
}

func (r *Repo) SavedMaterials(ctx context.Context, email string) ([]json.RawMessage, error) {
	return r.load(ctx, materialsColumn, email)
}

func (r *Repo) UpdateSavedMaterials(ctx context.Context, email string, fn UpdateFunc) error {
	return r.update(ctx, materialsColumn, email, fn)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (r *Repo) load(ctx context.Context, column, email string) ([]json.RawMessage, error) {
	return loadList(ctx, r.DB, column, email)
}

// update runs the read-modify-write of one list inside a single
// transaction. The connection DSN opens transactions as IMMEDIATE, so two
// concurrent toggles serialize instead of overwriting each other.
func (r *Repo) update(ctx context.Context, column, email string, fn UpdateFunc) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	current, err := loadList(ctx, tx, column, email)
	if err != nil {
		return err
	}

	next, err := fn(current)
	if err != nil {
		return err
	}
	if next == nil {
		next = []json.RawMessage{}
	}

	b, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode %s: %w", column, err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE users SET `+column+` = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?`,
		string(b), email,
	)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func loadList(ctx context.Context, q queryRower, column, email string) ([]json.RawMessage, error) {
	var raw sql.NullString
	err := q.QueryRowContext(ctx, `SELECT `+column+` FROM users WHERE email = ?`, email).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load %s: %w", column, err)
	}

	// A column that does not hold an array reads as an empty list.
	var list []json.RawMessage
	if raw.Valid {
		if err := json.Unmarshal([]byte(raw.String), &list); err != nil {
			list = nil
		}
	}
	if list == nil {
		list = []json.RawMessage{}
	}
	return list, nil
}
