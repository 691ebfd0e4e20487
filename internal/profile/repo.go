package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"pathfinder/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Get returns nil, nil when no user has the email.
func (r *Repo) Get(ctx context.Context, email string) (*models.Profile, error) {
	return load(ctx, r.DB, email)
}

// Update applies fn to the stored profile and writes it back in one
// transaction. It returns nil, nil when no user has the email.
func (r *Repo) Update(ctx context.Context, email string, fn func(p *models.Profile)) (*models.Profile, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	p, err := load(ctx, tx, email)
	if err != nil || p == nil {
		return nil, err
	}

	fn(p)
	p.Email = email

	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET profile = ?, updated_at = CURRENT_TIMESTAMP WHERE email = ?`, string(b), email,
	); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return p, nil
}

func load(ctx context.Context, q queryRower, email string) (*models.Profile, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT profile FROM users WHERE email = ?`, email).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load profile: %w", err)
	}

	p := &models.Profile{}
	if err := json.Unmarshal([]byte(raw), p); err != nil {
		// unreadable documents read as empty
		p = &models.Profile{}
	}
	p.Email = email
	if p.Interests == nil {
		p.Interests = []string{}
	}
	return p, nil
}
