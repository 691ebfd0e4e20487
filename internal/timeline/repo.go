package timeline

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pathfinder/pkg/models"
)

//go:embed seed/events.json
var seedJSON []byte

// LoadSeed returns the bundled event set.
func LoadSeed() ([]models.TimelineEvent, error) {
	var out []models.TimelineEvent
	if err := json.Unmarshal(seedJSON, &out); err != nil {
		return nil, fmt.Errorf("decode timeline seed: %w", err)
	}
	return out, nil
}

var validTypes = map[string]bool{
	"admission":   true,
	"scholarship": true,
	"exam":        true,
	"counseling":  true,
}

func ValidType(t string) bool { return validTypes[t] }

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

type Filter struct {
	Type  string
	State string
}

// ListActive returns active events ordered by start date.
func (r *Repo) ListActive(ctx context.Context, f Filter) ([]models.TimelineEvent, error) {
	where := []string{"is_active = 1"}
	var args []any
	if t := strings.TrimSpace(f.Type); t != "" {
		where = append(where, "type = ?")
		args = append(args, strings.ToLower(t))
	}
	if s := strings.TrimSpace(f.State); s != "" {
		where = append(where, "LOWER(state) = ?")
		args = append(args, strings.ToLower(s))
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, description, type, start_date, end_date, institution, location, state, url, is_active
		FROM timeline_events
		WHERE `+strings.Join(where, " AND ")+`
		ORDER BY start_date ASC, title ASC
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	defer rows.Close()

	out := []models.TimelineEvent{}
	for rows.Next() {
		var (
			ev  models.TimelineEvent
			end sql.NullTime
		)
		if err := rows.Scan(&ev.ID, &ev.Title, &ev.Description, &ev.Type, &ev.StartDate, &end,
			&ev.Institution, &ev.Location, &ev.State, &ev.URL, &ev.IsActive); err != nil {
			return nil, fmt.Errorf("scan timeline: %w", err)
		}
		if end.Valid {
			t := end.Time
			ev.EndDate = &t
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// InsertMany stores events, skipping ones already present by
// (title, start date). It returns the number inserted.
func (r *Repo) InsertMany(ctx context.Context, events []models.TimelineEvent) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO timeline_events (id, title, description, type, start_date, end_date, institution, location, state, url, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, ev := range events {
		if strings.TrimSpace(ev.Title) == "" || !ValidType(ev.Type) || ev.StartDate.IsZero() {
			continue
		}
		if ev.ID == "" {
			ev.ID = primitive.NewObjectID().Hex()
		}
		var end sql.NullTime
		if ev.EndDate != nil {
			end = sql.NullTime{Time: ev.EndDate.UTC(), Valid: true}
		}

		res, err := stmt.ExecContext(ctx, ev.ID, ev.Title, ev.Description, ev.Type, ev.StartDate.UTC(), end,
			ev.Institution, ev.Location, ev.State, ev.URL, ev.IsActive)
		if err != nil {
			return 0, fmt.Errorf("exec insert for %s: %w", ev.Title, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return inserted, nil
}

// Seed loads the bundled events into the store.
func (r *Repo) Seed(ctx context.Context) (int, error) {
	events, err := LoadSeed()
	if err != nil {
		return 0, err
	}
	return r.InsertMany(ctx, events)
}
