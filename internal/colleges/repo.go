package colleges

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pathfinder/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

type ListQuery struct {
	Q      string // keyword search in name/location/district
	State  string
	Type   string
	Limit  int
	Offset int
}

func (q ListQuery) normalized() ListQuery {
	if q.Limit <= 0 || q.Limit > 100 {
		q.Limit = 20
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

const collegeColumns = `id, name, location, district, state, type, established, students, rating,
	facilities, programs, medium, fees, cutoffs, website`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollege(row rowScanner) (models.College, error) {
	var (
		c           models.College
		established sql.NullInt64
		students    sql.NullInt64
		rating      sql.NullFloat64
		facilities  string
		programs    string
		medium      string
		fees        string
		cutoffs     string
	)
	if err := row.Scan(
		&c.ID, &c.Name, &c.Location, &c.District, &c.State, &c.Type, &established, &students, &rating,
		&facilities, &programs, &medium, &fees, &cutoffs, &c.Website,
	); err != nil {
		return c, err
	}

	if established.Valid {
		year := int(established.Int64)
		c.Established = &year
	}
	c.Students = int(students.Int64)
	c.Rating = rating.Float64

	c.Facilities = decodeStrings(facilities)
	c.Programs = decodeStrings(programs)
	c.Medium = decodeStrings(medium)
	_ = json.Unmarshal([]byte(fees), &c.Fees)
	_ = json.Unmarshal([]byte(cutoffs), &c.Cutoffs)
	return c, nil
}

func decodeStrings(s string) []string {
	out := []string{}
	_ = json.Unmarshal([]byte(s), &out)
	if out == nil {
		out = []string{}
	}
	return out
}

func (r *Repo) GetByID(ctx context.Context, id string) (*models.College, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+collegeColumns+` FROM colleges WHERE id = ?`, id)
	c, err := scanCollege(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan getByID: %w", err)
	}
	return &c, nil
}

func (r *Repo) Count(ctx context.Context, q ListQuery) (int, error) {
	sqlStr, args := buildListSQL(q, true)
	var total int
	if err := r.DB.QueryRowContext(ctx, sqlStr, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count scan: %w", err)
	}
	return total, nil
}

func (r *Repo) List(ctx context.Context, q ListQuery) ([]models.College, error) {
	q = q.normalized()
	sqlStr, args := buildListSQL(q, false)

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("list query: %w", err)
	}
	defer rows.Close()

	out := make([]models.College, 0, q.Limit)
	for rows.Next() {
		c, err := scanCollege(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// All returns every stored college ordered by name.
func (r *Repo) All(ctx context.Context) ([]models.College, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+collegeColumns+` FROM colleges ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("all query: %w", err)
	}
	defer rows.Close()

	var out []models.College
	for rows.Next() {
		c, err := scanCollege(rows)
		if err != nil {
			return nil, fmt.Errorf("all scan: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// FindSummaries loads the given ids in a single query, projected to the
// fields a saved-college summary carries. Missing ids are skipped.
func (r *Repo) FindSummaries(ctx context.Context, ids []string) ([]models.CollegeSummary, error) {
	ids = uniqueNonEmpty(ids)
	if len(ids) == 0 {
		return nil, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, location, district, state, type, rating
		FROM colleges
		WHERE id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("find summaries: %w", err)
	}
	defer rows.Close()

	out := make([]models.CollegeSummary, 0, len(ids))
	for rows.Next() {
		var (
			s                  models.CollegeSummary
			location, district string
			rating             sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &s.Name, &location, &district, &s.State, &s.Type, &rating); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		s.CollegeID = s.ID
		s.Location = location
		if s.Location == "" {
			s.Location = district
		}
		if rating.Valid {
			v := rating.Float64
			s.Rating = &v
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

// InsertMany stores the given colleges, assigning an ObjectID to records
// without one. Records that collide on (name, state) are skipped. It returns
// the number of rows inserted.
func (r *Repo) InsertMany(ctx context.Context, colleges []models.College) (int, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO colleges (id, name, location, district, state, type, established, students, rating,
			facilities, programs, medium, fees, cutoffs, website, raw)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	inserted := 0
	for _, c := range colleges {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		if c.ID == "" {
			c.ID = primitive.NewObjectID().Hex()
		}

		var established sql.NullInt64
		if c.Established != nil {
			established = sql.NullInt64{Int64: int64(*c.Established), Valid: true}
		}
		var rating sql.NullFloat64
		if c.Rating != 0 {
			rating = sql.NullFloat64{Float64: c.Rating, Valid: true}
		}
		var raw sql.NullString
		if c.Raw != nil {
			b, err := json.Marshal(c.Raw)
			if err == nil {
				raw = sql.NullString{String: string(b), Valid: true}
			}
		}

		res, err := stmt.ExecContext(ctx,
			c.ID, c.Name, c.Location, c.District, c.State, c.Type, established, c.Students, rating,
			encodeStrings(c.Facilities), encodeStrings(c.Programs), encodeStrings(c.Medium),
			encodeJSON(c.Fees), encodeJSON(c.Cutoffs), c.Website, raw,
		)
		if err != nil {
			return 0, fmt.Errorf("exec insert for %s: %w", c.Name, err)
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

func encodeStrings(v []string) string {
	if v == nil {
		v = []string{}
	}
	return encodeJSON(v)
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func uniqueNonEmpty(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// buildListSQL builds either COUNT(*) or SELECT list.
func buildListSQL(q ListQuery, countOnly bool) (string, []any) {
	baseSelect := `SELECT ` + collegeColumns + ` FROM colleges`
	if countOnly {
		baseSelect = `SELECT COUNT(*) FROM colleges`
	}

	var where []string
	var args []any

	if kw := strings.TrimSpace(q.Q); kw != "" {
		where = append(where, "(LOWER(name) LIKE ? OR LOWER(location) LIKE ? OR LOWER(district) LIKE ?)")
		like := "%" + strings.ToLower(kw) + "%"
		args = append(args, like, like, like)
	}
	if s := strings.TrimSpace(q.State); s != "" {
		where = append(where, "LOWER(state) = ?")
		args = append(args, strings.ToLower(s))
	}
	if t := strings.TrimSpace(q.Type); t != "" {
		where = append(where, "LOWER(type) = ?")
		args = append(args, strings.ToLower(t))
	}

	sqlStr := baseSelect
	if len(where) > 0 {
		sqlStr += " WHERE " + strings.Join(where, " AND ")
	}

	if !countOnly {
		q = q.normalized()
		sqlStr += " ORDER BY name ASC LIMIT ? OFFSET ?"
		args = append(args, q.Limit, q.Offset)
	}

	return sqlStr, args
}
