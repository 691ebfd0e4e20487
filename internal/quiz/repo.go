package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"pathfinder/pkg/models"
)

const listLimit = 20

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// UserIDByEmail returns "" when no user has the email.
func (r *Repo) UserIDByEmail(ctx context.Context, email string) (string, error) {
	var id string
	err := r.DB.QueryRowContext(ctx, `SELECT id FROM users WHERE email = ?`, email).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("find user: %w", err)
	}
	return id, nil
}

func (r *Repo) Create(ctx context.Context, res *models.QuizResult) error {
	if res.ID == "" {
		res.ID = primitive.NewObjectID().Hex()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now().UTC()
	}
	if len(res.Answers) == 0 {
		res.Answers = json.RawMessage(`[]`)
	}
	if len(res.Results) == 0 {
		res.Results = json.RawMessage(`{}`)
	}
	if res.CareerRecommendations == nil {
		res.CareerRecommendations = []string{}
	}

	careers, err := json.Marshal(res.CareerRecommendations)
	if err != nil {
		return fmt.Errorf("encode careers: %w", err)
	}
	var stream sql.NullString
	if res.StreamRecommendation != "" {
		stream = sql.NullString{String: res.StreamRecommendation, Valid: true}
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO quiz_results (id, user_id, answers, results, stream_recommendation, career_recommendations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, res.ID, res.UserID, string(res.Answers), string(res.Results), stream, string(careers), res.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

// ListByUser returns the newest results first.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]models.QuizResult, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, user_id, answers, results, stream_recommendation, career_recommendations, created_at
		FROM quiz_results
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, userID, listLimit)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}
	defer rows.Close()

	out := []models.QuizResult{}
	for rows.Next() {
		var (
			res              models.QuizResult
			answers, results string
			stream           sql.NullString
			careers          string
		)
		if err := rows.Scan(&res.ID, &res.UserID, &answers, &results, &stream, &careers, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		res.Answers = json.RawMessage(answers)
		res.Results = json.RawMessage(results)
		res.StreamRecommendation = stream.String
		_ = json.Unmarshal([]byte(careers), &res.CareerRecommendations)
		if res.CareerRecommendations == nil {
			res.CareerRecommendations = []string{}
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
