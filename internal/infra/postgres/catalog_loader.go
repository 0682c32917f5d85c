package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"quizlive/internal/domain"
)

// CatalogLoader loads the global question catalog (JSONB rows) at startup.
type CatalogLoader struct {
	pool *pgxpool.Pool
}

func NewCatalogLoader(pool *pgxpool.Pool) *CatalogLoader {
	return &CatalogLoader{pool: pool}
}

// LoadQuestions returns every catalog question; an empty table yields an
// empty slice, not an error.
func (l *CatalogLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT question_data FROM catalog_questions`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan catalog row: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal catalog question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return questions, nil
}

// SaveQuestions persists imported questions so they survive restarts.
// Duplicate hashes are skipped.
func (l *CatalogLoader) SaveQuestions(ctx context.Context, questions []domain.Question) error {
	for _, q := range questions {
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal catalog question: %w", err)
		}
		_, err = l.pool.Exec(ctx,
			`INSERT INTO catalog_questions (question_hash, level, topic, question_data)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (question_hash) DO NOTHING`,
			q.Hash(), string(q.Level), q.Topic, data)
		if err != nil {
			return fmt.Errorf("save catalog question: %w", err)
		}
	}
	return nil
}
