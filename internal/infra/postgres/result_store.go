package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-runner-service/internal/domain"
)

// ResultStore upserts one result row per (content, participant email). The
// completion timestamp is assigned by the database on every write, and a
// repeat attempt overwrites the prior result under the same key.
type ResultStore struct {
	pool *pgxpool.Pool
}

func NewResultStore(pool *pgxpool.Pool) *ResultStore {
	return &ResultStore{pool: pool}
}

func (s *ResultStore) SaveResult(ctx context.Context, contentID string, participant domain.Participant, result domain.Result) error {
	answers, err := json.Marshal(answerSnapshot(result.Answers))
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO results (content_id, email, first_name, last_name, total, correct, wrong, score, answers, taken_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, now())
		ON CONFLICT (content_id, email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			total      = EXCLUDED.total,
			correct    = EXCLUDED.correct,
			wrong      = EXCLUDED.wrong,
			score      = EXCLUDED.score,
			answers    = EXCLUDED.answers,
			taken_at   = now()`,
		contentID, participant.Email, participant.FirstName, participant.LastName,
		result.Total, result.Correct, result.Wrong, result.Score, string(answers))
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// answerSnapshot converts the index-keyed answer map to string keys so it
// serializes as a JSON object.
func answerSnapshot(answers map[int]int) map[string]int {
	snapshot := make(map[string]int, len(answers))
	for i, selected := range answers {
		snapshot[strconv.Itoa(i)] = selected
	}
	return snapshot
}
