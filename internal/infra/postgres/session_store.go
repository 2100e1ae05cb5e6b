package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quiz-runner-service/internal/domain"
)

// SessionStore manages administered sessions and their participant join
// records.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

func (s *SessionStore) GetSession(ctx context.Context, sessionID string) (domain.SessionInfo, error) {
	var info domain.SessionInfo
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, content_id, invite_link, created_at FROM sessions WHERE id=$1`,
		sessionID).Scan(&info.ID, &info.Name, &info.ContentID, &info.InviteLink, &info.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.SessionInfo{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.SessionInfo{}, fmt.Errorf("get session: %w", err)
	}
	return info, nil
}

// CreateSession inserts a new administered session row.
func (s *SessionStore) CreateSession(ctx context.Context, info domain.SessionInfo) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, name, content_id, invite_link) VALUES ($1, $2, $3, $4)`,
		info.ID, info.Name, info.ContentID, info.InviteLink)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// RegisterStudent upserts the participant's join record. A repeat join
// refreshes the name fields and the join timestamp.
func (s *SessionStore) RegisterStudent(ctx context.Context, sessionID string, participant domain.Participant) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO students (session_id, email, first_name, last_name, joined_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (session_id, email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			joined_at  = now()`,
		sessionID, participant.Email, participant.FirstName, participant.LastName)
	if err != nil {
		return fmt.Errorf("register student: %w", err)
	}
	return nil
}

// SessionResultRow is one exported line: the join record joined with the
// participant's result, zero-valued when they never finished.
type SessionResultRow struct {
	FirstName string
	LastName  string
	Email     string
	Correct   int
	Wrong     int
	Score     int
	JoinedAt  time.Time
}

// ListSessionResults returns every student of a session with their result
// for the session's content, ordered by join time.
func (s *SessionStore) ListSessionResults(ctx context.Context, sessionID string) ([]SessionResultRow, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT st.first_name, st.last_name, st.email,
		       COALESCE(r.correct, 0), COALESCE(r.wrong, 0), COALESCE(r.score, 0),
		       st.joined_at
		FROM students st
		JOIN sessions se ON se.id = st.session_id
		LEFT JOIN results r ON r.content_id = se.content_id AND r.email = st.email
		WHERE st.session_id = $1
		ORDER BY st.joined_at`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("list session results: %w", err)
	}
	defer rows.Close()

	var out []SessionResultRow
	for rows.Next() {
		var row SessionResultRow
		if err := rows.Scan(&row.FirstName, &row.LastName, &row.Email,
			&row.Correct, &row.Wrong, &row.Score, &row.JoinedAt); err != nil {
			return nil, fmt.Errorf("scan session result: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list session results: %w", err)
	}
	return out, nil
}
