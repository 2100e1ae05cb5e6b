package app

import (
	"context"
	"fmt"

	"quiz-runner-service/internal/domain"
)

// CatalogLoader fetches the ordered question list for a content (from
// cache/backing store). The sequence is ordered by creation order; ties keep
// store arrival order.
type CatalogLoader interface {
	LoadQuestions(ctx context.Context, contentID string) ([]domain.Question, error)
}

// ResultStore persists one result document per (content, participant email).
// Writes are upserts with merge semantics; the store assigns the completion
// timestamp.
type ResultStore interface {
	SaveResult(ctx context.Context, contentID string, participant domain.Participant, result domain.Result) error
}

// SessionDirectory resolves administered sessions that participants join
// via invite link.
type SessionDirectory interface {
	GetSession(ctx context.Context, sessionID string) (domain.SessionInfo, error)
}

// StudentStore records participant join records under a session.
type StudentStore interface {
	RegisterStudent(ctx context.Context, sessionID string, participant domain.Participant) error
}

// QuizService wires the participant-facing quiz use cases: joining an
// administered session, starting a run over its catalog, and committing the
// scored result once the run finishes.
type QuizService struct {
	catalog  CatalogLoader
	results  ResultStore
	sessions SessionDirectory
	students StudentStore
}

func NewQuizService(catalog CatalogLoader, results ResultStore, sessions SessionDirectory, students StudentStore) *QuizService {
	return &QuizService{
		catalog:  catalog,
		results:  results,
		sessions: sessions,
		students: students,
	}
}

// Join validates the invite and writes the participant's join record. A
// repeat join for the same email refreshes the record (merge).
func (s *QuizService) Join(ctx context.Context, sessionID string, participant domain.Participant) (domain.SessionInfo, error) {
	info, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return domain.SessionInfo{}, err
	}
	if err := s.students.RegisterStudent(ctx, sessionID, participant); err != nil {
		return domain.SessionInfo{}, err
	}
	return info, nil
}

// StartQuiz loads the content's questions and opens a session over the
// snapshot. Any fetch failure, and a content with zero questions, surfaces
// as ErrCatalogUnavailable before a session exists.
func (s *QuizService) StartQuiz(ctx context.Context, contentID string) (*Session, error) {
	questions, err := s.catalog.LoadQuestions(ctx, contentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogUnavailable, err)
	}
	return NewSession(contentID, questions)
}

// Finish scores a finished session and commits the result exactly once per
// completion event. The write is idempotent on identical input, so a guard
// against double invocation lives with the caller, not here. No retry on
// failure.
func (s *QuizService) Finish(ctx context.Context, session *Session, participant domain.Participant) (domain.Result, error) {
	result, err := session.ComputeResult()
	if err != nil {
		return domain.Result{}, err
	}
	if err := s.results.SaveResult(ctx, session.ContentID(), participant, result); err != nil {
		return domain.Result{}, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}
	return result, nil
}
