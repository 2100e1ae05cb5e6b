package app_test

import (
	"context"
	"errors"
	"testing"

	"quiz-runner-service/internal/app"
	"quiz-runner-service/internal/domain"
	"quiz-runner-service/internal/infra/memory"
)

func TestStartQuizLoadsSnapshot(t *testing.T) {
	service := newTestService(t)

	session, err := service.StartQuiz(context.Background(), "content-1")
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	if session.Len() != 2 {
		t.Fatalf("expected 2 questions, got %d", session.Len())
	}
	if session.Index() != 0 || session.Finished() {
		t.Fatalf("expected fresh session at index 0")
	}
}

func TestStartQuizUnknownContent(t *testing.T) {
	service := newTestService(t)

	_, err := service.StartQuiz(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected catalog error, got %v", err)
	}
}

func TestStartQuizEmptyContent(t *testing.T) {
	catalog := memory.NewStaticCatalog(map[string][]domain.Question{
		"empty": {},
	})
	service := app.NewQuizService(catalog, memory.NewResultStore(), memory.NewSessionDirectory(nil), memory.NewStudentStore())

	_, err := service.StartQuiz(context.Background(), "empty")
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected catalog error for empty content, got %v", err)
	}
}

func TestFinishPersistsResult(t *testing.T) {
	results := memory.NewResultStore()
	catalog := memory.NewStaticCatalog(sampleCatalog())
	service := app.NewQuizService(catalog, results, memory.NewSessionDirectory(nil), memory.NewStudentStore())

	session, err := service.StartQuiz(context.Background(), "content-1")
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	_ = session.SelectAnswer(0, 1)
	_ = session.Advance()
	_ = session.SelectAnswer(1, 1)
	_ = session.Advance()

	participant := domain.Participant{Email: "alice@example.com", FirstName: "Alice", LastName: "Ozdemir"}
	result, err := service.Finish(context.Background(), session, participant)
	if err != nil {
		t.Fatalf("finish: %v", err)
	}
	if result.Total != 2 || result.Correct != 2 || result.Wrong != 0 || result.Score != 100 {
		t.Fatalf("unexpected result: %+v", result)
	}

	stored, ok := results.Get("content-1", "alice@example.com")
	if !ok {
		t.Fatalf("expected stored result")
	}
	if stored.Score != 100 || stored.TakenAt.IsZero() {
		t.Fatalf("unexpected stored result: %+v", stored)
	}
}

func TestFinishBeforeFinishedFails(t *testing.T) {
	service := newTestService(t)

	session, err := service.StartQuiz(context.Background(), "content-1")
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	_, err = service.Finish(context.Background(), session, domain.Participant{Email: "a@b.c"})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestFinishWrapsWriteFailure(t *testing.T) {
	catalog := memory.NewStaticCatalog(sampleCatalog())
	service := app.NewQuizService(catalog, failingResultStore{}, memory.NewSessionDirectory(nil), memory.NewStudentStore())

	session, err := service.StartQuiz(context.Background(), "content-1")
	if err != nil {
		t.Fatalf("start quiz: %v", err)
	}
	_ = session.Advance()
	_ = session.Advance()

	_, err = service.Finish(context.Background(), session, domain.Participant{Email: "a@b.c"})
	if !errors.Is(err, domain.ErrPersistenceFailed) {
		t.Fatalf("expected persistence error, got %v", err)
	}
}

func TestJoinRegistersStudent(t *testing.T) {
	students := memory.NewStudentStore()
	directory := memory.NewSessionDirectory(map[string]domain.SessionInfo{
		"sess-1": {ID: "sess-1", Name: "Morning group", ContentID: "content-1"},
	})
	service := app.NewQuizService(memory.NewStaticCatalog(sampleCatalog()), memory.NewResultStore(), directory, students)

	participant := domain.Participant{Email: "bob@example.com", FirstName: "Bob", LastName: "Aksoy"}
	info, err := service.Join(context.Background(), "sess-1", participant)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if info.ContentID != "content-1" {
		t.Fatalf("unexpected session info: %+v", info)
	}
	record, ok := students.Get("sess-1", "bob@example.com")
	if !ok || record.FirstName != "Bob" || record.JoinedAt.IsZero() {
		t.Fatalf("expected join record, got %+v (ok=%v)", record, ok)
	}
}

func TestJoinUnknownSession(t *testing.T) {
	service := newTestService(t)

	_, err := service.Join(context.Background(), "nope", domain.Participant{Email: "a@b.c"})
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session error, got %v", err)
	}
}

type failingResultStore struct{}

func (failingResultStore) SaveResult(context.Context, string, domain.Participant, domain.Result) error {
	return errors.New("write refused")
}

func sampleCatalog() map[string][]domain.Question {
	return map[string][]domain.Question{
		"content-1": {
			{
				ID:            "q1",
				Prompt:        "Which vitamin does sunlight help produce?",
				Options:       []string{"Vitamin A", "Vitamin D", "Vitamin C", "Vitamin K"},
				CorrectOption: 1,
				Seq:           0,
			},
			{
				ID:            "q2",
				Prompt:        "How many chambers does the human heart have?",
				Options:       []string{"Two", "Four", "Three", "Five"},
				CorrectOption: 1,
				Seq:           1,
			},
		},
	}
}

func newTestService(t *testing.T) *app.QuizService {
	t.Helper()
	return app.NewQuizService(
		memory.NewStaticCatalog(sampleCatalog()),
		memory.NewResultStore(),
		memory.NewSessionDirectory(nil),
		memory.NewStudentStore(),
	)
}
