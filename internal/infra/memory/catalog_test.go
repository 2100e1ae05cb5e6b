package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-runner-service/internal/domain"
)

func TestCachedCatalogCaches(t *testing.T) {
	loader := &countingSource{
		CatalogSource: NewStaticCatalog(map[string][]domain.Question{
			"content-1": sampleQuestions(),
		}),
	}
	catalog := NewCachedCatalog(loader, time.Minute)

	if _, err := catalog.LoadQuestions(context.Background(), "content-1"); err != nil {
		t.Fatalf("load questions: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := catalog.LoadQuestions(context.Background(), "content-1"); err != nil {
		t.Fatalf("load questions 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestCachedCatalogPropagatesMiss(t *testing.T) {
	catalog := NewCachedCatalog(NewStaticCatalog(nil), time.Minute)

	_, err := catalog.LoadQuestions(context.Background(), "missing")
	if !errors.Is(err, domain.ErrCatalogUnavailable) {
		t.Fatalf("expected catalog error, got %v", err)
	}
}

func TestStaticCatalogOrderPreserved(t *testing.T) {
	questions := sampleQuestions()
	catalog := NewStaticCatalog(map[string][]domain.Question{"content-1": questions})

	loaded, err := catalog.LoadQuestions(context.Background(), "content-1")
	if err != nil {
		t.Fatalf("load questions: %v", err)
	}
	for i := range loaded {
		if loaded[i].ID != questions[i].ID {
			t.Fatalf("order changed at %d: %s vs %s", i, loaded[i].ID, questions[i].ID)
		}
	}
}

type countingSource struct {
	CatalogSource
	calls int
}

func (s *countingSource) LoadQuestions(ctx context.Context, contentID string) ([]domain.Question, error) {
	s.calls++
	return s.CatalogSource.LoadQuestions(ctx, contentID)
}

func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			ID:            "q1",
			Prompt:        "Which organ filters blood?",
			Options:       []string{"Liver", "Kidney", "Lung", "Spleen"},
			CorrectOption: 1,
			Seq:           0,
		},
		{
			ID:            "q2",
			Prompt:        "Which vitamin does sunlight help produce?",
			Options:       []string{"Vitamin A", "Vitamin D", "Vitamin C", "Vitamin K"},
			CorrectOption: 1,
			Seq:           1,
		},
	}
}
