package memory

import (
	"context"
	"sync"
	"time"

	"quiz-runner-service/internal/domain"
)

// ResultStore keeps result documents in memory, keyed by content and
// participant email. A repeat write for the same key overwrites the prior
// document, matching the upsert semantics of the real store.
type ResultStore struct {
	mu      sync.RWMutex
	clock   func() time.Time
	results map[resultKey]domain.Result
}

type resultKey struct {
	contentID string
	email     string
}

func NewResultStore() *ResultStore {
	return &ResultStore{
		clock:   time.Now,
		results: make(map[resultKey]domain.Result),
	}
}

func (s *ResultStore) SaveResult(_ context.Context, contentID string, participant domain.Participant, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result.TakenAt = s.clock()
	s.results[resultKey{contentID: contentID, email: participant.Email}] = result
	return nil
}

// Get returns the stored result for a participant, if any.
func (s *ResultStore) Get(contentID, email string) (domain.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[resultKey{contentID: contentID, email: email}]
	return result, ok
}
