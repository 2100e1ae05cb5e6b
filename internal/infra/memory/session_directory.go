package memory

import (
	"context"
	"sync"
	"time"

	"quiz-runner-service/internal/domain"
)

// SessionDirectory resolves administered sessions from an in-memory map.
type SessionDirectory struct {
	mu       sync.RWMutex
	sessions map[string]domain.SessionInfo
}

func NewSessionDirectory(sessions map[string]domain.SessionInfo) *SessionDirectory {
	if sessions == nil {
		sessions = make(map[string]domain.SessionInfo)
	}
	return &SessionDirectory{sessions: sessions}
}

func (d *SessionDirectory) GetSession(_ context.Context, sessionID string) (domain.SessionInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if info, ok := d.sessions[sessionID]; ok {
		return info, nil
	}
	return domain.SessionInfo{}, domain.ErrSessionNotFound
}

// Put registers a session, for demos and tests.
func (d *SessionDirectory) Put(info domain.SessionInfo) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sessions[info.ID] = info
}

// StudentStore keeps join records in memory, keyed by session and email.
// Repeat joins refresh the record.
type StudentStore struct {
	mu       sync.RWMutex
	clock    func() time.Time
	students map[studentKey]domain.StudentRecord
}

type studentKey struct {
	sessionID string
	email     string
}

func NewStudentStore() *StudentStore {
	return &StudentStore{
		clock:    time.Now,
		students: make(map[studentKey]domain.StudentRecord),
	}
}

func (s *StudentStore) RegisterStudent(_ context.Context, sessionID string, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.students[studentKey{sessionID: sessionID, email: participant.Email}] = domain.StudentRecord{
		Participant: participant,
		JoinedAt:    s.clock(),
	}
	return nil
}

// Get returns a participant's join record, if any.
func (s *StudentStore) Get(sessionID, email string) (domain.StudentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.students[studentKey{sessionID: sessionID, email: email}]
	return record, ok
}
