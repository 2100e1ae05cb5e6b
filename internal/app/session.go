package app

import (
	"fmt"
	"math"
	"time"

	"quiz-runner-service/internal/domain"
)

// Session is one participant's in-progress run through a question catalog.
// It holds a snapshot of the questions taken at load time, the current
// question pointer, and the answers collected so far. A session belongs to
// exactly one caller (one connection, one attempt) and is not safe for
// concurrent use; all transitions are synchronous.
type Session struct {
	contentID string
	questions []domain.Question
	index     int
	answers   map[int]int
	finished  bool
	startedAt time.Time
	now       func() time.Time
}

// NewSession starts a run over the given question snapshot at index 0 with
// no answers recorded. The snapshot must be non-empty; an empty catalog is
// surfaced as ErrCatalogUnavailable before any session is constructed.
func NewSession(contentID string, questions []domain.Question) (*Session, error) {
	return newSessionWithClock(contentID, questions, time.Now)
}

// newSessionWithClock allows deterministic timestamps in tests.
func newSessionWithClock(contentID string, questions []domain.Question, now func() time.Time) (*Session, error) {
	if len(questions) == 0 {
		return nil, domain.ErrCatalogUnavailable
	}
	snapshot := make([]domain.Question, len(questions))
	copy(snapshot, questions)
	return &Session{
		contentID: contentID,
		questions: snapshot,
		answers:   make(map[int]int),
		startedAt: now(),
		now:       now,
	}, nil
}

// ContentID names the catalog this session was started from.
func (s *Session) ContentID() string { return s.contentID }

// Len is the number of questions in the session snapshot. Later catalog
// edits never change it.
func (s *Session) Len() int { return len(s.questions) }

// Index is the current question pointer. Only meaningful while active.
func (s *Session) Index() int { return s.index }

// Finished reports whether the session has advanced past its last question.
func (s *Session) Finished() bool { return s.finished }

// StartedAt is when the session was constructed.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Current returns the question at the current pointer.
func (s *Session) Current() domain.Question { return s.questions[s.index] }

// Question returns the question at index i.
func (s *Session) Question(i int) (domain.Question, error) {
	if i < 0 || i >= len(s.questions) {
		return domain.Question{}, fmt.Errorf("question %d: %w", i, domain.ErrAnswerOutOfRange)
	}
	return s.questions[i], nil
}

// Answer reports the recorded option for question index i, if any.
func (s *Session) Answer(i int) (int, bool) {
	selected, ok := s.answers[i]
	return selected, ok
}

// SelectAnswer records (or overwrites) the choice for the question at index
// i. Answering a question other than the current one is allowed so callers
// can support revisits; answering after the session finished is a caller
// bug and fails with ErrInvalidTransition.
func (s *Session) SelectAnswer(i, option int) error {
	if s.finished {
		return fmt.Errorf("select answer: %w", domain.ErrInvalidTransition)
	}
	if i < 0 || i >= len(s.questions) {
		return fmt.Errorf("question %d: %w", i, domain.ErrAnswerOutOfRange)
	}
	if option < 0 || option >= len(s.questions[i].Options) {
		return fmt.Errorf("option %d: %w", option, domain.ErrAnswerOutOfRange)
	}
	s.answers[i] = option
	return nil
}

// Advance moves to the next question, or finishes the session when the
// current question is the last one. Advancing past the last question always
// finishes, answered or not; requiring an answer first is the caller's
// policy, not the engine's.
func (s *Session) Advance() error {
	if s.finished {
		return fmt.Errorf("advance: %w", domain.ErrInvalidTransition)
	}
	if s.index+1 < len(s.questions) {
		s.index++
		return nil
	}
	s.finished = true
	return nil
}

// ComputeResult scores the finished session. An unanswered question never
// counts as correct, whatever the correct option index is. The computation
// is a pure function of session state: calling it twice yields identical
// output.
func (s *Session) ComputeResult() (domain.Result, error) {
	if !s.finished {
		return domain.Result{}, fmt.Errorf("compute result: %w", domain.ErrInvalidTransition)
	}

	correct := 0
	answers := make(map[int]int, len(s.answers))
	for i, q := range s.questions {
		selected, ok := s.answers[i]
		if !ok {
			continue
		}
		answers[i] = selected
		if selected == q.CorrectOption {
			correct++
		}
	}

	total := len(s.questions)
	return domain.Result{
		Total:   total,
		Correct: correct,
		Wrong:   total - correct,
		Score:   int(math.Round(100 * float64(correct) / float64(total))),
		Answers: answers,
	}, nil
}
