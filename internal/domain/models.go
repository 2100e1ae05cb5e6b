package domain

import "time"

// OptionCount is the canonical number of options per question (letters A-D).
const OptionCount = 4

// MediaKind classifies an optional media attachment on a question.
type MediaKind string

const (
	MediaImage     MediaKind = "image"
	MediaVideo     MediaKind = "video"
	MediaAnimation MediaKind = "animation"
)

// MediaRef points at an externally hosted media asset shown with a question.
type MediaRef struct {
	URL  string    `json:"url"`
	Kind MediaKind `json:"kind"`
}

// Question is an immutable catalog entry. Loaders normalize every accepted
// source shape into this one before it reaches the engine: Options always
// holds OptionCount entries and CorrectOption indexes into it.
type Question struct {
	ID            string    `json:"id"`
	Prompt        string    `json:"prompt"`
	Options       []string  `json:"options"`
	CorrectOption int       `json:"correctOption"`
	Media         *MediaRef `json:"media,omitempty"`
	Seq           int64     `json:"seq"` // creation order, assigned by the store
}

// Participant identifies one quiz taker for the duration of an attempt.
// Email doubles as the result document key.
type Participant struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Result is the scored outcome of one completed attempt. Answers maps
// question index to the selected option index; unanswered questions have
// no entry.
type Result struct {
	Total   int         `json:"total"`
	Correct int         `json:"correct"`
	Wrong   int         `json:"wrong"`
	Score   int         `json:"score"`
	Answers map[int]int `json:"answers"`
	TakenAt time.Time   `json:"takenAt,omitempty"` // assigned by the store on write
}

// SessionInfo describes an administered quiz session that participants join
// via invite link. ContentID names the question catalog being administered.
type SessionInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ContentID  string    `json:"contentId"`
	InviteLink string    `json:"inviteLink"`
	CreatedAt  time.Time `json:"createdAt"`
}

// StudentRecord is the join record written when a participant enters a
// session, before the quiz itself starts.
type StudentRecord struct {
	Participant
	JoinedAt time.Time `json:"joinedAt"`
}
