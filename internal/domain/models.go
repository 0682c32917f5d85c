package domain

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Level is the difficulty tier of a question, ordered base < medio < avanzato.
type Level string

const (
	LevelBase     Level = "base"
	LevelMedio    Level = "medio"
	LevelAvanzato Level = "avanzato"
)

// Valid reports whether l is one of the known tiers.
func (l Level) Valid() bool {
	switch l {
	case LevelBase, LevelMedio, LevelAvanzato:
		return true
	}
	return false
}

// Promote returns the next tier up. Avanzato has no tier above it.
func (l Level) Promote() Level {
	switch l {
	case LevelBase:
		return LevelMedio
	case LevelMedio:
		return LevelAvanzato
	}
	return l
}

// SessionStatus is the lifecycle state of a live session.
type SessionStatus string

const (
	StatusLobby   SessionStatus = "lobby"
	StatusRunning SessionStatus = "running"
	StatusPaused  SessionStatus = "paused"
	StatusEnded   SessionStatus = "ended"
)

// CanTransition reports whether the lifecycle allows moving to next:
// lobby -> running -> paused -> running -> ended, with running -> ended
// also allowed. Nothing leaves ended.
func (s SessionStatus) CanTransition(next SessionStatus) bool {
	switch s {
	case StatusLobby:
		return next == StatusRunning
	case StatusRunning:
		return next == StatusPaused || next == StatusEnded
	case StatusPaused:
		return next == StatusRunning || next == StatusEnded
	}
	return false
}

// Question is an immutable catalog item. AnswerIndex is kept for server-side
// grading and must be stripped before the question crosses the wire.
type Question struct {
	Topic           string   `json:"topic"`
	Level           Level    `json:"level"`
	Difficulty      int      `json:"difficulty"`
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	AnswerIndex     int      `json:"answer_index"`
	ExplainBrief    string   `json:"explain_brief"`
	ExplainDetailed string   `json:"explain_detailed"`
	SourceRefs      []string `json:"source_refs"`
}

// Hash is the dedup identity of a question: a digest of the question text
// and options only, so cosmetic edits to explanations or refs do not create
// false uniqueness. Pure function of content, stable across restarts.
func (q Question) Hash() string {
	h := md5.New()
	h.Write([]byte(q.Question))
	for _, opt := range q.Options {
		h.Write([]byte{0})
		h.Write([]byte(opt))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// PublicQuestion is the redacted view delivered to participants: the same
// record minus the correct-answer index.
type PublicQuestion struct {
	Topic           string   `json:"topic"`
	Level           Level    `json:"level"`
	Difficulty      int      `json:"difficulty"`
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	ExplainBrief    string   `json:"explain_brief"`
	ExplainDetailed string   `json:"explain_detailed"`
	SourceRefs      []string `json:"source_refs"`
}

// Public strips the correct-answer index for transmission.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		Topic:           q.Topic,
		Level:           q.Level,
		Difficulty:      q.Difficulty,
		Question:        q.Question,
		Options:         q.Options,
		ExplainBrief:    q.ExplainBrief,
		ExplainDetailed: q.ExplainDetailed,
		SourceRefs:      q.SourceRefs,
	}
}

// LiveSession is one teacher-driven quiz run.
type LiveSession struct {
	LiveID    string        `json:"live_id"`
	Code      string        `json:"code"`
	Title     string        `json:"title,omitempty"`
	Status    SessionStatus `json:"status"`
	Locked    bool          `json:"locked"`
	CreatedAt time.Time     `json:"created_at"`
}

// Participant identifies one joined attendee.
type Participant struct {
	ParticipantID string    `json:"participant_id"`
	Nome          string    `json:"nome"`
	Cognome       string    `json:"cognome"`
	Email         string    `json:"email,omitempty"`
	Corso         string    `json:"corso,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Progress is the adaptive state of one participant within one session.
// Topic is sticky once first assigned; empty means not yet assigned.
type Progress struct {
	ParticipantID string `json:"participant_id"`
	LiveID        string `json:"live_id"`
	Level         Level  `json:"current_level"`
	Theta         int    `json:"theta"`
	Topic         string `json:"topic,omitempty"`
	CorrectStreak int    `json:"correct_streak"`
	TotalServed   int    `json:"total_served"`
}

// NewProgress returns the starting state for a freshly joined participant.
func NewProgress(participantID, liveID string) Progress {
	return Progress{
		ParticipantID: participantID,
		LiveID:        liveID,
		Level:         LevelBase,
		Theta:         20,
	}
}

// ServedQuestion is the append-only record of a question shown to a
// participant: (participant, hash) plus the full payload captured at serve
// time for later grading.
type ServedQuestion struct {
	ParticipantID string   `json:"participant_id"`
	QuestionHash  string   `json:"question_hash"`
	Question      Question `json:"question"`
}

// Answer records one graded submission.
type Answer struct {
	ID            int64     `json:"id"`
	LiveID        string    `json:"live_id"`
	ParticipantID string    `json:"participant_id"`
	QuestionHash  string    `json:"question_hash"`
	AnswerIndex   int       `json:"answer_index"`
	Correct       bool      `json:"correct"`
	ElapsedMs     int       `json:"elapsed_ms"`
	CreatedAt     time.Time `json:"created_at"`
}

// NextAction tells the participant client what to do after a submission.
type NextAction string

const (
	ActionContinue            NextAction = "continue"
	ActionExplanationRequired NextAction = "explanation_required"
	ActionFinished            NextAction = "finished"
)

// ParticipantStatus is the dashboard view of one participant.
type ParticipantStatus struct {
	ParticipantID     string  `json:"participant_id"`
	Nome              string  `json:"nome"`
	Cognome           string  `json:"cognome"`
	Level             Level   `json:"current_level"`
	Theta             int     `json:"theta"`
	TotalServed       int     `json:"total_served"`
	CorrectPercentage float64 `json:"correct_percentage"`
	Topic             string  `json:"topic,omitempty"`
}

// ReportEntry is one row of the end-of-session report.
type ReportEntry struct {
	ParticipantID  string  `json:"participant_id"`
	Nome           string  `json:"nome"`
	Cognome        string  `json:"cognome"`
	TotalQuestions int     `json:"total_questions"`
	CorrectAnswers int     `json:"correct_answers"`
	Percentage     float64 `json:"percentage"`
	FinalLevel     Level   `json:"final_level"`
	FinalTheta     int     `json:"final_theta"`
}
