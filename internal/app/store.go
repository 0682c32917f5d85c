package app

import (
	"context"

	"quizlive/internal/domain"
)

// Store is the persistence collaborator for sessions, participants and
// adaptive progress. Implementations live under internal/infra; the service
// never manages transactions beyond read-compute-write, except RecordServe
// which implementations must apply atomically.
type Store interface {
	CreateSession(ctx context.Context, session domain.LiveSession) error
	SessionByID(ctx context.Context, liveID string) (domain.LiveSession, error)
	SessionByCode(ctx context.Context, code string) (domain.LiveSession, error)
	UpdateSessionStatus(ctx context.Context, liveID string, status domain.SessionStatus) error
	LockSession(ctx context.Context, liveID string) error

	AddParticipant(ctx context.Context, liveID string, participant domain.Participant) error
	Roster(ctx context.Context, liveID string) ([]domain.Participant, error)

	Progress(ctx context.Context, participantID, liveID string) (domain.Progress, error)
	UpsertProgress(ctx context.Context, progress domain.Progress) error

	// RecordServe appends the served record and writes the bumped progress
	// row together or not at all.
	RecordServe(ctx context.Context, served domain.ServedQuestion, progress domain.Progress) error
	ServedHashes(ctx context.Context, participantID string) ([]string, error)
	LatestServed(ctx context.Context, participantID string) (domain.ServedQuestion, error)

	AppendAnswer(ctx context.Context, answer domain.Answer) error
	Answers(ctx context.Context, liveID, participantID string) ([]domain.Answer, error)

	OverlayQuestions(ctx context.Context, liveID string, level domain.Level) ([]domain.Question, error)
	AddOverlayQuestions(ctx context.Context, liveID string, questions []domain.Question) error

	// ResetParticipant clears the served history and restarts progress for
	// one participant (maintenance path; answers are kept).
	ResetParticipant(ctx context.Context, participantID, liveID string) error
}
