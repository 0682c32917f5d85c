// Package memory holds the in-process Store used by tests and by
// deployments without Postgres.
package memory

import (
	"context"
	"sync"

	"quizlive/internal/domain"
)

type progressKey struct {
	participantID string
	liveID        string
}

// Store is a mutex-guarded in-memory implementation of app.Store. One lock
// covers every map, which also makes RecordServe trivially atomic.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]domain.LiveSession // live id -> session
	codes        map[string]string             // code -> live id
	roster       map[string][]domain.Participant
	participants map[string]domain.Participant
	progress     map[progressKey]domain.Progress
	served       map[string][]domain.ServedQuestion // participant id -> append order
	answers      []domain.Answer
	overlays     map[string][]domain.Question // live id -> overlay questions
	nextAnswerID int64
}

func NewStore() *Store {
	return &Store{
		sessions:     make(map[string]domain.LiveSession),
		codes:        make(map[string]string),
		roster:       make(map[string][]domain.Participant),
		participants: make(map[string]domain.Participant),
		progress:     make(map[progressKey]domain.Progress),
		served:       make(map[string][]domain.ServedQuestion),
		overlays:     make(map[string][]domain.Question),
	}
}

func (s *Store) CreateSession(_ context.Context, session domain.LiveSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.LiveID] = session
	s.codes[session.Code] = session.LiveID
	return nil
}

func (s *Store) SessionByID(_ context.Context, liveID string) (domain.LiveSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[liveID]
	if !ok {
		return domain.LiveSession{}, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *Store) SessionByCode(_ context.Context, code string) (domain.LiveSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	liveID, ok := s.codes[code]
	if !ok {
		return domain.LiveSession{}, domain.ErrSessionNotFound
	}
	return s.sessions[liveID], nil
}

func (s *Store) UpdateSessionStatus(_ context.Context, liveID string, status domain.SessionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[liveID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Status = status
	s.sessions[liveID] = session
	return nil
}

func (s *Store) LockSession(_ context.Context, liveID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[liveID]
	if !ok {
		return domain.ErrSessionNotFound
	}
	session.Locked = true
	s.sessions[liveID] = session
	return nil
}

func (s *Store) AddParticipant(_ context.Context, liveID string, participant domain.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[liveID]; !ok {
		return domain.ErrSessionNotFound
	}
	s.participants[participant.ParticipantID] = participant
	s.roster[liveID] = append(s.roster[liveID], participant)
	return nil
}

func (s *Store) Roster(_ context.Context, liveID string) ([]domain.Participant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	roster := s.roster[liveID]
	out := make([]domain.Participant, len(roster))
	copy(out, roster)
	return out, nil
}

func (s *Store) Progress(_ context.Context, participantID, liveID string) (domain.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	progress, ok := s.progress[progressKey{participantID, liveID}]
	if !ok {
		return domain.Progress{}, domain.ErrProgressNotFound
	}
	return progress, nil
}

func (s *Store) UpsertProgress(_ context.Context, progress domain.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progress[progressKey{progress.ParticipantID, progress.LiveID}] = progress
	return nil
}

func (s *Store) RecordServe(_ context.Context, served domain.ServedQuestion, progress domain.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.served[served.ParticipantID] = append(s.served[served.ParticipantID], served)
	s.progress[progressKey{progress.ParticipantID, progress.LiveID}] = progress
	return nil
}

func (s *Store) ServedHashes(_ context.Context, participantID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.served[participantID]
	hashes := make([]string, 0, len(records))
	for _, r := range records {
		hashes = append(hashes, r.QuestionHash)
	}
	return hashes, nil
}

func (s *Store) LatestServed(_ context.Context, participantID string) (domain.ServedQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.served[participantID]
	if len(records) == 0 {
		return domain.ServedQuestion{}, domain.ErrNothingServed
	}
	return records[len(records)-1], nil
}

func (s *Store) AppendAnswer(_ context.Context, answer domain.Answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextAnswerID++
	answer.ID = s.nextAnswerID
	s.answers = append(s.answers, answer)
	return nil
}

func (s *Store) Answers(_ context.Context, liveID, participantID string) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Answer
	for _, a := range s.answers {
		if a.LiveID == liveID && a.ParticipantID == participantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) OverlayQuestions(_ context.Context, liveID string, level domain.Level) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Question
	for _, q := range s.overlays[liveID] {
		if q.Level == level {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *Store) AddOverlayQuestions(_ context.Context, liveID string, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays[liveID] = append(s.overlays[liveID], questions...)
	return nil
}

func (s *Store) ResetParticipant(_ context.Context, participantID, liveID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.served, participantID)
	s.progress[progressKey{participantID, liveID}] = domain.NewProgress(participantID, liveID)
	return nil
}
