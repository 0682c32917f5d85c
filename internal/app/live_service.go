package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizlive/internal/catalog"
	"quizlive/internal/domain"
	"quizlive/internal/ws"
)

const roundTimerSeconds = 30

const wrongAnswerExplanation = "Risposta errata. Leggi la spiegazione dettagliata prima di continuare."

// Broadcaster is the push-channel collaborator. *ws.Hub satisfies it.
type Broadcaster interface {
	SendToParticipant(participantID string, msg ws.Message)
	SendToTeacher(liveID string, msg ws.Message)
	BroadcastToSession(liveID string, msg ws.Message, sessionCode string)
}

// JoinRequest carries the attendee details for joining a session.
type JoinRequest struct {
	Nome    string `json:"nome"`
	Cognome string `json:"cognome"`
	Email   string `json:"email,omitempty"`
	Corso   string `json:"corso,omitempty"`
}

// AnswerSubmission is one graded attempt against the latest served question.
type AnswerSubmission struct {
	ParticipantID string `json:"participant_id"`
	SessionCode   string `json:"session_code"`
	AnswerIndex   int    `json:"answer_index"`
	ElapsedMs     int    `json:"elapsed_ms"`
}

// AnswerResult is the immediate adaptive decision returned to the caller.
type AnswerResult struct {
	Correct     bool              `json:"correct"`
	NextAction  domain.NextAction `json:"next_action"`
	Explanation string            `json:"explanation,omitempty"`
	TotalServed int               `json:"total_served"`
	Level       domain.Level      `json:"current_level"`
	Theta       int               `json:"theta"`
}

// CatalogPersister is an optional sink that keeps imported catalog
// questions across restarts.
type CatalogPersister interface {
	SaveQuestions(ctx context.Context, questions []domain.Question) error
}

// LiveService drives session lifecycle, adaptive serving and fan-out.
type LiveService struct {
	store     Store
	catalog   *catalog.Catalog
	selector  *catalog.Selector
	hub       Broadcaster
	persister CatalogPersister
	countdown time.Duration
	now       func() time.Time

	codeMu  sync.Mutex
	codeRnd *rand.Rand

	// Answer submissions and serves read-modify-write the progress row;
	// serialize them per participant to keep total_served monotonic.
	participantLocks sync.Map // participant id -> *sync.Mutex
}

// NewLiveService wires the orchestrator. countdown is the delay between the
// live.start broadcast and the first question push (5s in production, 0 in
// tests).
func NewLiveService(store Store, cat *catalog.Catalog, sel *catalog.Selector, hub Broadcaster, countdown time.Duration) *LiveService {
	return &LiveService{
		store:     store,
		catalog:   cat,
		selector:  sel,
		hub:       hub,
		countdown: countdown,
		now:       time.Now,
		codeRnd:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetCatalogPersister makes imported questions durable; without one they
// live only in memory.
func (s *LiveService) SetCatalogPersister(p CatalogPersister) {
	s.persister = p
}

func (s *LiveService) lockParticipant(participantID string) func() {
	v, _ := s.participantLocks.LoadOrStore(participantID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// CreateSession creates a lobby-state session with a unique 6-digit code.
func (s *LiveService) CreateSession(ctx context.Context, title string) (domain.LiveSession, error) {
	code, err := s.uniqueCode(ctx)
	if err != nil {
		return domain.LiveSession{}, err
	}
	session := domain.LiveSession{
		LiveID:    uuid.NewString(),
		Code:      code,
		Title:     title,
		Status:    domain.StatusLobby,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return domain.LiveSession{}, err
	}
	return session, nil
}

func (s *LiveService) uniqueCode(ctx context.Context) (string, error) {
	for {
		s.codeMu.Lock()
		code := fmt.Sprintf("%06d", s.codeRnd.Intn(1000000))
		s.codeMu.Unlock()
		_, err := s.store.SessionByCode(ctx, code)
		if errors.Is(err, domain.ErrSessionNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
}

// SessionDetails returns the session record, including its join code.
func (s *LiveService) SessionDetails(ctx context.Context, liveID string) (domain.LiveSession, error) {
	return s.store.SessionByID(ctx, liveID)
}

// Join registers a new participant in the lobby and pushes the refreshed
// roster to the dashboard.
func (s *LiveService) Join(ctx context.Context, code string, req JoinRequest) (domain.Participant, error) {
	session, err := s.store.SessionByCode(ctx, code)
	if err != nil {
		return domain.Participant{}, err
	}
	if session.Locked {
		return domain.Participant{}, domain.ErrSessionLocked
	}
	if session.Status != domain.StatusLobby && session.Status != domain.StatusRunning {
		return domain.Participant{}, domain.ErrSessionClosed
	}

	participant := domain.Participant{
		ParticipantID: uuid.NewString(),
		Nome:          req.Nome,
		Cognome:       req.Cognome,
		Email:         req.Email,
		Corso:         req.Corso,
		CreatedAt:     s.now(),
	}
	if err := s.store.AddParticipant(ctx, session.LiveID, participant); err != nil {
		return domain.Participant{}, err
	}
	if err := s.store.UpsertProgress(ctx, domain.NewProgress(participant.ParticipantID, session.LiveID)); err != nil {
		return domain.Participant{}, err
	}

	roster, err := s.store.Roster(ctx, session.LiveID)
	if err != nil {
		return domain.Participant{}, err
	}
	s.hub.BroadcastToSession(session.LiveID, lobbyUpdate(roster), session.Code)

	return participant, nil
}

// Lock prevents further joins.
func (s *LiveService) Lock(ctx context.Context, liveID string) error {
	if _, err := s.store.SessionByID(ctx, liveID); err != nil {
		return err
	}
	return s.store.LockSession(ctx, liveID)
}

// Start moves the session to running, broadcasts the countdown, and
// schedules the first-question push. The scheduled job fires after the
// countdown no matter what happens to the session in between; it carries no
// delivery guarantee and reports failures only in logs.
func (s *LiveService) Start(ctx context.Context, liveID string) error {
	session, err := s.store.SessionByID(ctx, liveID)
	if err != nil {
		return err
	}
	if s.catalog.Empty() {
		return domain.ErrEmptyCatalog
	}
	if !session.Status.CanTransition(domain.StatusRunning) {
		return domain.ErrInvalidTransition
	}
	if err := s.store.UpdateSessionStatus(ctx, liveID, domain.StatusRunning); err != nil {
		return err
	}

	s.hub.BroadcastToSession(liveID, ws.Message{
		"type":      "live.start",
		"countdown": int(s.countdown / time.Second),
	}, session.Code)

	go s.serveAfterCountdown(liveID)
	return nil
}

func (s *LiveService) serveAfterCountdown(liveID string) {
	time.Sleep(s.countdown)

	ctx := context.Background()
	roster, err := s.store.Roster(ctx, liveID)
	if err != nil {
		log.Printf("countdown serve for session %s: roster: %v", liveID, err)
		return
	}
	for _, participant := range roster {
		question, progress, err := s.serveNext(ctx, participant.ParticipantID, liveID)
		if err != nil {
			if !errors.Is(err, domain.ErrCapacityReached) && !errors.Is(err, domain.ErrNoQuestion) {
				log.Printf("countdown serve for participant %s: %v", participant.ParticipantID, err)
			}
			continue
		}
		s.hub.SendToParticipant(participant.ParticipantID, roundStart(question, progress.TotalServed))
	}
}

// serveNext runs one atomic "serve a question" operation: cap check, served
// history, overlay fetch, selection, then served-record and progress written
// together. Returns the full question (grading copy).
func (s *LiveService) serveNext(ctx context.Context, participantID, liveID string) (domain.Question, domain.Progress, error) {
	unlock := s.lockParticipant(participantID)
	defer unlock()

	progress, err := s.store.Progress(ctx, participantID, liveID)
	if err != nil {
		return domain.Question{}, domain.Progress{}, err
	}
	if progress.TotalServed >= MaxServed {
		return domain.Question{}, domain.Progress{}, domain.ErrCapacityReached
	}

	hashes, err := s.store.ServedHashes(ctx, participantID)
	if err != nil {
		return domain.Question{}, domain.Progress{}, err
	}
	served := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		served[h] = struct{}{}
	}

	overlay, err := s.store.OverlayQuestions(ctx, liveID, progress.Level)
	if err != nil {
		return domain.Question{}, domain.Progress{}, err
	}

	question, ok := s.selector.Next(progress.Level, progress.Topic, served, overlay)
	if !ok {
		return domain.Question{}, domain.Progress{}, domain.ErrNoQuestion
	}

	progress.TotalServed++
	if progress.Topic == "" {
		progress.Topic = question.Topic
	}
	record := domain.ServedQuestion{
		ParticipantID: participantID,
		QuestionHash:  question.Hash(),
		Question:      question,
	}
	if err := s.store.RecordServe(ctx, record, progress); err != nil {
		return domain.Question{}, domain.Progress{}, err
	}
	return question, progress, nil
}

// NextQuestion serves the next adaptive question on explicit request.
func (s *LiveService) NextQuestion(ctx context.Context, participantID, sessionCode string) (domain.Question, domain.Progress, error) {
	session, err := s.store.SessionByCode(ctx, sessionCode)
	if err != nil {
		return domain.Question{}, domain.Progress{}, err
	}
	return s.serveNext(ctx, participantID, session.LiveID)
}

// SubmitAnswer grades a submission against the participant's latest served
// question, applies the adaptive transition, and returns the decision. It
// never triggers fan-out by itself.
func (s *LiveService) SubmitAnswer(ctx context.Context, sub AnswerSubmission) (AnswerResult, error) {
	session, err := s.store.SessionByCode(ctx, sub.SessionCode)
	if err != nil {
		return AnswerResult{}, err
	}

	unlock := s.lockParticipant(sub.ParticipantID)
	defer unlock()

	progress, err := s.store.Progress(ctx, sub.ParticipantID, session.LiveID)
	if err != nil {
		return AnswerResult{}, err
	}
	served, err := s.store.LatestServed(ctx, sub.ParticipantID)
	if err != nil {
		return AnswerResult{}, err
	}

	correct := sub.AnswerIndex == served.Question.AnswerIndex
	if err := s.store.AppendAnswer(ctx, domain.Answer{
		LiveID:        session.LiveID,
		ParticipantID: sub.ParticipantID,
		QuestionHash:  served.QuestionHash,
		AnswerIndex:   sub.AnswerIndex,
		Correct:       correct,
		ElapsedMs:     sub.ElapsedMs,
		CreatedAt:     s.now(),
	}); err != nil {
		return AnswerResult{}, err
	}

	progress.Level, progress.Theta, progress.CorrectStreak = ApplyAnswer(progress.Level, progress.Theta, progress.CorrectStreak, correct)
	if err := s.store.UpsertProgress(ctx, progress); err != nil {
		return AnswerResult{}, err
	}

	result := AnswerResult{
		Correct:     correct,
		NextAction:  Decide(progress.TotalServed, correct),
		TotalServed: progress.TotalServed,
		Level:       progress.Level,
		Theta:       progress.Theta,
	}
	if !correct {
		result.Explanation = wrongAnswerExplanation
	}
	return result, nil
}

// Pause suspends a running session and notifies everyone.
func (s *LiveService) Pause(ctx context.Context, liveID string) error {
	return s.transition(ctx, liveID, domain.StatusPaused, "live.pause", nil)
}

// Resume puts a paused session back in running state.
func (s *LiveService) Resume(ctx context.Context, liveID string) error {
	return s.transition(ctx, liveID, domain.StatusRunning, "live.resume", nil)
}

func (s *LiveService) transition(ctx context.Context, liveID string, next domain.SessionStatus, event string, extra ws.Message) error {
	session, err := s.store.SessionByID(ctx, liveID)
	if err != nil {
		return err
	}
	if !session.Status.CanTransition(next) {
		return domain.ErrInvalidTransition
	}
	if err := s.store.UpdateSessionStatus(ctx, liveID, next); err != nil {
		return err
	}
	msg := ws.Message{"type": event}
	for k, v := range extra {
		msg[k] = v
	}
	s.hub.BroadcastToSession(liveID, msg, session.Code)
	return nil
}

// End closes the session, builds the final report and broadcasts it.
func (s *LiveService) End(ctx context.Context, liveID string) ([]domain.ReportEntry, error) {
	report, err := s.buildReport(ctx, liveID)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, liveID, domain.StatusEnded, "live.end", ws.Message{"report": report}); err != nil {
		return nil, err
	}
	return report, nil
}

func (s *LiveService) buildReport(ctx context.Context, liveID string) ([]domain.ReportEntry, error) {
	roster, err := s.store.Roster(ctx, liveID)
	if err != nil {
		return nil, err
	}
	report := make([]domain.ReportEntry, 0, len(roster))
	for _, participant := range roster {
		total, correct, err := s.answerTally(ctx, liveID, participant.ParticipantID)
		if err != nil {
			return nil, err
		}
		entry := domain.ReportEntry{
			ParticipantID:  participant.ParticipantID,
			Nome:           participant.Nome,
			Cognome:        participant.Cognome,
			TotalQuestions: total,
			CorrectAnswers: correct,
			Percentage:     percentage(correct, total),
			FinalLevel:     domain.LevelBase,
			FinalTheta:     20,
		}
		if progress, err := s.store.Progress(ctx, participant.ParticipantID, liveID); err == nil {
			entry.FinalLevel = progress.Level
			entry.FinalTheta = progress.Theta
		}
		report = append(report, entry)
	}
	return report, nil
}

// ParticipantsStatus returns the dashboard status list.
func (s *LiveService) ParticipantsStatus(ctx context.Context, liveID string) ([]domain.ParticipantStatus, error) {
	roster, err := s.store.Roster(ctx, liveID)
	if err != nil {
		return nil, err
	}
	statuses := make([]domain.ParticipantStatus, 0, len(roster))
	for _, participant := range roster {
		total, correct, err := s.answerTally(ctx, liveID, participant.ParticipantID)
		if err != nil {
			return nil, err
		}
		status := domain.ParticipantStatus{
			ParticipantID:     participant.ParticipantID,
			Nome:              participant.Nome,
			Cognome:           participant.Cognome,
			Level:             domain.LevelBase,
			Theta:             20,
			CorrectPercentage: percentage(correct, total),
		}
		if progress, err := s.store.Progress(ctx, participant.ParticipantID, liveID); err == nil {
			status.Level = progress.Level
			status.Theta = progress.Theta
			status.TotalServed = progress.TotalServed
			status.Topic = progress.Topic
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func (s *LiveService) answerTally(ctx context.Context, liveID, participantID string) (total, correct int, err error) {
	answers, err := s.store.Answers(ctx, liveID, participantID)
	if err != nil {
		return 0, 0, err
	}
	for _, a := range answers {
		total++
		if a.Correct {
			correct++
		}
	}
	return total, correct, nil
}

// ImportQuestions ingests an already-structured question batch into the
// global catalog and returns how many survived dedup.
func (s *LiveService) ImportQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	for _, q := range questions {
		if !q.Level.Valid() {
			return 0, fmt.Errorf("question %q: unknown level %q", q.Question, q.Level)
		}
	}
	added := s.catalog.PutAll(questions)
	if s.persister != nil {
		if err := s.persister.SaveQuestions(ctx, questions); err != nil {
			return added, fmt.Errorf("persist catalog: %w", err)
		}
	}
	return added, nil
}

// AddSessionQuestions attaches an overlay question set to one session; for
// the levels it covers it takes priority over the global catalog.
func (s *LiveService) AddSessionQuestions(ctx context.Context, liveID string, questions []domain.Question) error {
	if _, err := s.store.SessionByID(ctx, liveID); err != nil {
		return err
	}
	for _, q := range questions {
		if !q.Level.Valid() {
			return fmt.Errorf("question %q: unknown level %q", q.Question, q.Level)
		}
	}
	return s.store.AddOverlayQuestions(ctx, liveID, questions)
}

// ResetParticipant clears a participant's served history and restarts their
// progress for the session.
func (s *LiveService) ResetParticipant(ctx context.Context, participantID, liveID string) error {
	unlock := s.lockParticipant(participantID)
	defer unlock()
	return s.store.ResetParticipant(ctx, participantID, liveID)
}

func lobbyUpdate(roster []domain.Participant) ws.Message {
	participants := make([]map[string]string, 0, len(roster))
	for _, p := range roster {
		participants = append(participants, map[string]string{
			"participant_id": p.ParticipantID,
			"nome":           p.Nome,
			"cognome":        p.Cognome,
		})
	}
	return ws.Message{"type": "lobby.update", "participants": participants}
}

// roundStart builds the per-participant question push. The correct-answer
// index is stripped here, at the fan-out boundary.
func roundStart(question domain.Question, questionNumber int) ws.Message {
	return ws.Message{
		"type":            "round.start",
		"question":        question.Public(),
		"timer":           roundTimerSeconds,
		"question_number": questionNumber,
	}
}

// percentage is rounded to one decimal, the precision the dashboard shows.
func percentage(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*1000) / 10
}
