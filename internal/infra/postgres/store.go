// Package postgres is the durable Store: sessions, participants, progress,
// served records, answers and session overlays in Postgres via bun.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"quizlive/internal/domain"
)

type sessionRow struct {
	bun.BaseModel `bun:"table:live_sessions"`

	LiveID    string    `bun:"live_id,pk"`
	Code      string    `bun:"code,notnull"`
	Title     string    `bun:"title"`
	Status    string    `bun:"status,notnull"`
	Locked    bool      `bun:"locked"`
	CreatedAt time.Time `bun:"created_at,nullzero"`
}

type participantRow struct {
	bun.BaseModel `bun:"table:participants"`

	ParticipantID string    `bun:"participant_id,pk"`
	LiveID        string    `bun:"live_id,notnull"`
	Nome          string    `bun:"nome,notnull"`
	Cognome       string    `bun:"cognome,notnull"`
	Email         string    `bun:"email"`
	Corso         string    `bun:"corso"`
	CreatedAt     time.Time `bun:"created_at,nullzero"`
}

type progressRow struct {
	bun.BaseModel `bun:"table:participant_progress"`

	ParticipantID string `bun:"participant_id,pk"`
	LiveID        string `bun:"live_id,pk"`
	CurrentLevel  string `bun:"current_level,notnull"`
	Theta         int    `bun:"theta"`
	Topic         string `bun:"topic"`
	CorrectStreak int    `bun:"correct_streak"`
	TotalServed   int    `bun:"total_served"`
}

type servedRow struct {
	bun.BaseModel `bun:"table:served_questions"`

	ID            int64           `bun:"id,pk,autoincrement"`
	ParticipantID string          `bun:"participant_id,notnull"`
	QuestionHash  string          `bun:"question_hash,notnull"`
	QuestionData  domain.Question `bun:"question_data,type:jsonb"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:live_answers"`

	ID            int64     `bun:"id,pk,autoincrement"`
	LiveID        string    `bun:"live_id,notnull"`
	ParticipantID string    `bun:"participant_id,notnull"`
	QuestionHash  string    `bun:"question_hash"`
	AnswerIndex   int       `bun:"answer_index"`
	Correct       bool      `bun:"correct"`
	ElapsedMs     int       `bun:"elapsed_ms"`
	CreatedAt     time.Time `bun:"created_at,nullzero"`
}

type overlayRow struct {
	bun.BaseModel `bun:"table:session_questions"`

	ID           int64           `bun:"id,pk,autoincrement"`
	LiveID       string          `bun:"live_id,notnull"`
	Level        string          `bun:"level,notnull"`
	Topic        string          `bun:"topic,notnull"`
	QuestionHash string          `bun:"question_hash,notnull"`
	QuestionData domain.Question `bun:"question_data,type:jsonb"`
}

// Store implements app.Store on top of bun.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSession(ctx context.Context, session domain.LiveSession) error {
	row := sessionRow{
		LiveID:    session.LiveID,
		Code:      session.Code,
		Title:     session.Title,
		Status:    string(session.Status),
		Locked:    session.Locked,
		CreatedAt: session.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (s *Store) SessionByID(ctx context.Context, liveID string) (domain.LiveSession, error) {
	var row sessionRow
	err := s.db.NewSelect().Model(&row).Where("live_id = ?", liveID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LiveSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.LiveSession{}, fmt.Errorf("session by id: %w", err)
	}
	return sessionFromRow(row), nil
}

func (s *Store) SessionByCode(ctx context.Context, code string) (domain.LiveSession, error) {
	var row sessionRow
	err := s.db.NewSelect().Model(&row).Where("code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.LiveSession{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.LiveSession{}, fmt.Errorf("session by code: %w", err)
	}
	return sessionFromRow(row), nil
}

func (s *Store) UpdateSessionStatus(ctx context.Context, liveID string, status domain.SessionStatus) error {
	res, err := s.db.NewUpdate().Model((*sessionRow)(nil)).
		Set("status = ?", string(status)).
		Where("live_id = ?", liveID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return requireAffected(res, domain.ErrSessionNotFound)
}

func (s *Store) LockSession(ctx context.Context, liveID string) error {
	res, err := s.db.NewUpdate().Model((*sessionRow)(nil)).
		Set("locked = TRUE").
		Where("live_id = ?", liveID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("lock session: %w", err)
	}
	return requireAffected(res, domain.ErrSessionNotFound)
}

func (s *Store) AddParticipant(ctx context.Context, liveID string, participant domain.Participant) error {
	row := participantRow{
		ParticipantID: participant.ParticipantID,
		LiveID:        liveID,
		Nome:          participant.Nome,
		Cognome:       participant.Cognome,
		Email:         participant.Email,
		Corso:         participant.Corso,
		CreatedAt:     participant.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("add participant: %w", err)
	}
	return nil
}

func (s *Store) Roster(ctx context.Context, liveID string) ([]domain.Participant, error) {
	var rows []participantRow
	err := s.db.NewSelect().Model(&rows).
		Where("live_id = ?", liveID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("roster: %w", err)
	}
	roster := make([]domain.Participant, 0, len(rows))
	for _, row := range rows {
		roster = append(roster, domain.Participant{
			ParticipantID: row.ParticipantID,
			Nome:          row.Nome,
			Cognome:       row.Cognome,
			Email:         row.Email,
			Corso:         row.Corso,
			CreatedAt:     row.CreatedAt,
		})
	}
	return roster, nil
}

func (s *Store) Progress(ctx context.Context, participantID, liveID string) (domain.Progress, error) {
	var row progressRow
	err := s.db.NewSelect().Model(&row).
		Where("participant_id = ?", participantID).
		Where("live_id = ?", liveID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Progress{}, domain.ErrProgressNotFound
	}
	if err != nil {
		return domain.Progress{}, fmt.Errorf("progress: %w", err)
	}
	return progressFromRow(row), nil
}

func (s *Store) UpsertProgress(ctx context.Context, progress domain.Progress) error {
	return s.upsertProgress(ctx, s.db, progress)
}

func (s *Store) upsertProgress(ctx context.Context, db bun.IDB, progress domain.Progress) error {
	row := progressRowFrom(progress)
	_, err := db.NewInsert().Model(&row).
		On("CONFLICT (participant_id, live_id) DO UPDATE").
		Set("current_level = EXCLUDED.current_level").
		Set("theta = EXCLUDED.theta").
		Set("topic = EXCLUDED.topic").
		Set("correct_streak = EXCLUDED.correct_streak").
		Set("total_served = EXCLUDED.total_served").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *Store) RecordServe(ctx context.Context, served domain.ServedQuestion, progress domain.Progress) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := servedRow{
			ParticipantID: served.ParticipantID,
			QuestionHash:  served.QuestionHash,
			QuestionData:  served.Question,
		}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("append served: %w", err)
		}
		return s.upsertProgress(ctx, tx, progress)
	})
}

func (s *Store) ServedHashes(ctx context.Context, participantID string) ([]string, error) {
	var hashes []string
	err := s.db.NewSelect().Model((*servedRow)(nil)).
		Column("question_hash").
		Where("participant_id = ?", participantID).
		Scan(ctx, &hashes)
	if err != nil {
		return nil, fmt.Errorf("served hashes: %w", err)
	}
	return hashes, nil
}

func (s *Store) LatestServed(ctx context.Context, participantID string) (domain.ServedQuestion, error) {
	var row servedRow
	err := s.db.NewSelect().Model(&row).
		Where("participant_id = ?", participantID).
		Order("id DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ServedQuestion{}, domain.ErrNothingServed
	}
	if err != nil {
		return domain.ServedQuestion{}, fmt.Errorf("latest served: %w", err)
	}
	return domain.ServedQuestion{
		ParticipantID: row.ParticipantID,
		QuestionHash:  row.QuestionHash,
		Question:      row.QuestionData,
	}, nil
}

func (s *Store) AppendAnswer(ctx context.Context, answer domain.Answer) error {
	row := answerRow{
		LiveID:        answer.LiveID,
		ParticipantID: answer.ParticipantID,
		QuestionHash:  answer.QuestionHash,
		AnswerIndex:   answer.AnswerIndex,
		Correct:       answer.Correct,
		ElapsedMs:     answer.ElapsedMs,
		CreatedAt:     answer.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("append answer: %w", err)
	}
	return nil
}

func (s *Store) Answers(ctx context.Context, liveID, participantID string) ([]domain.Answer, error) {
	var rows []answerRow
	err := s.db.NewSelect().Model(&rows).
		Where("live_id = ?", liveID).
		Where("participant_id = ?", participantID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("answers: %w", err)
	}
	answers := make([]domain.Answer, 0, len(rows))
	for _, row := range rows {
		answers = append(answers, domain.Answer{
			ID:            row.ID,
			LiveID:        row.LiveID,
			ParticipantID: row.ParticipantID,
			QuestionHash:  row.QuestionHash,
			AnswerIndex:   row.AnswerIndex,
			Correct:       row.Correct,
			ElapsedMs:     row.ElapsedMs,
			CreatedAt:     row.CreatedAt,
		})
	}
	return answers, nil
}

func (s *Store) OverlayQuestions(ctx context.Context, liveID string, level domain.Level) ([]domain.Question, error) {
	var rows []overlayRow
	err := s.db.NewSelect().Model(&rows).
		Where("live_id = ?", liveID).
		Where("level = ?", string(level)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("overlay questions: %w", err)
	}
	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, row.QuestionData)
	}
	return questions, nil
}

func (s *Store) AddOverlayQuestions(ctx context.Context, liveID string, questions []domain.Question) error {
	if len(questions) == 0 {
		return nil
	}
	rows := make([]overlayRow, 0, len(questions))
	for _, q := range questions {
		rows = append(rows, overlayRow{
			LiveID:       liveID,
			Level:        string(q.Level),
			Topic:        q.Topic,
			QuestionHash: q.Hash(),
			QuestionData: q,
		})
	}
	if _, err := s.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("add overlay questions: %w", err)
	}
	return nil
}

func (s *Store) ResetParticipant(ctx context.Context, participantID, liveID string) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*servedRow)(nil)).
			Where("participant_id = ?", participantID).
			Exec(ctx); err != nil {
			return fmt.Errorf("clear served: %w", err)
		}
		return s.upsertProgress(ctx, tx, domain.NewProgress(participantID, liveID))
	})
}

func sessionFromRow(row sessionRow) domain.LiveSession {
	return domain.LiveSession{
		LiveID:    row.LiveID,
		Code:      row.Code,
		Title:     row.Title,
		Status:    domain.SessionStatus(row.Status),
		Locked:    row.Locked,
		CreatedAt: row.CreatedAt,
	}
}

func progressFromRow(row progressRow) domain.Progress {
	return domain.Progress{
		ParticipantID: row.ParticipantID,
		LiveID:        row.LiveID,
		Level:         domain.Level(row.CurrentLevel),
		Theta:         row.Theta,
		Topic:         row.Topic,
		CorrectStreak: row.CorrectStreak,
		TotalServed:   row.TotalServed,
	}
}

func progressRowFrom(progress domain.Progress) progressRow {
	return progressRow{
		ParticipantID: progress.ParticipantID,
		LiveID:        progress.LiveID,
		CurrentLevel:  string(progress.Level),
		Theta:         progress.Theta,
		Topic:         progress.Topic,
		CorrectStreak: progress.CorrectStreak,
		TotalServed:   progress.TotalServed,
	}
}

func requireAffected(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
