package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"quizlive/internal/app"
	"quizlive/internal/domain"
)

// Handler exposes the session REST API.
type Handler struct {
	service *app.LiveService
}

func NewHandler(service *app.LiveService) *Handler {
	return &Handler{service: service}
}

// Register mounts all routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("POST /api/live/create", h.createSession)
	mux.HandleFunc("GET /api/live/{liveID}/details", h.sessionDetails)
	mux.HandleFunc("POST /api/live/{code}/join", h.join)
	mux.HandleFunc("POST /api/live/{liveID}/lock", h.lock)
	mux.HandleFunc("POST /api/live/{liveID}/start", h.start)
	mux.HandleFunc("POST /api/live/{liveID}/pause", h.pause)
	mux.HandleFunc("POST /api/live/{liveID}/resume", h.resume)
	mux.HandleFunc("POST /api/live/{liveID}/end", h.end)
	mux.HandleFunc("GET /api/live/{liveID}/participants", h.participants)
	mux.HandleFunc("POST /api/live/{liveID}/questions", h.addSessionQuestions)
	mux.HandleFunc("POST /api/live/{liveID}/participants/{participantID}/reset", h.resetParticipant)
	mux.HandleFunc("POST /api/session/next", h.nextQuestion)
	mux.HandleFunc("POST /api/session/answer", h.submitAnswer)
	mux.HandleFunc("POST /api/questions/import", h.importQuestions)
}

type createSessionRequest struct {
	Title string `json:"title"`
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // empty body means untitled
	}
	session, err := h.service.CreateSession(r.Context(), req.Title)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) sessionDetails(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.SessionDetails(r.Context(), r.PathValue("liveID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) join(w http.ResponseWriter, r *http.Request) {
	var req app.JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid join payload", http.StatusBadRequest)
		return
	}
	if req.Nome == "" || req.Cognome == "" {
		http.Error(w, "nome and cognome are required", http.StatusBadRequest)
		return
	}
	participant, err := h.service.Join(r.Context(), r.PathValue("code"), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, participant)
}

func (h *Handler) lock(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Lock(r.Context(), r.PathValue("liveID")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "locked"})
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Start(r.Context(), r.PathValue("liveID")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "started"})
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Pause(r.Context(), r.PathValue("liveID")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (h *Handler) resume(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Resume(r.Context(), r.PathValue("liveID")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func (h *Handler) end(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.End(r.Context(), r.PathValue("liveID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ended", "report": report})
}

func (h *Handler) participants(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.service.ParticipantsStatus(r.Context(), r.PathValue("liveID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (h *Handler) addSessionQuestions(w http.ResponseWriter, r *http.Request) {
	var questions []domain.Question
	if err := json.NewDecoder(r.Body).Decode(&questions); err != nil {
		http.Error(w, "invalid question payload", http.StatusBadRequest)
		return
	}
	if err := h.service.AddSessionQuestions(r.Context(), r.PathValue("liveID"), questions); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"questions_added": len(questions)})
}

func (h *Handler) resetParticipant(w http.ResponseWriter, r *http.Request) {
	err := h.service.ResetParticipant(r.Context(), r.PathValue("participantID"), r.PathValue("liveID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

type nextQuestionRequest struct {
	ParticipantID string `json:"participant_id"`
	SessionCode   string `json:"session_code"`
}

type nextQuestionResponse struct {
	Question       domain.PublicQuestion `json:"question"`
	QuestionNumber int                   `json:"question_number"`
}

func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	var req nextQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	question, progress, err := h.service.NextQuestion(r.Context(), req.ParticipantID, req.SessionCode)
	if err != nil {
		h.writeError(w, err)
		return
	}
	// The grading copy stays server-side; clients get the redacted view.
	writeJSON(w, http.StatusOK, nextQuestionResponse{
		Question:       question.Public(),
		QuestionNumber: progress.TotalServed,
	})
}

func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	var sub app.AnswerSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "invalid answer payload", http.StatusBadRequest)
		return
	}
	result, err := h.service.SubmitAnswer(r.Context(), sub)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) importQuestions(w http.ResponseWriter, r *http.Request) {
	var questions []domain.Question
	if err := json.NewDecoder(r.Body).Decode(&questions); err != nil {
		http.Error(w, "invalid question payload", http.StatusBadRequest)
		return
	}
	added, err := h.service.ImportQuestions(r.Context(), questions)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"questions_added": added})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrProgressNotFound),
		errors.Is(err, domain.ErrNoQuestion):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrSessionLocked):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrCapacityReached),
		errors.Is(err, domain.ErrNothingServed),
		errors.Is(err, domain.ErrEmptyCatalog):
		status = http.StatusBadRequest
	default:
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
