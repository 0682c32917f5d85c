package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"quizlive/internal/domain"
)

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(url, "application/json", &buf)
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestCreateJoinServeAnswerOverHTTP(t *testing.T) {
	f := newWSFixture(t)
	base := f.server.URL

	resp := postJSON(t, base+"/api/live/create", map[string]string{"title": "Verifica"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var session domain.LiveSession
	decode(t, resp, &session)
	if len(session.Code) != 6 {
		t.Fatalf("session code %q, want 6 digits", session.Code)
	}

	resp = postJSON(t, base+"/api/live/"+session.Code+"/join", map[string]string{
		"nome": "Ada", "cognome": "Lovelace",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join status = %d", resp.StatusCode)
	}
	var participant domain.Participant
	decode(t, resp, &participant)
	if participant.ParticipantID == "" {
		t.Fatalf("join returned no participant id")
	}

	resp = postJSON(t, base+"/api/session/next", map[string]string{
		"participant_id": participant.ParticipantID,
		"session_code":   session.Code,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("next status = %d", resp.StatusCode)
	}
	var next struct {
		Question       map[string]any `json:"question"`
		QuestionNumber int            `json:"question_number"`
	}
	decode(t, resp, &next)
	if next.QuestionNumber != 1 {
		t.Fatalf("question_number = %d, want 1", next.QuestionNumber)
	}
	if _, leaked := next.Question["answer_index"]; leaked {
		t.Fatalf("response must not carry the correct answer: %v", next.Question)
	}

	resp = postJSON(t, base+"/api/session/answer", map[string]any{
		"participant_id": participant.ParticipantID,
		"session_code":   session.Code,
		"answer_index":   0,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("answer status = %d", resp.StatusCode)
	}
	var result struct {
		NextAction  string `json:"next_action"`
		TotalServed int    `json:"total_served"`
	}
	decode(t, resp, &result)
	if result.TotalServed != 1 {
		t.Fatalf("total_served = %d, want 1", result.TotalServed)
	}
	if result.NextAction != "continue" && result.NextAction != "explanation_required" {
		t.Fatalf("unexpected next_action %q", result.NextAction)
	}
}

func TestJoinValidationAndErrorMapping(t *testing.T) {
	f := newWSFixture(t)
	base := f.server.URL

	// Missing cognome.
	resp := postJSON(t, base+"/api/live/123456/join", map[string]string{"nome": "Ada"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	// Unknown session code.
	resp = postJSON(t, base+"/api/live/999999/join", map[string]string{
		"nome": "Ada", "cognome": "Lovelace",
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}

	// Locked session is forbidden.
	resp = postJSON(t, base+"/api/live/create", nil)
	var session domain.LiveSession
	decode(t, resp, &session)
	if resp := postJSON(t, base+"/api/live/"+session.LiveID+"/lock", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("lock status = %d", resp.StatusCode)
	}
	resp = postJSON(t, base+"/api/live/"+session.Code+"/join", map[string]string{
		"nome": "Ada", "cognome": "Lovelace",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", resp.StatusCode)
	}
}

func TestLifecycleEndpointsEnforceTransitions(t *testing.T) {
	f := newWSFixture(t)
	base := f.server.URL

	resp := postJSON(t, base+"/api/live/create", nil)
	var session domain.LiveSession
	decode(t, resp, &session)

	// Pause before start is an invalid transition.
	resp = postJSON(t, base+"/api/live/"+session.LiveID+"/pause", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("pause status = %d, want 400", resp.StatusCode)
	}

	if resp := postJSON(t, base+"/api/live/"+session.LiveID+"/start", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("start status = %d", resp.StatusCode)
	}

	resp = postJSON(t, base+"/api/live/"+session.LiveID+"/end", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("end status = %d", resp.StatusCode)
	}
	var ended struct {
		Status string              `json:"status"`
		Report []domain.ReportEntry `json:"report"`
	}
	decode(t, resp, &ended)
	if ended.Status != "ended" {
		t.Fatalf("status = %q, want ended", ended.Status)
	}

	// Nothing leaves ended.
	resp = postJSON(t, base+"/api/live/"+session.LiveID+"/resume", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("resume after end status = %d, want 400", resp.StatusCode)
	}
}

func TestImportQuestionsDeduplicates(t *testing.T) {
	f := newWSFixture(t)
	base := f.server.URL

	batch := []domain.Question{{
		Topic:       "Reti",
		Level:       domain.LevelBase,
		Question:    "Cos'è il DNS?",
		Options:     []string{"A. Un sistema di nomi", "B. Un protocollo di posta"},
		AnswerIndex: 0,
	}}
	resp := postJSON(t, base+"/api/questions/import", batch)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d", resp.StatusCode)
	}
	var out map[string]int
	decode(t, resp, &out)
	if out["questions_added"] != 1 {
		t.Fatalf("questions_added = %d, want 1", out["questions_added"])
	}

	// Same batch again adds nothing.
	resp = postJSON(t, base+"/api/questions/import", batch)
	decode(t, resp, &out)
	if out["questions_added"] != 0 {
		t.Fatalf("questions_added = %d, want 0 on duplicate import", out["questions_added"])
	}
}
