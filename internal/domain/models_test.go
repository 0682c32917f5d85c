package domain

import "testing"

func TestQuestionHashIdentity(t *testing.T) {
	q := Question{
		Question:    "What is TCP?",
		Options:     []string{"A. protocol", "B. cable"},
		AnswerIndex: 0,
	}
	if q.Hash() != q.Hash() {
		t.Fatalf("hash must be deterministic")
	}

	// Cosmetic edits outside (question, options) keep the identity.
	edited := q
	edited.ExplainBrief = "different explanation"
	edited.SourceRefs = []string{"other#chunk"}
	if edited.Hash() != q.Hash() {
		t.Fatalf("hash must ignore explanation and refs")
	}

	changed := q
	changed.Options = []string{"A. protocol", "B. wire"}
	if changed.Hash() == q.Hash() {
		t.Fatalf("hash must change with options")
	}
}

func TestLevelPromote(t *testing.T) {
	if got := LevelBase.Promote(); got != LevelMedio {
		t.Fatalf("base promotes to medio, got %s", got)
	}
	if got := LevelMedio.Promote(); got != LevelAvanzato {
		t.Fatalf("medio promotes to avanzato, got %s", got)
	}
	if got := LevelAvanzato.Promote(); got != LevelAvanzato {
		t.Fatalf("avanzato has nothing above it, got %s", got)
	}
}

func TestSessionStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to SessionStatus }{
		{StatusLobby, StatusRunning},
		{StatusRunning, StatusPaused},
		{StatusPaused, StatusRunning},
		{StatusRunning, StatusEnded},
		{StatusPaused, StatusEnded},
	}
	for _, tc := range allowed {
		if !tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to SessionStatus }{
		{StatusLobby, StatusPaused},
		{StatusLobby, StatusEnded},
		{StatusEnded, StatusRunning},
		{StatusEnded, StatusPaused},
		{StatusEnded, StatusLobby},
		{StatusRunning, StatusLobby},
	}
	for _, tc := range denied {
		if tc.from.CanTransition(tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestPublicStripsAnswerIndex(t *testing.T) {
	q := Question{
		Question:    "Pick one",
		Options:     []string{"A", "B"},
		AnswerIndex: 1,
	}
	pub := q.Public()
	if pub.Question != q.Question || len(pub.Options) != 2 {
		t.Fatalf("public view must keep content: %+v", pub)
	}
}
