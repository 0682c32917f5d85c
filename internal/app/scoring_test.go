package app

import (
	"testing"

	"quizlive/internal/domain"
)

func TestApplyAnswerPromotionLaw(t *testing.T) {
	// Scenario from the adaptive rule: base, theta 20, two correct answers.
	level, theta, streak := ApplyAnswer(domain.LevelBase, 20, 0, true)
	if level != domain.LevelBase || theta != 25 || streak != 1 {
		t.Fatalf("after first correct: got %s/%d/%d", level, theta, streak)
	}
	level, theta, streak = ApplyAnswer(level, theta, streak, true)
	if level != domain.LevelMedio || theta != 30 || streak != 0 {
		t.Fatalf("after second correct: got %s/%d/%d, want medio/30/0", level, theta, streak)
	}

	// Two more correct answers promote exactly one more level.
	level, theta, streak = ApplyAnswer(level, theta, streak, true)
	level, theta, streak = ApplyAnswer(level, theta, streak, true)
	if level != domain.LevelAvanzato || streak != 0 {
		t.Fatalf("expected avanzato with reset streak, got %s/%d", level, streak)
	}

	// At the top the streak still resets but the level stays.
	level, _, streak = ApplyAnswer(level, theta, 1, true)
	if level != domain.LevelAvanzato || streak != 0 {
		t.Fatalf("avanzato must plateau with streak reset, got %s/%d", level, streak)
	}
}

func TestApplyAnswerIncorrect(t *testing.T) {
	level, theta, streak := ApplyAnswer(domain.LevelBase, 20, 1, false)
	if level != domain.LevelBase || theta != 17 || streak != 0 {
		t.Fatalf("incorrect: got %s/%d/%d, want base/17/0", level, theta, streak)
	}
}

func TestApplyAnswerThetaClamped(t *testing.T) {
	_, theta, _ := ApplyAnswer(domain.LevelAvanzato, 99, 0, true)
	if theta != 100 {
		t.Fatalf("theta must clamp at 100, got %d", theta)
	}
	_, theta, _ = ApplyAnswer(domain.LevelBase, 1, 0, false)
	if theta != 0 {
		t.Fatalf("theta must clamp at 0, got %d", theta)
	}

	// No sequence escapes the bounds.
	theta = 50
	level := domain.LevelBase
	streak := 0
	for i := 0; i < 200; i++ {
		level, theta, streak = ApplyAnswer(level, theta, streak, i%3 == 0)
		if theta < 0 || theta > 100 {
			t.Fatalf("theta escaped bounds: %d", theta)
		}
	}
}

func TestDecide(t *testing.T) {
	if got := Decide(10, true); got != domain.ActionContinue {
		t.Fatalf("expected continue, got %s", got)
	}
	if got := Decide(10, false); got != domain.ActionExplanationRequired {
		t.Fatalf("expected explanation_required, got %s", got)
	}
	// Finishing takes priority over the explanation.
	if got := Decide(MaxServed, false); got != domain.ActionFinished {
		t.Fatalf("expected finished, got %s", got)
	}
	if got := Decide(MaxServed, true); got != domain.ActionFinished {
		t.Fatalf("expected finished, got %s", got)
	}
}
