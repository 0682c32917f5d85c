package app

import "quizlive/internal/domain"

const (
	thetaGain     = 5
	thetaLoss     = 3
	thetaMax      = 100
	promoteStreak = 2

	// MaxServed caps how many questions one participant is ever served.
	MaxServed = 50
)

// ApplyAnswer is the pure adaptive transition: given the current level,
// theta and streak it returns the state after grading one answer.
//
// A correct answer bumps the streak and theta (clamped at 100); the second
// consecutive correct promotes one level and resets the streak — the streak
// resets even when already at avanzato, where the level simply stays. An
// incorrect answer resets the streak and drops theta (clamped at 0).
func ApplyAnswer(level domain.Level, theta, streak int, correct bool) (domain.Level, int, int) {
	if !correct {
		return level, max(0, theta-thetaLoss), 0
	}
	streak++
	theta = min(thetaMax, theta+thetaGain)
	if streak >= promoteStreak {
		return level.Promote(), theta, 0
	}
	return level, theta, streak
}

// Decide maps a graded submission to the caller's next action. Finishing
// (serve cap reached) takes priority over requiring an explanation.
func Decide(totalServed int, correct bool) domain.NextAction {
	if totalServed >= MaxServed {
		return domain.ActionFinished
	}
	if !correct {
		return domain.ActionExplanationRequired
	}
	return domain.ActionContinue
}
