package engine

import (
	"context"
	"time"

	"readMoreAPI/internal/types/challenge"
	"readMoreAPI/internal/types/streak"
)

// evaluator computes a single enrollment's progress for one reading event.
// One strategy per challenge type; new types register here without touching
// the dispatch loop or each other.
type evaluator interface {
	Evaluate(ctx context.Context, tx TxStore, st *streak.UserStreak, enr *challenge.EnrollmentWithChallenge, today time.Time) (progress int, err error)
}

// evaluators maps challenge types to their strategy. PAGES, COMPLETION and
// TIME have no per-event trigger yet and stay unregistered, so the dispatch
// loop skips them.
var evaluators = map[challenge.Type]evaluator{
	challenge.TypeStreak:      streakEvaluator{},
	challenge.TypeConsistency: consistencyEvaluator{},
}

// streakEvaluator mirrors the user's current streak into the enrollment.
type streakEvaluator struct{}

func (streakEvaluator) Evaluate(_ context.Context, _ TxStore, st *streak.UserStreak, _ *challenge.EnrollmentWithChallenge, _ time.Time) (int, error) {
	return st.CurrentStreak, nil
}

// consistencyEvaluator counts qualifying days (page_count > 0) in the
// trailing window of exactly target_value calendar days ending today. The
// count is a sliding recomputation, not a persisted streak: a missed day
// drags progress below target until the window fills again.
type consistencyEvaluator struct{}

func (consistencyEvaluator) Evaluate(ctx context.Context, tx TxStore, st *streak.UserStreak, enr *challenge.EnrollmentWithChallenge, today time.Time) (int, error) {
	from := today.AddDate(0, 0, -(enr.Challenge.TargetValue - 1))
	return tx.CountQualifyingDays(ctx, st.UserID, from, today)
}
