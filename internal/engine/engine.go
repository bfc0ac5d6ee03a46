package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"readMoreAPI/internal/types/challenge"
	"readMoreAPI/internal/types/streak"
)

// ErrUserNotFound is returned when a reading event references an unknown user.
var ErrUserNotFound = errors.New("user not found")

// streakMilestones are awarded retroactively the moment a streak lands exactly
// on one of these values. Equality, not threshold: streaks only ever grow by
// one, so a milestone is hit exactly once per climb.
var streakMilestones = []int{3, 7, 14, 30, 90, 365}

// TxStore is the slice of the persistence layer the engine mutates inside a
// single reading-event transaction. Implementations must guarantee that
// UserStreakForUpdate serializes concurrent events for the same user.
type TxStore interface {
	UserStreakForUpdate(ctx context.Context, userID uuid.UUID) (*streak.UserStreak, error)
	SaveUserStreak(ctx context.Context, st *streak.UserStreak) error

	// UpsertDailyReading accumulates into the (userID, day) ledger row,
	// creating it if absent. The created flag is the sole signal that streak
	// advancement must run for this event.
	UpsertDailyReading(ctx context.Context, userID uuid.UUID, day time.Time, readingSeconds, pageCount int) (created bool, err error)

	// CountQualifyingDays counts ledger rows with page_count > 0 in the
	// inclusive [from, to] date range.
	CountQualifyingDays(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)

	ActiveEnrollments(ctx context.Context, userID uuid.UUID) ([]*challenge.EnrollmentWithChallenge, error)
	SaveEnrollment(ctx context.Context, enr *challenge.Enrollment) error
	CreateEnrollment(ctx context.Context, enr *challenge.Enrollment) error
	HasEnrollment(ctx context.Context, userID, challengeID uuid.UUID) (bool, error)

	// ChallengeByTypeAndTarget returns (nil, nil) when no catalog row matches.
	ChallengeByTypeAndTarget(ctx context.Context, typ challenge.Type, target int) (*challenge.Challenge, error)
}

// Store provides the transaction boundary: everything done inside fn either
// commits as a whole or rolls back as a whole.
type Store interface {
	InTx(ctx context.Context, fn func(tx TxStore) error) error
}

// Result reports what one reading event did to the user's state.
type Result struct {
	CreatedLedgerRow    bool        `json:"created_ledger_row"`
	CurrentStreak       int         `json:"current_streak"`
	LongestStreak       int         `json:"longest_streak"`
	MilestonesAwarded   []int       `json:"milestones_awarded,omitempty"`
	CompletedChallenges []uuid.UUID `json:"completed_challenges,omitempty"`
}

// Engine owns every mutation of streak counters, the daily reading ledger and
// challenge progress. No other component writes those fields.
type Engine struct {
	store Store
	now   func() time.Time
}

type Option func(*Engine)

// WithClock overrides the engine's notion of now. Used by tests to walk
// through calendar days.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(store Store, opts ...Option) *Engine {
	e := &Engine{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RecordReading processes one reading event: it accumulates into today's
// ledger row and, if this is the first event of the day, advances the streak,
// awards any exact-match milestone and re-evaluates all in-flight challenges.
// All writes happen in one transaction.
func (e *Engine) RecordReading(ctx context.Context, userID uuid.UUID, readingSeconds, pageCount int) (*Result, error) {
	if readingSeconds < 0 || pageCount < 0 {
		return nil, fmt.Errorf("negative reading amounts: seconds=%d pages=%d", readingSeconds, pageCount)
	}

	res := &Result{}
	err := e.store.InTx(ctx, func(tx TxStore) error {
		now := e.now()
		today := dateOnly(now)

		// Locks the user row, serializing same-user events.
		st, err := tx.UserStreakForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		created, err := tx.UpsertDailyReading(ctx, userID, today, readingSeconds, pageCount)
		if err != nil {
			return fmt.Errorf("failed to upsert daily reading: %w", err)
		}
		res.CreatedLedgerRow = created

		if created {
			e.advanceStreak(st, today, now)
			if err := tx.SaveUserStreak(ctx, st); err != nil {
				return fmt.Errorf("failed to save streak: %w", err)
			}
			if err := e.awardStreakMilestones(ctx, tx, st, now, res); err != nil {
				return err
			}
			if err := e.refreshChallengeProgress(ctx, tx, st, today, now, res); err != nil {
				return err
			}
			readingsRecorded.Inc()
		}

		res.CurrentStreak = st.CurrentStreak
		res.LongestStreak = st.LongestStreak
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// advanceStreak applies the day-over-day contiguity rules. It runs at most
// once per user per calendar day: the caller gates it on the ledger upsert
// having created a new row.
func (e *Engine) advanceStreak(st *streak.UserStreak, today, now time.Time) {
	yesterday := today.AddDate(0, 0, -1)

	if st.LastReadingDate != nil {
		last := dateOnly(*st.LastReadingDate)
		switch {
		case last.Equal(yesterday):
			st.CurrentStreak++
		case last.Equal(today):
			// Already advanced today. Should not happen behind the created
			// gate, but never double-advance.
			return
		default:
			st.CurrentStreak = 1
		}
	} else {
		st.CurrentStreak = 1
	}

	if st.CurrentStreak > st.LongestStreak {
		st.LongestStreak = st.CurrentStreak
	}
	st.LastReadingDate = &now
	streaksAdvanced.Inc()
}

// awardStreakMilestones creates a pre-completed enrollment when the streak
// lands exactly on a milestone and a matching catalog challenge exists. A
// missing catalog row is a config gap, not an error.
func (e *Engine) awardStreakMilestones(ctx context.Context, tx TxStore, st *streak.UserStreak, now time.Time, res *Result) error {
	for _, milestone := range streakMilestones {
		if st.CurrentStreak != milestone {
			continue
		}

		ch, err := tx.ChallengeByTypeAndTarget(ctx, challenge.TypeStreak, milestone)
		if err != nil {
			return fmt.Errorf("failed to look up milestone challenge: %w", err)
		}
		if ch == nil {
			log.Printf("No catalog challenge for %d-day streak milestone, skipping award", milestone)
			continue
		}

		exists, err := tx.HasEnrollment(ctx, st.UserID, ch.ID)
		if err != nil {
			return fmt.Errorf("failed to check enrollment: %w", err)
		}
		if exists {
			continue
		}

		completedAt := now
		enr := &challenge.Enrollment{
			ID:            uuid.New(),
			UserID:        st.UserID,
			ChallengeID:   ch.ID,
			Progress:      milestone,
			IsCompleted:   true,
			CompletedDate: &completedAt,
			StartedDate:   now,
		}
		if err := tx.CreateEnrollment(ctx, enr); err != nil {
			return fmt.Errorf("failed to award milestone challenge: %w", err)
		}
		res.MilestonesAwarded = append(res.MilestonesAwarded, milestone)
		res.CompletedChallenges = append(res.CompletedChallenges, ch.ID)
		challengesCompleted.Inc()
	}
	return nil
}

// refreshChallengeProgress re-evaluates every incomplete enrollment against
// the updated streak and ledger state. Types without a registered evaluator
// are left untouched.
func (e *Engine) refreshChallengeProgress(ctx context.Context, tx TxStore, st *streak.UserStreak, today, now time.Time, res *Result) error {
	enrollments, err := tx.ActiveEnrollments(ctx, st.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch active enrollments: %w", err)
	}

	for _, enr := range enrollments {
		ev, ok := evaluators[enr.Challenge.Type]
		if !ok {
			continue
		}

		progress, err := ev.Evaluate(ctx, tx, st, enr, today)
		if err != nil {
			return fmt.Errorf("failed to evaluate %s challenge: %w", enr.Challenge.Type, err)
		}

		enr.Progress = progress
		if !enr.IsCompleted && progress >= enr.Challenge.TargetValue {
			completedAt := now
			enr.IsCompleted = true
			enr.CompletedDate = &completedAt
			res.CompletedChallenges = append(res.CompletedChallenges, enr.ChallengeID)
			challengesCompleted.Inc()
		}

		if err := tx.SaveEnrollment(ctx, &enr.Enrollment); err != nil {
			return fmt.Errorf("failed to save enrollment progress: %w", err)
		}
	}
	return nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
