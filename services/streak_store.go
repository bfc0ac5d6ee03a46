package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"readMoreAPI/internal/engine"
	"readMoreAPI/internal/types/challenge"
	"readMoreAPI/internal/types/streak"
)

// StreakStore is the pgx implementation of engine.Store. Each reading event
// runs in one transaction; the user row is locked FOR UPDATE so concurrent
// events for the same user serialize instead of racing on the ledger's
// (user_id, reading_date) unique key.
type StreakStore struct {
	db *pgxpool.Pool
}

func NewStreakStore(db *pgxpool.Pool) *StreakStore {
	return &StreakStore{db: db}
}

func (s *StreakStore) InTx(ctx context.Context, fn func(tx engine.TxStore) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&streakTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reading event: %w", err)
	}
	return nil
}

type streakTx struct {
	tx pgx.Tx
}

func (t *streakTx) UserStreakForUpdate(ctx context.Context, userID uuid.UUID) (*streak.UserStreak, error) {
	query := `
	SELECT id, current_streak, longest_streak, last_reading_date
	FROM users
	WHERE id = $1
	FOR UPDATE
	`

	st := &streak.UserStreak{}
	err := t.tx.QueryRow(ctx, query, userID).Scan(
		&st.UserID,
		&st.CurrentStreak,
		&st.LongestStreak,
		&st.LastReadingDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, engine.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock user row: %w", err)
	}

	return st, nil
}

func (t *streakTx) SaveUserStreak(ctx context.Context, st *streak.UserStreak) error {
	query := `
	UPDATE users
	SET current_streak = $2, longest_streak = $3, last_reading_date = $4, updated_at = NOW()
	WHERE id = $1
	`

	_, err := t.tx.Exec(ctx, query, st.UserID, st.CurrentStreak, st.LongestStreak, st.LastReadingDate)
	if err != nil {
		return fmt.Errorf("failed to update user streak: %w", err)
	}
	return nil
}

func (t *streakTx) UpsertDailyReading(ctx context.Context, userID uuid.UUID, day time.Time, readingSeconds, pageCount int) (bool, error) {
	// xmax = 0 only holds for freshly inserted rows, which is exactly the
	// "first event of the day" signal the engine gates streak advancement on.
	query := `
	INSERT INTO daily_readings (id, user_id, reading_date, reading_seconds, page_count, created_at)
	VALUES ($1, $2, $3, $4, $5, NOW())
	ON CONFLICT (user_id, reading_date)
	DO UPDATE SET
		reading_seconds = daily_readings.reading_seconds + EXCLUDED.reading_seconds,
		page_count = daily_readings.page_count + EXCLUDED.page_count
	RETURNING (xmax = 0) AS created
	`

	var created bool
	err := t.tx.QueryRow(ctx, query, uuid.New(), userID, day, readingSeconds, pageCount).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("failed to upsert daily reading: %w", err)
	}
	return created, nil
}

func (t *streakTx) CountQualifyingDays(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	query := `
	SELECT COUNT(*)
	FROM daily_readings
	WHERE user_id = $1
		AND reading_date >= $2
		AND reading_date <= $3
		AND page_count > 0
	`

	var count int
	err := t.tx.QueryRow(ctx, query, userID, from, to).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count qualifying days: %w", err)
	}
	return count, nil
}

func (t *streakTx) ActiveEnrollments(ctx context.Context, userID uuid.UUID) ([]*challenge.EnrollmentWithChallenge, error) {
	query := `
	SELECT
		uc.id, uc.user_id, uc.challenge_id, uc.progress, uc.is_completed, uc.completed_date, uc.started_date,
		c.id, c.name, c.description, c.type, c.target_value, c.reward_points, c.is_active, c.created_at
	FROM user_challenges uc
	JOIN challenges c ON c.id = uc.challenge_id
	WHERE uc.user_id = $1 AND uc.is_completed = false
	`

	rows, err := t.tx.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active enrollments: %w", err)
	}
	defer rows.Close()

	var enrollments []*challenge.EnrollmentWithChallenge
	for rows.Next() {
		enr := &challenge.EnrollmentWithChallenge{Challenge: &challenge.Challenge{}}
		err := rows.Scan(
			&enr.ID,
			&enr.UserID,
			&enr.ChallengeID,
			&enr.Progress,
			&enr.IsCompleted,
			&enr.CompletedDate,
			&enr.StartedDate,
			&enr.Challenge.ID,
			&enr.Challenge.Name,
			&enr.Challenge.Description,
			&enr.Challenge.Type,
			&enr.Challenge.TargetValue,
			&enr.Challenge.RewardPoints,
			&enr.Challenge.IsActive,
			&enr.Challenge.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan enrollment: %w", err)
		}
		enrollments = append(enrollments, enr)
	}

	return enrollments, rows.Err()
}

func (t *streakTx) SaveEnrollment(ctx context.Context, enr *challenge.Enrollment) error {
	query := `
	UPDATE user_challenges
	SET progress = $2, is_completed = $3, completed_date = $4
	WHERE id = $1
	`

	_, err := t.tx.Exec(ctx, query, enr.ID, enr.Progress, enr.IsCompleted, enr.CompletedDate)
	if err != nil {
		return fmt.Errorf("failed to save enrollment: %w", err)
	}
	return nil
}

func (t *streakTx) CreateEnrollment(ctx context.Context, enr *challenge.Enrollment) error {
	query := `
	INSERT INTO user_challenges (id, user_id, challenge_id, progress, is_completed, completed_date, started_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := t.tx.Exec(ctx, query,
		enr.ID,
		enr.UserID,
		enr.ChallengeID,
		enr.Progress,
		enr.IsCompleted,
		enr.CompletedDate,
		enr.StartedDate,
	)
	if err != nil {
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (t *streakTx) HasEnrollment(ctx context.Context, userID, challengeID uuid.UUID) (bool, error) {
	query := `
	SELECT EXISTS(
		SELECT 1 FROM user_challenges
		WHERE user_id = $1 AND challenge_id = $2
	)
	`

	var exists bool
	err := t.tx.QueryRow(ctx, query, userID, challengeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return exists, nil
}

func (t *streakTx) ChallengeByTypeAndTarget(ctx context.Context, typ challenge.Type, target int) (*challenge.Challenge, error) {
	query := `
	SELECT id, name, description, type, target_value, reward_points, is_active, created_at
	FROM challenges
	WHERE type = $1 AND target_value = $2
	LIMIT 1
	`

	ch := &challenge.Challenge{}
	err := t.tx.QueryRow(ctx, query, typ, target).Scan(
		&ch.ID,
		&ch.Name,
		&ch.Description,
		&ch.Type,
		&ch.TargetValue,
		&ch.RewardPoints,
		&ch.IsActive,
		&ch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up challenge: %w", err)
	}

	return ch, nil
}
