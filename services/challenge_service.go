package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"readMoreAPI/internal/types/challenge"
)

type ChallengeService struct {
	db *pgxpool.Pool
}

func NewChallengeService(db *pgxpool.Pool) *ChallengeService {
	return &ChallengeService{db: db}
}

// GetActiveChallenges lists catalog entries open for enrollment. Inactive
// challenges are hidden here but existing enrollments keep evaluating.
func (s *ChallengeService) GetActiveChallenges(ctx context.Context) ([]*challenge.Challenge, error) {
	query := `
	SELECT id, name, description, type, target_value, reward_points, is_active, created_at
	FROM challenges
	WHERE is_active = true
	ORDER BY target_value ASC
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*challenge.Challenge
	for rows.Next() {
		ch := &challenge.Challenge{}
		err := rows.Scan(
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
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, ch)
	}

	return challenges, rows.Err()
}

// GetUserProgress is the "user challenge progress" query surface: all of a
// user's enrollments joined with their challenge definitions.
func (s *ChallengeService) GetUserProgress(ctx context.Context, clerkID string) ([]*challenge.EnrollmentWithChallenge, error) {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		uc.id, uc.user_id, uc.challenge_id, uc.progress, uc.is_completed, uc.completed_date, uc.started_date,
		c.id, c.name, c.description, c.type, c.target_value, c.reward_points, c.is_active, c.created_at
	FROM user_challenges uc
	JOIN challenges c ON c.id = uc.challenge_id
	WHERE uc.user_id = $1
	ORDER BY uc.is_completed ASC, uc.started_date DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user challenges: %w", err)
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
			return nil, fmt.Errorf("failed to scan user challenge: %w", err)
		}
		enrollments = append(enrollments, enr)
	}

	return enrollments, rows.Err()
}

// StartChallenge enrolls the user into an active catalog challenge.
func (s *ChallengeService) StartChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID) (*challenge.Enrollment, error) {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM challenges WHERE id = $1 AND is_active = true)`,
		challengeID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up challenge: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	enr := &challenge.Enrollment{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: challengeID,
		StartedDate: time.Now(),
	}

	// The (user_id, challenge_id) unique constraint is the conflict guard;
	// a concurrent duplicate start loses here, not at the pre-check.
	query := `
	INSERT INTO user_challenges (id, user_id, challenge_id, progress, is_completed, started_date)
	VALUES ($1, $2, $3, 0, false, $4)
	ON CONFLICT (user_id, challenge_id) DO NOTHING
	`

	result, err := s.db.Exec(ctx, query, enr.ID, enr.UserID, enr.ChallengeID, enr.StartedDate)
	if err != nil {
		return nil, fmt.Errorf("failed to start challenge: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrAlreadyEnrolled
	}

	return enr, nil
}

// AbandonChallenge deletes an incomplete enrollment. Completed enrollments
// are permanent.
func (s *ChallengeService) AbandonChallenge(ctx context.Context, clerkID string, challengeID uuid.UUID) error {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		`DELETE FROM user_challenges WHERE user_id = $1 AND challenge_id = $2 AND is_completed = false`,
		userID, challengeID)
	if err != nil {
		return fmt.Errorf("failed to abandon challenge: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *ChallengeService) userIDForClerk(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to find user: %w", err)
	}
	return userID, nil
}
