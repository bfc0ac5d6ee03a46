package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"readMoreAPI/internal/types/streak"
	"readMoreAPI/internal/types/user"
)

type UserService struct {
	db *pgxpool.Pool
}

func NewUserService(db *pgxpool.Pool) *UserService {
	return &UserService{db: db}
}

func (s *UserService) CreateUser(ctx context.Context, req *user.CreateUserRequest) (*user.User, error) {
	u := &user.User{
		ID:        uuid.New(),
		ClerkID:   req.ClerkID,
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		ImageURL:  req.ImageURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
	INSERT INTO users (id, clerk_id, email, username, first_name, last_name, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING email_verified, current_streak, longest_streak
	`

	err := s.db.QueryRow(
		ctx,
		query,
		u.ID,
		u.ClerkID,
		u.Email,
		u.Username,
		u.FirstName,
		u.LastName,
		u.ImageURL,
		u.CreatedAt,
		u.UpdatedAt,
	).Scan(&u.EmailVerified, &u.CurrentStreak, &u.LongestStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (s *UserService) GetUserByClerkID(ctx context.Context, clerkID string) (*user.User, error) {
	query := `
	SELECT id, clerk_id, email, username, first_name, last_name, image_url, email_verified,
		current_streak, longest_streak, last_reading_date, created_at, updated_at
	FROM users
	WHERE clerk_id = $1
	`

	u := &user.User{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&u.ID,
		&u.ClerkID,
		&u.Email,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.ImageURL,
		&u.EmailVerified,
		&u.CurrentStreak,
		&u.LongestStreak,
		&u.LastReadingDate,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

func (s *UserService) UpdateProfileByClerkID(ctx context.Context, clerkID string, req *user.UpdateProfileRequest) (*user.User, error) {
	query := `
	UPDATE users
	SET username = $2, first_name = $3, last_name = $4, image_url = $5, updated_at = NOW()
	WHERE clerk_id = $1
	`

	result, err := s.db.Exec(ctx, query, clerkID, req.Username, req.FirstName, req.LastName, req.ImageURL)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return s.GetUserByClerkID(ctx, clerkID)
}

func (s *UserService) UpdateEmailVerification(ctx context.Context, clerkID string, verified bool) error {
	query := `UPDATE users SET email_verified = $2, updated_at = NOW() WHERE clerk_id = $1`

	_, err := s.db.Exec(ctx, query, clerkID, verified)
	if err != nil {
		return fmt.Errorf("failed to update email verification: %w", err)
	}
	return nil
}

func (s *UserService) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	result, err := s.db.Exec(ctx, `DELETE FROM users WHERE clerk_id = $1`, clerkID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetStreak is the "user streak" query surface: current, longest and the
// timestamp of the last advancing ledger update.
func (s *UserService) GetStreak(ctx context.Context, clerkID string) (*streak.UserStreak, error) {
	query := `
	SELECT id, current_streak, longest_streak, last_reading_date
	FROM users
	WHERE clerk_id = $1
	`

	st := &streak.UserStreak{}
	err := s.db.QueryRow(ctx, query, clerkID).Scan(
		&st.UserID,
		&st.CurrentStreak,
		&st.LongestStreak,
		&st.LastReadingDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}

	return st, nil
}

func (s *UserService) GetReadingStats(ctx context.Context, clerkID string) (*user.ReadingStats, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	query := `
	SELECT
		COALESCE((SELECT SUM(reading_seconds) FROM daily_readings WHERE user_id = $1), 0) AS total_seconds,
		COALESCE((SELECT SUM(page_count) FROM daily_readings WHERE user_id = $1), 0) AS total_pages,
		COALESCE((SELECT COUNT(*) FROM reading_sessions WHERE user_id = $1), 0) AS session_count,
		COALESCE((SELECT COUNT(*) FROM daily_readings WHERE user_id = $1), 0) AS days_read,
		u.current_streak,
		u.longest_streak,
		u.last_reading_date
	FROM users u
	WHERE u.id = $1
	`

	stats := &user.ReadingStats{}
	err = s.db.QueryRow(ctx, query, userID).Scan(
		&stats.TotalReadingSeconds,
		&stats.TotalPagesRead,
		&stats.SessionCount,
		&stats.DaysRead,
		&stats.CurrentStreak,
		&stats.LongestStreak,
		&stats.LastReadingDate,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get reading stats: %w", err)
	}

	return stats, nil
}
