package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	ClerkID         string     `json:"clerk_id" db:"clerk_id"`
	Email           string     `json:"email" db:"email"`
	Username        string     `json:"username" db:"username"`
	FirstName       string     `json:"first_name" db:"first_name"`
	LastName        string     `json:"last_name" db:"last_name"`
	ImageURL        string     `json:"image_url" db:"image_url"`
	EmailVerified   bool       `json:"email_verified" db:"email_verified"`
	CurrentStreak   int        `json:"current_streak" db:"current_streak"`
	LongestStreak   int        `json:"longest_streak" db:"longest_streak"`
	LastReadingDate *time.Time `json:"last_reading_date" db:"last_reading_date"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

type CreateUserRequest struct {
	ClerkID   string `json:"clerk_id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

type UpdateProfileRequest struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}

// ReadingStats is the aggregate surface behind GET /user/stats.
type ReadingStats struct {
	TotalReadingSeconds int        `json:"total_reading_seconds"`
	TotalPagesRead      int        `json:"total_pages_read"`
	SessionCount        int        `json:"session_count"`
	DaysRead            int        `json:"days_read"`
	CurrentStreak       int        `json:"current_streak"`
	LongestStreak       int        `json:"longest_streak"`
	LastReadingDate     *time.Time `json:"last_reading_date"`
}
