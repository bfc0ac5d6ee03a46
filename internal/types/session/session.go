package session

import (
	"time"

	"github.com/google/uuid"
)

// Session is one sitting with one book. Pages and duration are accumulated
// into the daily reading ledger when the session ends.
type Session struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	BookID          uuid.UUID  `json:"book_id" db:"book_id"`
	StartPosition   int64      `json:"start_position" db:"start_position"`
	PagesRead       int        `json:"pages_read" db:"pages_read"`
	DurationMinutes int        `json:"duration_minutes" db:"duration_minutes"`
	StartedAt       time.Time  `json:"started_at" db:"started_at"`
	EndedAt         *time.Time `json:"ended_at" db:"ended_at"`
}

type StartSessionRequest struct {
	BookID          uuid.UUID `json:"book_id"`
	CurrentPosition int64     `json:"current_position"`
}

type StartSessionResponse struct {
	SessionID          uuid.UUID `json:"session_id"`
	CurrentPosition    int64     `json:"current_position"`
	ProgressPercentage float64   `json:"progress_percentage"`
}

type EndSessionRequest struct {
	DurationMinutes int   `json:"duration_minutes"`
	FinalPosition   int64 `json:"final_position"`
}

type EndSessionResponse struct {
	SessionDuration     int   `json:"session_duration"`
	TotalReadingSeconds int   `json:"total_reading_seconds"`
	TotalPagesRead      int   `json:"total_pages_read"`
	FinalPosition       int64 `json:"final_position"`
	CurrentStreak       int   `json:"current_streak"`
	LongestStreak       int   `json:"longest_streak"`
}

type UpdatePositionRequest struct {
	BookID   uuid.UUID `json:"book_id"`
	Position int64     `json:"position"`
}

// BookStats aggregates a user's sessions against one book.
type BookStats struct {
	BookID              uuid.UUID  `json:"book_id"`
	CurrentPosition     int64      `json:"current_position"`
	ProgressPercentage  float64    `json:"progress_percentage"`
	SessionCount        int        `json:"session_count"`
	TotalReadingSeconds int        `json:"total_reading_seconds"`
	TotalPagesRead      int        `json:"total_pages_read"`
	LastRead            *time.Time `json:"last_read"`
}
