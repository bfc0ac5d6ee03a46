package streak

import (
	"time"

	"github.com/google/uuid"
)

// UserStreak is the slice of the users row the engine owns: consecutive-day
// counters plus the timestamp of the last ledger update that advanced them.
type UserStreak struct {
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	CurrentStreak   int        `json:"current_streak" db:"current_streak"`
	LongestStreak   int        `json:"longest_streak" db:"longest_streak"`
	LastReadingDate *time.Time `json:"last_reading_date" db:"last_reading_date"`
}

// DailyReading is the ledger: at most one row per (user_id, reading_date),
// accumulating seconds and pages across all of that day's sessions.
type DailyReading struct {
	ID             uuid.UUID `json:"id" db:"id"`
	UserID         uuid.UUID `json:"user_id" db:"user_id"`
	ReadingDate    time.Time `json:"reading_date" db:"reading_date"`
	ReadingSeconds int       `json:"reading_seconds" db:"reading_seconds"`
	PageCount      int       `json:"page_count" db:"page_count"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
