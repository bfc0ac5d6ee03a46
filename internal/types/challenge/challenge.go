package challenge

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeStreak      Type = "streak"
	TypeConsistency Type = "consistency"
	TypePages       Type = "pages"
	TypeCompletion  Type = "completion"
	TypeTime        Type = "time"
)

type Challenge struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	Type         Type      `json:"type" db:"type"`
	TargetValue  int       `json:"target_value" db:"target_value"`
	RewardPoints int       `json:"reward_points" db:"reward_points"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Enrollment is one user's progress against one challenge. Completion is
// one-directional: once IsCompleted flips true it never reverts.
type Enrollment struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	UserID        uuid.UUID  `json:"user_id" db:"user_id"`
	ChallengeID   uuid.UUID  `json:"challenge_id" db:"challenge_id"`
	Progress      int        `json:"progress" db:"progress"`
	IsCompleted   bool       `json:"is_completed" db:"is_completed"`
	CompletedDate *time.Time `json:"completed_date" db:"completed_date"`
	StartedDate   time.Time  `json:"started_date" db:"started_date"`
}

type EnrollmentWithChallenge struct {
	Enrollment
	Challenge *Challenge `json:"challenge"`
}
