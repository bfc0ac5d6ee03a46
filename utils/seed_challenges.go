package utils

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"readMoreAPI/internal/types/challenge"
)

// DefaultChallenges returns the initial catalog. The STREAK entries cover
// every milestone the engine can award automatically, so an organic streak
// always has a catalog row to attach its award to.
func DefaultChallenges() []*challenge.Challenge {
	return []*challenge.Challenge{
		{Name: "First Spark", Description: "Read 3 days in a row", Type: challenge.TypeStreak, TargetValue: 3, RewardPoints: 20, IsActive: true},
		{Name: "Warm-up Streak", Description: "Read for 7 days in a row", Type: challenge.TypeStreak, TargetValue: 7, RewardPoints: 50, IsActive: true},
		{Name: "Fortnight Flame", Description: "Keep a 14-day reading streak", Type: challenge.TypeStreak, TargetValue: 14, RewardPoints: 80, IsActive: true},
		{Name: "Unbreakable Chain", Description: "Maintain a 30-day reading streak", Type: challenge.TypeStreak, TargetValue: 30, RewardPoints: 200, IsActive: true},
		{Name: "Season of Pages", Description: "Read every day for 90 days", Type: challenge.TypeStreak, TargetValue: 90, RewardPoints: 400, IsActive: true},
		{Name: "Year of Reading", Description: "A full year of daily reading", Type: challenge.TypeStreak, TargetValue: 365, RewardPoints: 1000, IsActive: true},
		{Name: "Page a Day", Description: "Read at least one page every day for 14 days", Type: challenge.TypeConsistency, TargetValue: 14, RewardPoints: 100, IsActive: true},
		{Name: "Bookworm Initiate", Description: "Finish your first 5 books", Type: challenge.TypeCompletion, TargetValue: 5, RewardPoints: 150, IsActive: true},
		{Name: "Marathon Reader", Description: "Read 10,000 pages in total", Type: challenge.TypePages, TargetValue: 10000, RewardPoints: 500, IsActive: true},
	}
}

// SeedChallenges inserts any missing default catalog entries, keyed by name.
// Safe to run on every startup.
func SeedChallenges(ctx context.Context, db *pgxpool.Pool) error {
	query := `
	INSERT INTO challenges (id, name, description, type, target_value, reward_points, is_active, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
	ON CONFLICT (name) DO NOTHING
	`

	seeded := 0
	for _, ch := range DefaultChallenges() {
		result, err := db.Exec(ctx, query,
			uuid.New(),
			ch.Name,
			ch.Description,
			ch.Type,
			ch.TargetValue,
			ch.RewardPoints,
			ch.IsActive,
		)
		if err != nil {
			return fmt.Errorf("failed to seed challenge %q: %w", ch.Name, err)
		}
		seeded += int(result.RowsAffected())
	}

	if seeded > 0 {
		log.Printf("Seeded %d default challenges", seeded)
	}
	return nil
}
