package utils

import (
	"testing"

	"readMoreAPI/internal/types/challenge"
)

func TestDefaultChallengesCoverStreakMilestones(t *testing.T) {
	milestones := []int{3, 7, 14, 30, 90, 365}

	byTarget := make(map[int]bool)
	for _, ch := range DefaultChallenges() {
		if ch.Type == challenge.TypeStreak {
			byTarget[ch.TargetValue] = true
		}
	}

	for _, m := range milestones {
		if !byTarget[m] {
			t.Errorf("no STREAK catalog entry for milestone %d", m)
		}
	}
}

func TestDefaultChallengesHaveUniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, ch := range DefaultChallenges() {
		if seen[ch.Name] {
			t.Errorf("duplicate challenge name %q", ch.Name)
		}
		seen[ch.Name] = true

		if ch.TargetValue <= 0 {
			t.Errorf("challenge %q has non-positive target %d", ch.Name, ch.TargetValue)
		}
	}
}
