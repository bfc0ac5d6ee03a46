package services

import (
	"testing"

	"readMoreAPI/internal/types/book"
)

func TestPagesBetween(t *testing.T) {
	tests := []struct {
		name  string
		start int64
		end   int64
		want  int
	}{
		{"no movement", 1000, 1000, 0},
		{"backwards", 5000, 1000, 0},
		{"less than a page", 0, 1700, 0},
		{"exactly one page", 0, 1800, 1},
		{"several pages", 3600, 12600, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := pagesBetween(tt.start, tt.end); got != tt.want {
				t.Errorf("pagesBetween(%d, %d) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

func TestEstimatePages(t *testing.T) {
	if got := EstimatePages(0); got != 1 {
		t.Errorf("EstimatePages(0) = %d, want 1", got)
	}
	if got := EstimatePages(1800 * 250); got != 250 {
		t.Errorf("EstimatePages(450000) = %d, want 250", got)
	}
}

func TestProgressPercentage(t *testing.T) {
	b := &book.Book{PageCount: 100}

	if got := progressPercentage(0, b); got != 0 {
		t.Errorf("progress at start = %f, want 0", got)
	}
	if got := progressPercentage(90000, b); got != 50 {
		t.Errorf("progress at midpoint = %f, want 50", got)
	}
	// Positions past the end clamp to 100.
	if got := progressPercentage(1800*100+5000, b); got != 100 {
		t.Errorf("progress past end = %f, want 100", got)
	}
	// No page count means no denominator.
	if got := progressPercentage(5000, &book.Book{}); got != 0 {
		t.Errorf("progress without page count = %f, want 0", got)
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   ", 0},
		{"one", 1},
		{"it was the best of times", 6},
		{"line\nbreaks\tand   runs of spaces", 6},
	}

	for _, tt := range tests {
		if got := countWords(tt.text); got != tt.want {
			t.Errorf("countWords(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}
