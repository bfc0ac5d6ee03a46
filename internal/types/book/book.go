package book

import (
	"time"

	"github.com/google/uuid"
)

type Book struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ArchiveID     string    `json:"archive_id" db:"archive_id"`
	Title         string    `json:"title" db:"title"`
	Authors       string    `json:"authors" db:"authors"`
	Description   string    `json:"description" db:"description"`
	ISBN          string    `json:"isbn" db:"isbn"`
	PageCount     int       `json:"page_count" db:"page_count"`
	Thumbnail     string    `json:"thumbnail" db:"thumbnail"`
	PublishedDate string    `json:"published_date" db:"published_date"`
	Publisher     string    `json:"publisher" db:"publisher"`
	Language      string    `json:"language" db:"language"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type CreateBookRequest struct {
	ArchiveID     string `json:"archive_id"`
	Title         string `json:"title"`
	Authors       string `json:"authors"`
	Description   string `json:"description"`
	ISBN          string `json:"isbn"`
	PageCount     int    `json:"page_count"`
	Thumbnail     string `json:"thumbnail"`
	PublishedDate string `json:"published_date"`
	Publisher     string `json:"publisher"`
	Language      string `json:"language"`
}

// Content is the reader payload for a book's full text, together with the
// caller's cached position and accumulated session totals.
type Content struct {
	BookID              uuid.UUID `json:"book_id"`
	ArchiveID           string    `json:"archive_id"`
	Title               string    `json:"title"`
	Author              string    `json:"author"`
	Content             string    `json:"content"`
	TotalChars          int       `json:"total_chars"`
	CurrentPosition     int64     `json:"current_position"`
	ProgressPercentage  float64   `json:"progress_percentage"`
	WordCount           int       `json:"word_count"`
	TotalReadingSeconds int       `json:"total_reading_seconds"`
	TotalPagesRead      int       `json:"total_pages_read"`
	EstimatedTotalPages int       `json:"estimated_total_pages"`
}
