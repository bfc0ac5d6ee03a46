package library

import (
	"time"

	"github.com/google/uuid"

	"readMoreAPI/internal/types/book"
)

type ReadingStatus string

const (
	StatusWantToRead ReadingStatus = "want_to_read"
	StatusReading    ReadingStatus = "reading"
	StatusCompleted  ReadingStatus = "completed"
)

func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusWantToRead, StatusReading, StatusCompleted:
		return true
	}
	return false
}

type Entry struct {
	ID            uuid.UUID     `json:"id" db:"id"`
	UserID        uuid.UUID     `json:"user_id" db:"user_id"`
	BookID        uuid.UUID     `json:"book_id" db:"book_id"`
	IsFavorite    bool          `json:"is_favorite" db:"is_favorite"`
	ReadingStatus ReadingStatus `json:"reading_status" db:"reading_status"`
	AddedAt       time.Time     `json:"added_at" db:"added_at"`
}

type EntryWithBook struct {
	Entry
	Book *book.Book `json:"book"`
}

type AddBookRequest struct {
	BookID     uuid.UUID `json:"book_id"`
	IsFavorite bool      `json:"is_favorite"`
}

type UpdateStatusRequest struct {
	ReadingStatus ReadingStatus `json:"reading_status"`
}
