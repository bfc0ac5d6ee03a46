package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"readMoreAPI/internal/cache"
	"readMoreAPI/internal/engine"
	"readMoreAPI/internal/types/book"
	"readMoreAPI/internal/types/session"
)

// ReaderService owns reading sessions and the transient position cache, and
// feeds finished sessions into the streak engine.
type ReaderService struct {
	db          *pgxpool.Pool
	bookService *BookService
	positions   cache.PositionStore
	engine      *engine.Engine
}

func NewReaderService(db *pgxpool.Pool, bookService *BookService, positions cache.PositionStore, eng *engine.Engine) *ReaderService {
	return &ReaderService{
		db:          db,
		bookService: bookService,
		positions:   positions,
		engine:      eng,
	}
}

func (s *ReaderService) StartSession(ctx context.Context, clerkID string, req *session.StartSessionRequest) (*session.StartSessionResponse, error) {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	b, err := s.bookService.GetBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	sess := &session.Session{
		ID:            uuid.New(),
		UserID:        userID,
		BookID:        req.BookID,
		StartPosition: req.CurrentPosition,
		StartedAt:     time.Now(),
	}

	query := `
	INSERT INTO reading_sessions (id, user_id, book_id, start_position, pages_read, duration_minutes, started_at)
	VALUES ($1, $2, $3, $4, 0, 0, $5)
	`

	_, err = s.db.Exec(ctx, query, sess.ID, sess.UserID, sess.BookID, sess.StartPosition, sess.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to start reading session: %w", err)
	}

	// Best effort: losing the cached position never fails the session.
	if err := s.positions.SetPosition(ctx, userID, req.BookID, req.CurrentPosition); err != nil {
		log.Printf("Failed to cache reading position for %s: %v", userID, err)
	}

	return &session.StartSessionResponse{
		SessionID:          sess.ID,
		CurrentPosition:    req.CurrentPosition,
		ProgressPercentage: progressPercentage(req.CurrentPosition, b),
	}, nil
}

// EndSession stamps the session's duration and final position, then reports
// the deltas to the streak engine as one reading event.
func (s *ReaderService) EndSession(ctx context.Context, clerkID string, sessionID uuid.UUID, req *session.EndSessionRequest) (*session.EndSessionResponse, error) {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	var sess session.Session
	query := `
	SELECT id, user_id, book_id, start_position, pages_read, duration_minutes, started_at, ended_at
	FROM reading_sessions
	WHERE id = $1 AND user_id = $2
	`
	err = s.db.QueryRow(ctx, query, sessionID, userID).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.BookID,
		&sess.StartPosition,
		&sess.PagesRead,
		&sess.DurationMinutes,
		&sess.StartedAt,
		&sess.EndedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get reading session: %w", err)
	}
	if sess.EndedAt != nil {
		return nil, ErrNotFound
	}

	pagesRead := pagesBetween(sess.StartPosition, req.FinalPosition)

	update := `
	UPDATE reading_sessions
	SET pages_read = $2, duration_minutes = $3, ended_at = NOW()
	WHERE id = $1
	`
	if _, err := s.db.Exec(ctx, update, sessionID, pagesRead, req.DurationMinutes); err != nil {
		return nil, fmt.Errorf("failed to end reading session: %w", err)
	}

	if err := s.positions.SetPosition(ctx, userID, sess.BookID, req.FinalPosition); err != nil {
		log.Printf("Failed to cache reading position for %s: %v", userID, err)
	}

	// The engine call is the reading event proper: ledger, streak and
	// challenge updates commit atomically inside it.
	result, err := s.engine.RecordReading(ctx, userID, req.DurationMinutes*60, pagesRead)
	if err != nil {
		return nil, fmt.Errorf("failed to record reading event: %w", err)
	}

	var totalSeconds, totalPages int
	totals := `
	SELECT COALESCE(SUM(duration_minutes), 0) * 60, COALESCE(SUM(pages_read), 0)
	FROM reading_sessions
	WHERE user_id = $1 AND book_id = $2
	`
	if err := s.db.QueryRow(ctx, totals, userID, sess.BookID).Scan(&totalSeconds, &totalPages); err != nil {
		return nil, fmt.Errorf("failed to get session totals: %w", err)
	}

	return &session.EndSessionResponse{
		SessionDuration:     req.DurationMinutes,
		TotalReadingSeconds: totalSeconds,
		TotalPagesRead:      totalPages,
		FinalPosition:       req.FinalPosition,
		CurrentStreak:       result.CurrentStreak,
		LongestStreak:       result.LongestStreak,
	}, nil
}

// UpdatePosition refreshes the cached position without creating a session.
func (s *ReaderService) UpdatePosition(ctx context.Context, clerkID string, req *session.UpdatePositionRequest) error {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return err
	}
	return s.positions.SetPosition(ctx, userID, req.BookID, req.Position)
}

func (s *ReaderService) GetBookStats(ctx context.Context, clerkID string, bookID uuid.UUID) (*session.BookStats, error) {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	b, err := s.bookService.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	stats := &session.BookStats{BookID: bookID}
	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(duration_minutes), 0) * 60,
		COALESCE(SUM(pages_read), 0),
		MAX(started_at)
	FROM reading_sessions
	WHERE user_id = $1 AND book_id = $2
	`
	err = s.db.QueryRow(ctx, query, userID, bookID).Scan(
		&stats.SessionCount,
		&stats.TotalReadingSeconds,
		&stats.TotalPagesRead,
		&stats.LastRead,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get book stats: %w", err)
	}

	position, err := s.positions.GetPosition(ctx, userID, bookID)
	if err != nil {
		log.Printf("Failed to read cached position for %s: %v", userID, err)
		position = 0
	}
	stats.CurrentPosition = position
	stats.ProgressPercentage = progressPercentage(position, b)

	return stats, nil
}

func (s *ReaderService) GetSessions(ctx context.Context, clerkID string, bookID uuid.UUID) ([]*session.Session, error) {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, book_id, start_position, pages_read, duration_minutes, started_at, ended_at
	FROM reading_sessions
	WHERE user_id = $1 AND book_id = $2
	ORDER BY started_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID, bookID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reading sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*session.Session
	for rows.Next() {
		sess := &session.Session{}
		err := rows.Scan(
			&sess.ID,
			&sess.UserID,
			&sess.BookID,
			&sess.StartPosition,
			&sess.PagesRead,
			&sess.DurationMinutes,
			&sess.StartedAt,
			&sess.EndedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reading session: %w", err)
		}
		sessions = append(sessions, sess)
	}

	return sessions, rows.Err()
}

// GetBookContent proxies the book text together with the reader's cached
// position and accumulated totals.
func (s *ReaderService) GetBookContent(ctx context.Context, clerkID string, bookID uuid.UUID) (*book.Content, error) {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	b, err := s.bookService.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	text, err := s.bookService.FetchContent(ctx, b.ArchiveID)
	if err != nil {
		return nil, err
	}

	position, err := s.positions.GetPosition(ctx, userID, bookID)
	if err != nil {
		log.Printf("Failed to read cached position for %s: %v", userID, err)
		position = 0
	}

	var totalSeconds, totalPages int
	totals := `
	SELECT COALESCE(SUM(duration_minutes), 0) * 60, COALESCE(SUM(pages_read), 0)
	FROM reading_sessions
	WHERE user_id = $1 AND book_id = $2
	`
	if err := s.db.QueryRow(ctx, totals, userID, bookID).Scan(&totalSeconds, &totalPages); err != nil {
		return nil, fmt.Errorf("failed to get session totals: %w", err)
	}

	totalChars := len(text)
	progress := 0.0
	if totalChars > 0 {
		progress = float64(position) / float64(totalChars) * 100
		if progress > 100 {
			progress = 100
		}
	}

	return &book.Content{
		BookID:              b.ID,
		ArchiveID:           b.ArchiveID,
		Title:               b.Title,
		Author:              b.Authors,
		Content:             text,
		TotalChars:          totalChars,
		CurrentPosition:     position,
		ProgressPercentage:  progress,
		WordCount:           countWords(text),
		TotalReadingSeconds: totalSeconds,
		TotalPagesRead:      totalPages,
		EstimatedTotalPages: EstimatePages(totalChars),
	}, nil
}

// pagesBetween converts a position delta into whole pages. Moving backwards
// counts as zero pages, not negative.
func pagesBetween(start, end int64) int {
	if end <= start {
		return 0
	}
	return int((end - start) / charsPerPage)
}

func progressPercentage(position int64, b *book.Book) float64 {
	if b.PageCount <= 0 {
		return 0
	}
	totalChars := int64(b.PageCount) * charsPerPage
	progress := float64(position) / float64(totalChars) * 100
	if progress > 100 {
		return 100
	}
	return progress
}

func countWords(text string) int {
	count := 0
	inWord := false
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r':
			inWord = false
		default:
			if !inWord {
				count++
			}
			inWord = true
		}
	}
	return count
}

func (s *ReaderService) userIDForClerk(ctx context.Context, clerkID string) (uuid.UUID, error) {
	var userID uuid.UUID
	err := s.db.QueryRow(ctx, `SELECT id FROM users WHERE clerk_id = $1`, clerkID).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("failed to find user: %w", err)
	}
	return userID, nil
}
