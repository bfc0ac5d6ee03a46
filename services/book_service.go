package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"readMoreAPI/internal/types/book"
	"readMoreAPI/internal/types/library"
)

// charsPerPage is the page estimate used when the archive does not report a
// page count. Matches the reader's client-side pagination.
const charsPerPage = 1800

type BookService struct {
	db         *pgxpool.Pool
	httpClient *http.Client
}

func NewBookService(db *pgxpool.Pool) *BookService {
	return &BookService{
		db: db,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (s *BookService) CreateBook(ctx context.Context, req *book.CreateBookRequest) (*book.Book, error) {
	b := &book.Book{
		ID:            uuid.New(),
		ArchiveID:     req.ArchiveID,
		Title:         req.Title,
		Authors:       req.Authors,
		Description:   req.Description,
		ISBN:          req.ISBN,
		PageCount:     req.PageCount,
		Thumbnail:     req.Thumbnail,
		PublishedDate: req.PublishedDate,
		Publisher:     req.Publisher,
		Language:      req.Language,
		CreatedAt:     time.Now(),
	}
	if b.Language == "" {
		b.Language = "en"
	}

	query := `
	INSERT INTO books (id, archive_id, title, authors, description, isbn, page_count, thumbnail, published_date, publisher, language, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT (archive_id) DO UPDATE SET title = EXCLUDED.title
	RETURNING id
	`

	err := s.db.QueryRow(ctx, query,
		b.ID,
		b.ArchiveID,
		b.Title,
		b.Authors,
		b.Description,
		b.ISBN,
		b.PageCount,
		b.Thumbnail,
		b.PublishedDate,
		b.Publisher,
		b.Language,
		b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	return b, nil
}

func (s *BookService) GetBook(ctx context.Context, bookID uuid.UUID) (*book.Book, error) {
	query := `
	SELECT id, archive_id, title, authors, description, isbn, page_count, thumbnail, published_date, publisher, language, created_at
	FROM books
	WHERE id = $1
	`

	b := &book.Book{}
	err := s.db.QueryRow(ctx, query, bookID).Scan(
		&b.ID,
		&b.ArchiveID,
		&b.Title,
		&b.Authors,
		&b.Description,
		&b.ISBN,
		&b.PageCount,
		&b.Thumbnail,
		&b.PublishedDate,
		&b.Publisher,
		&b.Language,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}

	return b, nil
}

// FetchContent downloads the plain-text rendition of a book from the
// Internet Archive.
func (s *BookService) FetchContent(ctx context.Context, archiveID string) (string, error) {
	if archiveID == "" {
		return "", ErrNotFound
	}

	contentURL := fmt.Sprintf("https://archive.org/download/%s/%s.txt", archiveID, archiveID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build content request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch book content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", ErrNotFound
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read book content: %w", err)
	}

	return string(body), nil
}

// EstimatePages approximates a page count from raw character length.
func EstimatePages(totalChars int) int {
	pages := totalChars / charsPerPage
	if pages < 1 {
		return 1
	}
	return pages
}

func (s *BookService) GetLibrary(ctx context.Context, clerkID string) ([]*library.EntryWithBook, error) {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		ul.id, ul.user_id, ul.book_id, ul.is_favorite, ul.reading_status, ul.added_at,
		b.id, b.archive_id, b.title, b.authors, b.description, b.isbn, b.page_count, b.thumbnail, b.published_date, b.publisher, b.language, b.created_at
	FROM user_library ul
	JOIN books b ON b.id = ul.book_id
	WHERE ul.user_id = $1
	ORDER BY ul.added_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch library: %w", err)
	}
	defer rows.Close()

	var entries []*library.EntryWithBook
	for rows.Next() {
		entry := &library.EntryWithBook{Book: &book.Book{}}
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.BookID,
			&entry.IsFavorite,
			&entry.ReadingStatus,
			&entry.AddedAt,
			&entry.Book.ID,
			&entry.Book.ArchiveID,
			&entry.Book.Title,
			&entry.Book.Authors,
			&entry.Book.Description,
			&entry.Book.ISBN,
			&entry.Book.PageCount,
			&entry.Book.Thumbnail,
			&entry.Book.PublishedDate,
			&entry.Book.Publisher,
			&entry.Book.Language,
			&entry.Book.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan library entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (s *BookService) AddToLibrary(ctx context.Context, clerkID string, req *library.AddBookRequest) (*library.Entry, error) {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetBook(ctx, req.BookID); err != nil {
		return nil, err
	}

	entry := &library.Entry{
		ID:            uuid.New(),
		UserID:        userID,
		BookID:        req.BookID,
		IsFavorite:    req.IsFavorite,
		ReadingStatus: library.StatusWantToRead,
		AddedAt:       time.Now(),
	}

	query := `
	INSERT INTO user_library (id, user_id, book_id, is_favorite, reading_status, added_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (user_id, book_id) DO NOTHING
	`

	_, err = s.db.Exec(ctx, query, entry.ID, entry.UserID, entry.BookID, entry.IsFavorite, entry.ReadingStatus, entry.AddedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to add book to library: %w", err)
	}

	return entry, nil
}

func (s *BookService) RemoveFromLibrary(ctx context.Context, clerkID string, bookID uuid.UUID) error {
	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM user_library WHERE user_id = $1 AND book_id = $2`, userID, bookID)
	if err != nil {
		return fmt.Errorf("failed to remove book from library: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BookService) UpdateReadingStatus(ctx context.Context, clerkID string, bookID uuid.UUID, status library.ReadingStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid reading status %q", status)
	}

	userID, err := s.userIDForClerk(ctx, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		`UPDATE user_library SET reading_status = $3 WHERE user_id = $1 AND book_id = $2`,
		userID, bookID, status)
	if err != nil {
		return fmt.Errorf("failed to update reading status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BookService) userIDForClerk(ctx context.Context, clerkID string) (uuid.UUID, error) {
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
