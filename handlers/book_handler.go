package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"readMoreAPI/internal/types/book"
	"readMoreAPI/internal/types/library"
	"readMoreAPI/middleware"
	"readMoreAPI/services"
)

type BookHandler struct {
	bookService *services.BookService
}

func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var req book.CreateBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.ArchiveID == "" || req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "archive_id and title are required")
		return
	}

	b, err := h.bookService.CreateBook(ctx, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to create book")
		return
	}

	respondWithJSON(w, http.StatusCreated, b)
}

func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bookID, err := uuid.Parse(mux.Vars(r)["bookId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid book id")
		return
	}

	b, err := h.bookService.GetBook(ctx, bookID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get book")
		return
	}

	respondWithJSON(w, http.StatusOK, b)
}

func (h *BookHandler) GetLibrary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	entries, err := h.bookService.GetLibrary(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get library")
		return
	}

	respondWithJSON(w, http.StatusOK, entries)
}

func (h *BookHandler) AddToLibrary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req library.AddBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BookID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "book_id is required")
		return
	}

	entry, err := h.bookService.AddToLibrary(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to add book to library")
		return
	}

	respondWithJSON(w, http.StatusCreated, entry)
}

func (h *BookHandler) RemoveFromLibrary(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	bookID, err := uuid.Parse(mux.Vars(r)["bookId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid book id")
		return
	}

	if err := h.bookService.RemoveFromLibrary(ctx, clerkID, bookID); err != nil {
		respondWithServiceError(w, err, "Failed to remove book from library")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Book removed from library"})
}

func (h *BookHandler) UpdateReadingStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	bookID, err := uuid.Parse(mux.Vars(r)["bookId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid book id")
		return
	}

	var req library.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !req.ReadingStatus.Valid() {
		respondWithError(w, http.StatusBadRequest, "Invalid reading status")
		return
	}

	if err := h.bookService.UpdateReadingStatus(ctx, clerkID, bookID, req.ReadingStatus); err != nil {
		respondWithServiceError(w, err, "Failed to update reading status")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Reading status updated"})
}
