package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"readMoreAPI/internal/types/session"
	"readMoreAPI/middleware"
	"readMoreAPI/services"
)

type ReaderHandler struct {
	readerService *services.ReaderService
}

func NewReaderHandler(readerService *services.ReaderService) *ReaderHandler {
	return &ReaderHandler{
		readerService: readerService,
	}
}

func (h *ReaderHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req session.StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BookID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "book_id is required")
		return
	}

	resp, err := h.readerService.StartSession(ctx, clerkID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to start reading session")
		return
	}

	respondWithJSON(w, http.StatusCreated, resp)
}

func (h *ReaderHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	sessionID, err := uuid.Parse(mux.Vars(r)["sessionId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid session id")
		return
	}

	var req session.EndSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.DurationMinutes < 0 || req.FinalPosition < 0 {
		respondWithError(w, http.StatusBadRequest, "duration_minutes and final_position must be non-negative")
		return
	}

	resp, err := h.readerService.EndSession(ctx, clerkID, sessionID, &req)
	if err != nil {
		respondWithServiceError(w, err, "Failed to end reading session")
		return
	}

	respondWithJSON(w, http.StatusOK, resp)
}

func (h *ReaderHandler) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req session.UpdatePositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.BookID == uuid.Nil || req.Position < 0 {
		respondWithError(w, http.StatusBadRequest, "book_id and a non-negative position are required")
		return
	}

	if err := h.readerService.UpdatePosition(ctx, clerkID, &req); err != nil {
		respondWithServiceError(w, err, "Failed to update position")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"current_position": req.Position,
		"message":          "Position updated",
	})
}

func (h *ReaderHandler) GetBookStats(w http.ResponseWriter, r *http.Request) {
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

	stats, err := h.readerService.GetBookStats(ctx, clerkID, bookID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get reading stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}

func (h *ReaderHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
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

	sessions, err := h.readerService.GetSessions(ctx, clerkID, bookID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get reading sessions")
		return
	}

	respondWithJSON(w, http.StatusOK, sessions)
}

func (h *ReaderHandler) GetBookContent(w http.ResponseWriter, r *http.Request) {
	// Content fetches go out to the archive; allow more headroom.
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
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

	content, err := h.readerService.GetBookContent(ctx, clerkID, bookID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get book content")
		return
	}

	respondWithJSON(w, http.StatusOK, content)
}
