package handlers

import (
	"context"
	"net/http"
	"time"

	"readMoreAPI/middleware"
	"readMoreAPI/services"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	u, err := h.userService.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get profile")
		return
	}

	respondWithJSON(w, http.StatusOK, u)
}

func (h *UserHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	st, err := h.userService.GetStreak(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get streak")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"current_streak":    st.CurrentStreak,
		"longest_streak":    st.LongestStreak,
		"last_reading_date": st.LastReadingDate,
	})
}

func (h *UserHandler) GetReadingStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	stats, err := h.userService.GetReadingStats(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get reading stats")
		return
	}

	respondWithJSON(w, http.StatusOK, stats)
}
