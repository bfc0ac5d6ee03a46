package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"readMoreAPI/middleware"
	"readMoreAPI/services"
)

type ChallengeHandler struct {
	challengeService *services.ChallengeService
}

func NewChallengeHandler(challengeService *services.ChallengeService) *ChallengeHandler {
	return &ChallengeHandler{
		challengeService: challengeService,
	}
}

func (h *ChallengeHandler) GetChallenges(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	challenges, err := h.challengeService.GetActiveChallenges(ctx)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get challenges")
		return
	}

	respondWithJSON(w, http.StatusOK, challenges)
}

func (h *ChallengeHandler) GetUserProgress(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	enrollments, err := h.challengeService.GetUserProgress(ctx, clerkID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to get challenge progress")
		return
	}

	respondWithJSON(w, http.StatusOK, enrollments)
}

func (h *ChallengeHandler) StartChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["challengeId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	enr, err := h.challengeService.StartChallenge(ctx, clerkID, challengeID)
	if err != nil {
		respondWithServiceError(w, err, "Failed to start challenge")
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"message":           "Challenge started successfully",
		"user_challenge_id": enr.ID,
	})
}

func (h *ChallengeHandler) AbandonChallenge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	challengeID, err := uuid.Parse(mux.Vars(r)["challengeId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid challenge id")
		return
	}

	if err := h.challengeService.AbandonChallenge(ctx, clerkID, challengeID); err != nil {
		respondWithServiceError(w, err, "Failed to abandon challenge")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Challenge abandoned successfully"})
}
