package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"tonpulse/auth"
	"tonpulse/database"
	models "tonpulse/database/models_pkg"
	"tonpulse/database/sentiment"
)

const (
	sentimentAllCacheKey = "sentiment:all"
)

// sentimentResponse flattens the record into the response body with the
// history buckets alongside it
type sentimentResponse struct {
	models.Sentiment
	History map[string][]string `json:"history"`
}

type voteRequest struct {
	Vote   string `json:"vote"`
	UserID string `json:"userId"`
}

type allSentimentsResponse struct {
	Tokens []models.Sentiment `json:"tokens"`
	Stats  sentiment.Stats    `json:"stats"`
}

func sentimentCacheKey(address string) string {
	return fmt.Sprintf("sentiment:%s", strings.ToLower(address))
}

func (s *Server) handleGetSentiment(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.PathValue("address"))
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "Token address is required", nil)
		return
	}

	cacheKey := sentimentCacheKey(address)
	var cached sentimentResponse
	if s.cache.Get(r.Context(), cacheKey, &cached) {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	record, err := s.sentiments.GetSentiment(r.Context(), address)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch sentiment", err)
		return
	}

	// Rank requires the full ordering. Ranking failures are not worth failing
	// the whole read for.
	if all, err := s.sentiments.GetAllSentiments(r.Context()); err == nil {
		for _, other := range all {
			if other.Address == record.Address {
				record.Rank = other.Rank
				break
			}
		}
	}

	resp := sentimentResponse{
		Sentiment: *record,
		// Vote-level history retention is not implemented yet; clients get
		// the buckets they expect, empty.
		History: map[string][]string{"1D": {}, "7D": {}, "1M": {}},
	}

	s.cache.Set(r.Context(), cacheKey, resp, s.cacheTTL)
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.PathValue("address"))
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "Token address is required", nil)
		return
	}

	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	userID, err := s.resolveUserID(r, req.UserID)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInitData) {
			respondWithError(w, http.StatusUnauthorized, "Invalid Telegram init data", err)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	updated, err := s.sentiments.SubmitVote(r.Context(), address, userID, req.Vote)
	if err != nil {
		switch {
		case errors.Is(err, sentiment.ErrAlreadyVoted):
			respondWithError(w, http.StatusBadRequest, "You have already voted for this token in the last 24 hours", nil)
		case database.IsValidationError(err):
			respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, sentiment.ErrPermissionDenied):
			respondWithError(w, http.StatusBadRequest,
				"Database permissions not configured. Please update the access rules.", err)
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to submit vote", err)
		}
		return
	}

	s.cache.Delete(r.Context(), sentimentAllCacheKey)
	s.cache.Delete(r.Context(), sentimentCacheKey(address))

	s.broker.Broadcast("sentiment_update", updated)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"sentiment": updated,
	})
}

func (s *Server) handleVoteStatus(w http.ResponseWriter, r *http.Request) {
	address := strings.TrimSpace(r.PathValue("address"))
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "Token address is required", nil)
		return
	}

	userID, err := s.resolveUserID(r, "")
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInitData) {
			respondWithError(w, http.StatusUnauthorized, "Invalid Telegram init data", err)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	vote, err := s.sentiments.GetUserVote(r.Context(), address, userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch vote status", err)
		return
	}

	if vote == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"hasVoted": false,
			"canVote":  true,
		})
		return
	}

	// hasVoted reports any prior vote, however old; only canVote tracks the
	// cooldown window.
	remaining := sentiment.CooldownRemaining(vote.Timestamp, timeNow())
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"hasVoted":      true,
		"canVote":       remaining == 0,
		"vote":          vote.Choice,
		"timestamp":     vote.Timestamp.UnixMilli(),
		"timeRemaining": remaining.Milliseconds(),
	})
}

func (s *Server) handleGetAllSentiments(w http.ResponseWriter, r *http.Request) {
	var cached allSentimentsResponse
	if s.cache.Get(r.Context(), sentimentAllCacheKey, &cached) {
		respondJSON(w, http.StatusOK, cached)
		return
	}

	if err := s.sentiments.EnsureSentiments(r.Context(), s.contracts); err != nil {
		log.Printf("⚠️  Failed to seed sentiment records: %v", err)
	}

	tokens, err := s.sentiments.GetAllSentiments(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch sentiments", err)
		return
	}

	stats, err := s.sentiments.AggregateStats(r.Context())
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to compute stats", err)
		return
	}

	resp := allSentimentsResponse{Tokens: tokens, Stats: stats}
	s.cache.Set(r.Context(), sentimentAllCacheKey, resp, s.cacheTTL)
	respondJSON(w, http.StatusOK, resp)
}
