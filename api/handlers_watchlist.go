package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tonpulse/auth"
)

type watchlistRequest struct {
	Action       string `json:"action"`
	TokenAddress string `json:"tokenAddress"`
	UserID       string `json:"userId"`
}

func (s *Server) handleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	userID, err := s.resolveUserID(r, "")
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInitData) {
			respondWithError(w, http.StatusUnauthorized, "Invalid Telegram init data", err)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	addresses, err := s.watchlists.List(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch watchlist", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"addresses": addresses})
}

func (s *Server) handleUpdateWatchlist(w http.ResponseWriter, r *http.Request) {
	var req watchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if strings.TrimSpace(req.TokenAddress) == "" {
		respondWithError(w, http.StatusBadRequest, "Token address is required", nil)
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

	switch req.Action {
	case "add":
		err = s.watchlists.Add(r.Context(), userID, req.TokenAddress)
	case "remove":
		err = s.watchlists.Remove(r.Context(), userID, req.TokenAddress)
	default:
		respondWithError(w, http.StatusBadRequest, "Action must be add or remove", nil)
		return
	}
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to update watchlist", err)
		return
	}

	addresses, err := s.watchlists.List(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch watchlist", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"addresses": addresses,
	})
}
