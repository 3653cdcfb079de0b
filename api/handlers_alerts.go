package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tonpulse/auth"
	"tonpulse/database"
)

type alertRequest struct {
	TokenAddress string `json:"tokenAddress"`
	Kind         string `json:"type"`
	Enabled      bool   `json:"enabled"`
	TokenSymbol  string `json:"tokenSymbol"`
	TokenName    string `json:"tokenName"`
	UserID       string `json:"userId"`
}

func (s *Server) handleGetAlerts(w http.ResponseWriter, r *http.Request) {
	userID, err := s.resolveUserID(r, "")
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInitData) {
			respondWithError(w, http.StatusUnauthorized, "Invalid Telegram init data", err)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	tokenAddress := strings.TrimSpace(r.URL.Query().Get("tokenAddress"))
	kind := strings.TrimSpace(r.URL.Query().Get("type"))

	// A specific (token, kind) query returns the single flag, otherwise the
	// full per-token map
	if tokenAddress != "" && kind != "" {
		enabled, err := s.alerts.GetAlert(r.Context(), userID, tokenAddress, kind)
		if err != nil {
			if database.IsValidationError(err) {
				respondWithError(w, http.StatusBadRequest, err.Error(), nil)
				return
			}
			respondWithError(w, http.StatusInternalServerError, "Failed to fetch alert", err)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"enabled": enabled})
		return
	}

	all, err := s.alerts.GetUserAlerts(r.Context(), userID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch alerts", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"alerts": all})
}

func (s *Server) handleSetAlert(w http.ResponseWriter, r *http.Request) {
	var req alertRequest
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

	entry, err := s.alerts.SetAlert(r.Context(), userID, req.TokenAddress, req.Kind, req.Enabled, req.TokenSymbol, req.TokenName)
	if err != nil {
		if database.IsValidationError(err) {
			respondWithError(w, http.StatusBadRequest, err.Error(), nil)
			return
		}
		respondWithError(w, http.StatusInternalServerError, "Failed to update alert", err)
		return
	}

	s.notifier.SendAlertToggle(entry)

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"enabled": req.Enabled,
	})
}

func (s *Server) handleGetAlertHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := s.resolveUserID(r, "")
	if err != nil {
		if errors.Is(err, auth.ErrInvalidInitData) {
			respondWithError(w, http.StatusUnauthorized, "Invalid Telegram init data", err)
			return
		}
		respondWithError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	limit := getIntParam(r, "limit", 50, intPtr(1), intPtr(200))

	history, err := s.alerts.GetAlertHistory(r.Context(), userID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch alert history", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"history": history})
}
