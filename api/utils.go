package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"tonpulse/auth"
)

// timeNow is swapped out in tests
var timeNow = func() time.Time { return time.Now().UTC() }

// respondJSON writes v as the JSON response body
func respondJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("API Error: failed to encode response: %v", err)
	}
}

// respondWithError logs the error and sends a JSON error response.
// Use this to avoid exposing internal errors while still logging them.
func respondWithError(w http.ResponseWriter, code int, message string, err error) {
	if err != nil {
		log.Printf("API Error [%d]: %s - %v", code, message, err)
	} else {
		log.Printf("API Error [%d]: %s", code, message)
	}
	respondJSON(w, code, map[string]string{"error": message})
}

// getIntParam retrieves an integer query parameter with default value and
// optional range validation
func getIntParam(r *http.Request, key string, defaultVal int, minVal, maxVal *int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}

	if minVal != nil && val < *minVal {
		return defaultVal
	}
	if maxVal != nil && val > *maxVal {
		return defaultVal
	}

	return val
}

var errMissingUserID = errors.New("User ID is required")

// resolveUserID determines the acting user for the request. explicit carries
// an id from the request body when present; query param and header are the
// fallbacks. Verified Telegram init data, when configured, wins over all of
// them.
func (s *Server) resolveUserID(r *http.Request, explicit string) (string, error) {
	if explicit == "" {
		explicit = r.URL.Query().Get("userId")
	}
	if explicit == "" {
		explicit = r.Header.Get("X-User-ID")
	}

	userID, err := s.resolver.Resolve(explicit, r.Header.Get(auth.InitDataHeader))
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", errMissingUserID
	}
	return userID, nil
}

func intPtr(v int) *int {
	return &v
}
