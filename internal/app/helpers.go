package app

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/klabast/wb-services/advent-kalender/internal/calendar"
)

// RequireMethod validates that the request uses the specified HTTP method
func RequireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

// ParseDay reads a window number from a path value or query parameter
func ParseDay(raw string) (int, bool) {
	day, err := strconv.Atoi(raw)
	if err != nil || !calendar.ValidDay(day) {
		return 0, false
	}
	return day, true
}

// writeJSON encodes v and logs any error through the server logger
func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorw("Error encoding response", "error", err)
	}
}
