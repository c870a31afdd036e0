package utils

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/raushankrgupta/club-feedback/logger"
)

// RespondJSON sends a JSON response with the given status code and payload.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent, nothing left to do but log.
		logger.GetLogger().Errorw("Error encoding JSON response", "error", err)
	}
}

// RespondError sends a JSON error response and records message in the request log.
func RespondError(w http.ResponseWriter, logBuilder *strings.Builder, message string, status int) {
	if logBuilder != nil {
		AddToLogMessage(logBuilder, message)
	} else {
		logger.GetLogger().Warnw("Request error", "message", message, "status", status)
	}
	RespondJSON(w, status, map[string]string{"error": message})
}

// LatencyMiddleware logs the duration of each request
func LatencyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.GetLogger().Infow("Request served", "method", r.Method, "path", r.URL.Path, "latency", time.Since(start))
	})
}

// CORSMiddleware allows browser clients on other origins to call the API.
// Only preflight requests are answered here; a plain OPTIONS call reaches the handler.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
