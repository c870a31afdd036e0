package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/raushankrgupta/club-feedback/models"
	"github.com/raushankrgupta/club-feedback/utils"
)

const defaultListLimit = 100

type contextKey string

const adminContextKey contextKey = "admin"

// AdminMiddleware admits requests bearing a valid admin token.
func (s *Server) AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			utils.RespondError(w, nil, "Authorization header required", http.StatusUnauthorized)
			return
		}

		subject, err := utils.ValidateAdminToken(s.jwtSecret, tokenString)
		if err != nil {
			utils.RespondError(w, nil, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), adminContextKey, subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAdminFromContext returns the token subject set by AdminMiddleware.
func GetAdminFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(adminContextKey).(string)
	if !ok {
		return "", errors.New("admin not found in context")
	}
	return subject, nil
}

// ListFeedbackHandler returns stored entries, newest first.
func (s *Server) ListFeedbackHandler(w http.ResponseWriter, r *http.Request) {
	requestID := utils.NewRequestID()
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(requestID, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Admin List API]")

	if r.Method != http.MethodGet {
		utils.RespondError(w, &logMessageBuilder, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	admin, _ := GetAdminFromContext(r.Context())
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Requested by %s", admin))

	limit := int64(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 {
			utils.RespondError(w, &logMessageBuilder, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	entries, err := s.store.ListFeedback(r.Context(), limit)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("List failed: %v", err))
		utils.RespondError(w, &logMessageBuilder, "Error fetching feedback", http.StatusInternalServerError)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Returned %d entries", len(entries)))
	utils.RespondJSON(w, http.StatusOK, struct {
		Count   int                    `json:"count"`
		Entries []models.FeedbackEntry `json:"entries"`
	}{Count: len(entries), Entries: entries})
}
