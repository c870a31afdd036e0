package api

import (
	"context"
	"net/http"
	"time"

	"github.com/raushankrgupta/club-feedback/utils"
)

// HealthHandler reports whether the document store answers a ping.
func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		utils.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  err.Error(),
		})
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
