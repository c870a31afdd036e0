package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/raushankrgupta/club-feedback/models"
	"github.com/raushankrgupta/club-feedback/utils"
)

const maxSyncBodyBytes = 64 << 10

// SyncHandler stores a JSON submission and mirrors it to the spreadsheet.
// Any method other than POST gets a neutral acknowledgment so the endpoint can be used as an event hook.
func (s *Server) SyncHandler(w http.ResponseWriter, r *http.Request) {
	requestID := utils.NewRequestID()
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(requestID, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Sync API]")

	if r.Method != http.MethodPost {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Acknowledged %s invocation", r.Method))
		utils.RespondJSON(w, http.StatusOK, models.AckResponse{Message: models.AcknowledgeMessage})
		return
	}

	var in models.FeedbackInput
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSyncBodyBytes)).Decode(&in)
	switch {
	case errors.Is(err, io.EOF):
		// An empty body is a submission with every field missing.
		in = models.FeedbackInput{}
	case err != nil:
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Invalid request body: %v", err))
		result := models.Failure(models.KindValidation, fmt.Sprintf("%s: %v", models.InvalidBodyMessage, err), "")
		utils.RespondJSON(w, result.StatusCode(), result.Response())
		return
	}

	result := s.ProcessSubmission(r.Context(), &logMessageBuilder, in)
	utils.RespondJSON(w, result.StatusCode(), result.Response())
}

// ProcessSubmission runs presence check, persistence and sheet sync in order.
// A sync failure does not undo the stored document; the Err carries its id instead.
func (s *Server) ProcessSubmission(ctx context.Context, logMessageBuilder *strings.Builder, in models.FeedbackInput) models.Result {
	if missing := in.MissingFields(); len(missing) > 0 {
		utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Missing fields: %s", strings.Join(missing, ", ")))
		return models.Failure(models.KindValidation, models.MissingFieldsMessage, "")
	}

	entry, err := s.store.CreateFeedback(ctx, in)
	if err != nil {
		utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Persistence failed: %v", err))
		return models.Failure(models.KindPersistence, err.Error(), "")
	}
	utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Record saved: %s", entry.ID.Hex()))

	utils.AddToLogMessage(logMessageBuilder, "Appending row to sheet")
	if err := s.syncer.AppendFeedback(ctx, entry); err != nil {
		utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Sheet sync failed for %s: %v", entry.ID.Hex(), err))
		if s.alerter != nil {
			if alertErr := s.alerter.SendSyncFailureAlert(ctx, entry, err); alertErr != nil {
				utils.AddToLogMessage(logMessageBuilder, fmt.Sprintf("Alert failed: %v", alertErr))
			}
		}
		return models.Failure(models.KindSync, err.Error(), entry.ID.Hex())
	}
	utils.AddToLogMessage(logMessageBuilder, "Record appended to sheet")

	return models.Success(entry.Name, entry.EnrollmentNo)
}
