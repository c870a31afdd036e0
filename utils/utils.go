package utils

import (
	"strings"

	"github.com/google/uuid"
	"github.com/raushankrgupta/club-feedback/logger"
)

func AddToLogMessage(logMessagesBuilder *strings.Builder, strToAdd string) {

	if logMessagesBuilder.Len() == logMessagesBuilder.Cap() {

		logMessagesBuilder.Grow(len(strToAdd))
	}

	logMessagesBuilder.WriteString(strToAdd)
	logMessagesBuilder.WriteString(";")
	logMessagesBuilder.WriteString("\n")
}

// NewRequestID returns an id used to correlate one request's log lines.
func NewRequestID() string {
	return uuid.New().String()
}

// FlushLogMessage writes the collected request log as one entry.
func FlushLogMessage(requestID string, logMessagesBuilder *strings.Builder) {
	logger.GetLogger().Infow(strings.TrimSpace(logMessagesBuilder.String()), "request_id", requestID)
}
