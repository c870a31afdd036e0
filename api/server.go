package api

import (
	"context"
	"embed"
	"html/template"
	"net/http"

	"github.com/raushankrgupta/club-feedback/models"
	"github.com/raushankrgupta/club-feedback/utils"
)

//go:embed templates/*.html
var templateFS embed.FS

// FeedbackStore persists and reads feedback entries.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, in models.FeedbackInput) (models.FeedbackEntry, error)
	ListFeedback(ctx context.Context, limit int64) ([]models.FeedbackEntry, error)
	Ping(ctx context.Context) error
}

// SheetSyncer mirrors one stored entry into the review spreadsheet.
type SheetSyncer interface {
	AppendFeedback(ctx context.Context, entry models.FeedbackEntry) error
}

// SyncAlerter is told about entries that were stored but not mirrored.
type SyncAlerter interface {
	SendSyncFailureAlert(ctx context.Context, entry models.FeedbackEntry, syncErr error) error
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	store     FeedbackStore
	syncer    SheetSyncer
	alerter   SyncAlerter
	jwtSecret string
	templates *template.Template
}

// NewServer wires the handlers. alerter may be nil.
func NewServer(store FeedbackStore, syncer SheetSyncer, alerter SyncAlerter, jwtSecret string) *Server {
	return &Server{
		store:     store,
		syncer:    syncer,
		alerter:   alerter,
		jwtSecret: jwtSecret,
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
}

// Routes returns the root handler with CORS and latency logging applied.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.FormHandler)
	mux.HandleFunc("/sync", s.SyncHandler)
	mux.HandleFunc("/healthz", s.HealthHandler)
	mux.Handle("/admin/feedback", s.AdminMiddleware(http.HandlerFunc(s.ListFeedbackHandler)))

	return utils.LatencyMiddleware(utils.CORSMiddleware(mux))
}
