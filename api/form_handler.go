package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/club-feedback/models"
	"github.com/raushankrgupta/club-feedback/utils"
)

type formView struct {
	Input   models.FeedbackInput
	Errors  models.FieldErrors
	Banner  string
	Success bool
}

// FormHandler serves the feedback form on GET and stores valid submissions on POST.
// This path writes straight to the store and does not touch the spreadsheet.
func (s *Server) FormHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.renderForm(w, http.StatusOK, formView{})
	case http.MethodPost:
		s.submitForm(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	requestID := utils.NewRequestID()
	var logMessageBuilder strings.Builder
	defer utils.FlushLogMessage(requestID, &logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Feedback Form]")

	if err := r.ParseForm(); err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Error parsing form data: %v", err))
		s.renderForm(w, http.StatusBadRequest, formView{Banner: "Could not read the submitted form. Please try again."})
		return
	}

	in := models.FeedbackInput{
		Name:         r.PostFormValue("name"),
		EnrollmentNo: r.PostFormValue("enrollment_no"),
		Feedback:     r.PostFormValue("feedback"),
	}

	if errs := in.Validate(); len(errs) > 0 {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Validation failed on %d field(s)", len(errs)))
		s.renderForm(w, http.StatusUnprocessableEntity, formView{Input: in, Errors: errs})
		return
	}

	entry, err := s.store.CreateFeedback(r.Context(), in)
	if err != nil {
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Error saving feedback: %v", err))
		s.renderForm(w, http.StatusBadGateway, formView{Input: in, Banner: err.Error()})
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Feedback saved: %s", entry.ID.Hex()))
	s.renderForm(w, http.StatusOK, formView{Success: true})
}

func (s *Server) renderForm(w http.ResponseWriter, status int, view formView) {
	if view.Errors == nil {
		view.Errors = models.FieldErrors{}
	}
	var body strings.Builder
	if err := s.templates.ExecuteTemplate(&body, "form.html", view); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprint(w, body.String())
}
