package models

import "net/http"

// ErrorKind says which stage of the sync pipeline failed.
type ErrorKind string

const (
	// KindValidation means the request was rejected before any write.
	KindValidation ErrorKind = "validation"
	// KindPersistence means the document was not stored.
	KindPersistence ErrorKind = "persistence"
	// KindSync means the document was stored but the spreadsheet row was not appended.
	KindSync ErrorKind = "sync"
)

const (
	SuccessMessage       = "Feedback processed successfully"
	MissingFieldsMessage = "Missing required fields"
	InvalidBodyMessage   = "Invalid request body"
	AcknowledgeMessage   = "Triggered by event or manual execution"
)

// Ok is the success variant of Result.
type Ok struct {
	Name         string `json:"name"`
	EnrollmentNo string `json:"enrollment_no"`
}

// Err is the failure variant of Result. DocumentID is set only for KindSync.
type Err struct {
	Kind       ErrorKind
	Message    string
	DocumentID string
}

// Result is the outcome of one sync request: exactly one of Ok or Err is set.
type Result struct {
	Ok  *Ok
	Err *Err
}

// Success builds an Ok result echoing the submitter.
func Success(name, enrollmentNo string) Result {
	return Result{Ok: &Ok{Name: name, EnrollmentNo: enrollmentNo}}
}

// Failure builds an Err result.
func Failure(kind ErrorKind, message, documentID string) Result {
	return Result{Err: &Err{Kind: kind, Message: message, DocumentID: documentID}}
}

// StatusCode maps the result onto an HTTP status.
func (r Result) StatusCode() int {
	if r.Err == nil {
		return http.StatusOK
	}
	if r.Err.Kind == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// SyncResponse is the JSON body written by the sync endpoint.
type SyncResponse struct {
	Success    bool      `json:"success"`
	Kind       ErrorKind `json:"kind,omitempty"`
	Message    string    `json:"message"`
	DocumentID string    `json:"document_id,omitempty"`
	Data       *Ok       `json:"data,omitempty"`
}

// Response renders the result in its wire form.
func (r Result) Response() SyncResponse {
	if r.Err == nil {
		return SyncResponse{Success: true, Message: SuccessMessage, Data: r.Ok}
	}
	return SyncResponse{
		Success:    false,
		Kind:       r.Err.Kind,
		Message:    r.Err.Message,
		DocumentID: r.Err.DocumentID,
	}
}

// AckResponse is returned for non-POST invocations.
type AckResponse struct {
	Message string `json:"message"`
}
