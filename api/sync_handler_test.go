package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/raushankrgupta/club-feedback/models"
	"github.com/raushankrgupta/club-feedback/sheets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var janeDoe = models.FeedbackInput{
	Name:         "Jane Doe",
	EnrollmentNo: "0111CS221045",
	Feedback:     "Great club, more workshops please",
}

const janeDoeBody = `{"name":"Jane Doe","enrollment_no":"0111CS221045","feedback":"Great club, more workshops please"}`

func postSync(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sync", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeSync(t *testing.T, rec *httptest.ResponseRecorder) models.SyncResponse {
	t.Helper()
	var resp models.SyncResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestSyncHandlerSuccess(t *testing.T) {
	store := new(MockStore)
	syncer := new(MockSyncer)
	entry := storedEntry(janeDoe)
	store.On("CreateFeedback", mock.Anything, janeDoe).Return(entry, nil).Once()
	syncer.On("AppendFeedback", mock.Anything, entry).Return(nil).Once()

	rec := postSync(t, NewServer(store, syncer, nil, ""), janeDoeBody)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"success":true,"message":"Feedback processed successfully","data":{"name":"Jane Doe","enrollment_no":"0111CS221045"}}`,
		rec.Body.String())
	store.AssertNumberOfCalls(t, "CreateFeedback", 1)
	syncer.AssertNumberOfCalls(t, "AppendFeedback", 1)
}

func TestSyncHandlerMissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty name", body: `{"name":"","enrollment_no":"X","feedback":"ok"}`},
		{name: "missing feedback", body: `{"name":"Jane Doe","enrollment_no":"0111CS221045"}`},
		{name: "empty object", body: `{}`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			syncer := new(MockSyncer)

			rec := postSync(t, NewServer(store, syncer, nil, ""), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeSync(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, models.KindValidation, resp.Kind)
			assert.Equal(t, models.MissingFieldsMessage, resp.Message)
			store.AssertNotCalled(t, "CreateFeedback", mock.Anything, mock.Anything)
			syncer.AssertNotCalled(t, "AppendFeedback", mock.Anything, mock.Anything)
		})
	}
}

func TestSyncHandlerPersistenceFailure(t *testing.T) {
	store := new(MockStore)
	syncer := new(MockSyncer)
	store.On("CreateFeedback", mock.Anything, janeDoe).
		Return(models.FeedbackEntry{}, errors.New("failed to save feedback: connection refused")).Once()

	rec := postSync(t, NewServer(store, syncer, nil, ""), janeDoeBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeSync(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, models.KindPersistence, resp.Kind)
	assert.Equal(t, "failed to save feedback: connection refused", resp.Message)
	assert.Empty(t, resp.DocumentID)
	syncer.AssertNotCalled(t, "AppendFeedback", mock.Anything, mock.Anything)
}

func TestSyncHandlerSheetUnreachableLeavesDocumentStored(t *testing.T) {
	store := &memoryStore{}
	syncer := new(MockSyncer)
	alerter := new(MockAlerter)
	syncErr := errors.New("failed to load spreadsheet: dial tcp: connection refused")
	syncer.On("AppendFeedback", mock.Anything, mock.Anything).Return(syncErr).Once()
	alerter.On("SendSyncFailureAlert", mock.Anything, mock.Anything, syncErr).Return(nil).Once()

	rec := postSync(t, NewServer(store, syncer, alerter, ""), janeDoeBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeSync(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, models.KindSync, resp.Kind)
	assert.Equal(t, syncErr.Error(), resp.Message)

	// No rollback: the document is already persisted and the response names it.
	require.Len(t, store.entries, 1)
	assert.Equal(t, store.entries[0].ID.Hex(), resp.DocumentID)
	assert.Equal(t, "Jane Doe", store.entries[0].Name)
	alerter.AssertExpectations(t)
}

func TestSyncHandlerAlertFailureDoesNotChangeResponse(t *testing.T) {
	store := &memoryStore{}
	syncer := new(MockSyncer)
	alerter := new(MockAlerter)
	syncer.On("AppendFeedback", mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))
	alerter.On("SendSyncFailureAlert", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("sendgrid down"))

	rec := postSync(t, NewServer(store, syncer, alerter, ""), janeDoeBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeSync(t, rec)
	assert.Equal(t, models.KindSync, resp.Kind)
	assert.Equal(t, "quota exceeded", resp.Message)
}

func TestSyncHandlerSheetsNotConfigured(t *testing.T) {
	store := &memoryStore{}

	rec := postSync(t, NewServer(store, sheets.Disabled{}, nil, ""), janeDoeBody)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeSync(t, rec)
	assert.Equal(t, models.KindSync, resp.Kind)
	assert.Equal(t, sheets.ErrNotConfigured.Error(), resp.Message)
	assert.Len(t, store.entries, 1)
}

func TestSyncHandlerResubmitCreatesTwoDocuments(t *testing.T) {
	store := &memoryStore{}
	syncer := new(MockSyncer)
	syncer.On("AppendFeedback", mock.Anything, mock.Anything).Return(nil)
	server := NewServer(store, syncer, nil, "")

	first := postSync(t, server, janeDoeBody)
	second := postSync(t, server, janeDoeBody)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusOK, second.Code)
	require.Len(t, store.entries, 2)
	assert.NotEqual(t, store.entries[0].ID, store.entries[1].ID)
	syncer.AssertNumberOfCalls(t, "AppendFeedback", 2)
}

func TestSyncHandlerInvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"name":`},
		{name: "wrong field type", body: `{"name":42,"enrollment_no":"0111CS221045","feedback":"Great club"}`},
		{name: "not an object", body: `["Jane Doe"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := new(MockStore)
			syncer := new(MockSyncer)

			rec := postSync(t, NewServer(store, syncer, nil, ""), tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeSync(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, models.KindValidation, resp.Kind)
			assert.True(t, strings.HasPrefix(resp.Message, models.InvalidBodyMessage+": "), resp.Message)
			assert.NotEqual(t, models.MissingFieldsMessage, resp.Message)
			store.AssertNotCalled(t, "CreateFeedback", mock.Anything, mock.Anything)
			syncer.AssertNotCalled(t, "AppendFeedback", mock.Anything, mock.Anything)
		})
	}
}

func TestSyncHandlerNonPostAcknowledges(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			store := new(MockStore)
			syncer := new(MockSyncer)
			req := httptest.NewRequest(method, "/sync", strings.NewReader(`{"name":""}`))
			rec := httptest.NewRecorder()

			NewServer(store, syncer, nil, "").Routes().ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"message":"Triggered by event or manual execution"}`, rec.Body.String())
			store.AssertNotCalled(t, "CreateFeedback", mock.Anything, mock.Anything)
		})
	}
}

func TestSyncHandlerPreflightHandledByCORS(t *testing.T) {
	store := new(MockStore)
	req := httptest.NewRequest(http.MethodOptions, "/sync", nil)
	req.Header.Set("Origin", "https://club.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	NewServer(store, new(MockSyncer), nil, "").Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Body.String())
	store.AssertNotCalled(t, "CreateFeedback", mock.Anything, mock.Anything)
}
