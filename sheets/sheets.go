// Package sheets mirrors stored feedback into a Google Sheet using a service account.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/raushankrgupta/club-feedback/models"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
)

// Column headers, in the order they are written to a fresh sheet.
const (
	ColumnTimestamp    = "Timestamp"
	ColumnName         = "Name"
	ColumnEnrollmentNo = "Enrollment Number"
	ColumnFeedback     = "Feedback"
)

// TimestampLayout renders times the way the en-IN locale does.
const TimestampLayout = "2/1/2006, 3:04:05 pm"

var Headers = []string{ColumnTimestamp, ColumnName, ColumnEnrollmentNo, ColumnFeedback}

// ErrNotConfigured is returned by Disabled when no service account is set up.
var ErrNotConfigured = errors.New("spreadsheet sync is not configured")

// Syncer appends feedback rows to the first sheet of one spreadsheet.
type Syncer struct {
	svc           *sheetsapi.Service
	spreadsheetID string
	loc           *time.Location
}

// NewSyncer authenticates with the service-account email and PEM private key.
// Extra options are applied after the credentials.
func NewSyncer(ctx context.Context, email, privateKey, spreadsheetID string, loc *time.Location, opts ...option.ClientOption) (*Syncer, error) {
	conf := &jwt.Config{
		Email:      email,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{sheetsapi.SpreadsheetsScope},
		TokenURL:   google.JWTTokenURL,
	}
	clientOpts := append([]option.ClientOption{option.WithHTTPClient(conf.Client(ctx))}, opts...)
	svc, err := sheetsapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return NewSyncerWithService(svc, spreadsheetID, loc), nil
}

// NewSyncerWithService uses an already built sheets service.
func NewSyncerWithService(svc *sheetsapi.Service, spreadsheetID string, loc *time.Location) *Syncer {
	if loc == nil {
		loc = time.UTC
	}
	return &Syncer{svc: svc, spreadsheetID: spreadsheetID, loc: loc}
}

// AppendFeedback loads the spreadsheet, picks its first sheet and appends one row for entry.
// Cells are laid out by the sheet's header row; an empty sheet gets the default headers first.
func (s *Syncer) AppendFeedback(ctx context.Context, entry models.FeedbackEntry) error {
	doc, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to load spreadsheet: %w", err)
	}
	if len(doc.Sheets) == 0 || doc.Sheets[0].Properties == nil {
		return fmt.Errorf("spreadsheet %s has no sheets", s.spreadsheetID)
	}
	title := quoteSheetTitle(doc.Sheets[0].Properties.Title)

	headerRange, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, title+"!1:1").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read header row: %w", err)
	}

	var headers []string
	if len(headerRange.Values) > 0 {
		for _, cell := range headerRange.Values[0] {
			headers = append(headers, strings.TrimSpace(fmt.Sprint(cell)))
		}
	}
	if len(headers) == 0 {
		headers = Headers
		_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, title+"!A1", &sheetsapi.ValueRange{
			Values: [][]interface{}{toCells(headers)},
		}).ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to write header row: %w", err)
		}
	}

	row, err := s.buildRow(headers, entry)
	if err != nil {
		return err
	}

	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetID, title+"!A1", &sheetsapi.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

// FormatTimestamp renders t in the syncer's time zone.
func (s *Syncer) FormatTimestamp(t time.Time) string {
	return t.In(s.loc).Format(TimestampLayout)
}

func (s *Syncer) buildRow(headers []string, entry models.FeedbackEntry) ([]interface{}, error) {
	values := map[string]string{
		ColumnTimestamp:    s.FormatTimestamp(entry.CreatedAt),
		ColumnName:         entry.Name,
		ColumnEnrollmentNo: entry.EnrollmentNo,
		ColumnFeedback:     entry.Feedback,
	}

	present := make(map[string]bool, len(headers))
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = values[h]
		present[h] = true
	}
	for _, h := range Headers {
		if !present[h] {
			return nil, fmt.Errorf("sheet header row is missing column %q", h)
		}
	}
	return row, nil
}

// Disabled stands in for a Syncer when the service account is not configured.
type Disabled struct{}

func (Disabled) AppendFeedback(context.Context, models.FeedbackEntry) error {
	return ErrNotConfigured
}

func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
