package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/coldroom/internal/config"
	"github.com/mamadbah2/coldroom/internal/domain/models"
)

// AuditRange is where mirrored audit rows are appended.
const AuditRange = "Audit!A:D"

// valuesAppender is the slice of the Sheets API the mirror needs.
type valuesAppender interface {
	Append(ctx context.Context, spreadsheetID, sheetRange string, values [][]interface{}) error
}

type sheetsValuesAppender struct {
	service *sheetsapi.Service
}

func (a sheetsValuesAppender) Append(ctx context.Context, spreadsheetID, sheetRange string, values [][]interface{}) error {
	payload := &sheetsapi.ValueRange{Values: values}

	call := a.service.Spreadsheets.Values.Append(spreadsheetID, sheetRange, payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx)

	_, err := call.Do()
	return err
}

// AuditMirror copies audit entries into a Google Sheet for off-site review.
type AuditMirror struct {
	values        valuesAppender
	spreadsheetID string
	logger        *zap.Logger
}

// NewAuditMirror builds a Google Sheets backed audit mirror.
func NewAuditMirror(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*AuditMirror, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}
	return newAuditMirror(sheetsValuesAppender{service: service}, cfg.SpreadsheetID, logger), nil
}

func newAuditMirror(values valuesAppender, spreadsheetID string, logger *zap.Logger) *AuditMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditMirror{values: values, spreadsheetID: spreadsheetID, logger: logger}
}

// AppendAudit appends one row (timestamp, user, action, id) for the entry.
func (m *AuditMirror) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	row := []interface{}{
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.User,
		entry.Action,
		entry.ID,
	}

	if err := m.values.Append(ctx, m.spreadsheetID, AuditRange, [][]interface{}{row}); err != nil {
		return fmt.Errorf("append row into range %s: %w", AuditRange, err)
	}

	m.logger.Debug("audit row appended to sheet", zap.String("audit_id", entry.ID))
	return nil
}
