package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

type recordingAppender struct {
	spreadsheetID string
	sheetRange    string
	values        [][]interface{}
	err           error
}

func (r *recordingAppender) Append(ctx context.Context, spreadsheetID, sheetRange string, values [][]interface{}) error {
	r.spreadsheetID = spreadsheetID
	r.sheetRange = sheetRange
	r.values = values
	return r.err
}

func TestAppendAudit_WritesRow(t *testing.T) {
	appender := &recordingAppender{}
	mirror := newAuditMirror(appender, "sheet-1", nil)

	at := time.Date(2026, 4, 3, 9, 15, 0, 0, time.UTC)
	err := mirror.AppendAudit(context.Background(), &models.AuditEntry{ID: "a1", User: "tech", Action: "Set Room 1 temp to 3.5°C", Timestamp: at})
	require.NoError(t, err)

	assert.Equal(t, "sheet-1", appender.spreadsheetID)
	assert.Equal(t, AuditRange, appender.sheetRange)
	require.Len(t, appender.values, 1)
	assert.Equal(t, []interface{}{"2026-04-03T09:15:00Z", "tech", "Set Room 1 temp to 3.5°C", "a1"}, appender.values[0])
}

func TestAppendAudit_WrapsError(t *testing.T) {
	appender := &recordingAppender{err: errors.New("quota exceeded")}
	mirror := newAuditMirror(appender, "sheet-1", nil)

	err := mirror.AppendAudit(context.Background(), &models.AuditEntry{ID: "a1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, err.Error(), AuditRange)
}
