package audit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/repository/memory"
)

type fakeMirror struct {
	entries []models.AuditEntry
	err     error
}

func (m *fakeMirror) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	m.entries = append(m.entries, *entry)
	return m.err
}

type brokenAuditStore struct{}

func (brokenAuditStore) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	return errors.New("disk full")
}

func (brokenAuditStore) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	return nil, errors.New("disk full")
}

func TestRecord_StoresAndMirrors(t *testing.T) {
	store := memory.NewStore()
	mirror := &fakeMirror{}
	recorder := NewRecorder(store, mirror, nil)
	ctx := context.Background()

	recorder.Record(ctx, "alice", "Refreshed weather data")

	entries, err := recorder.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "alice", entries[0].User)
	assert.Equal(t, "Refreshed weather data", entries[0].Action)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())

	require.Len(t, mirror.entries, 1)
	assert.Equal(t, entries[0], mirror.entries[0])
}

func TestRecord_FailuresAreSwallowed(t *testing.T) {
	mirror := &fakeMirror{err: errors.New("sheets unavailable")}
	recorder := NewRecorder(brokenAuditStore{}, mirror, nil)

	assert.NotPanics(t, func() {
		recorder.Record(context.Background(), "bob", "Added new product: Kefir")
	})
	assert.Len(t, mirror.entries, 1)
}

func TestRecord_WithoutMirror(t *testing.T) {
	store := memory.NewStore()
	recorder := NewRecorder(store, nil, nil)

	recorder.Record(context.Background(), "carol", "Switched to room Room 2")

	entries, err := store.ListAudit(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
