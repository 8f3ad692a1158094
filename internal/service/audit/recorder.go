// Package audit records operator actions.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/repository"
)

// Mirror receives a copy of every recorded entry.
type Mirror interface {
	AppendAudit(ctx context.Context, entry *models.AuditEntry) error
}

// Recorder appends audit entries to the store and, optionally, a mirror.
// Recording never fails the action being audited.
type Recorder struct {
	store  repository.AuditRepository
	mirror Mirror
	logger *zap.Logger
	now    func() time.Time
}

// NewRecorder builds a Recorder. mirror may be nil.
func NewRecorder(store repository.AuditRepository, mirror Mirror, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{store: store, mirror: mirror, logger: logger, now: time.Now}
}

// Record stores action as performed by user.
func (r *Recorder) Record(ctx context.Context, user, action string) {
	entry := &models.AuditEntry{
		ID:        uuid.NewString(),
		User:      user,
		Action:    action,
		Timestamp: r.now().UTC(),
	}

	if err := r.store.AppendAudit(ctx, entry); err != nil {
		r.logger.Error("failed to store audit entry", zap.String("user", user), zap.String("action", action), zap.Error(err))
	}

	if r.mirror == nil {
		return
	}
	if err := r.mirror.AppendAudit(ctx, entry); err != nil {
		r.logger.Warn("failed to mirror audit entry", zap.String("audit_id", entry.ID), zap.Error(err))
	}
}

// List returns at most limit entries, newest first.
func (r *Recorder) List(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	return r.store.ListAudit(ctx, limit)
}
