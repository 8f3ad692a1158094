package monitoring

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

// History returns up to limit samples of the room, newest first. A non-positive
// limit uses the configured window.
func (s *Service) History(ctx context.Context, roomID string, limit int) ([]models.SensorSample, error) {
	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = s.window
	}

	samples, err := s.store.RecentSamples(ctx, room.ID, limit)
	if err != nil {
		return nil, err
	}
	if samples == nil {
		samples = []models.SensorSample{}
	}
	return samples, nil
}

// AuditLog returns the most recent audit entries. Administrators only.
func (s *Service) AuditLog(ctx context.Context, sess *models.Session, limit int) ([]models.AuditEntry, error) {
	if err := requireAdmin(sess, "read the audit log"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}

	entries, err := s.audit.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	return entries, nil
}

// PruneHistory keeps the newest keep samples of every room and returns how
// many samples were removed. Administrators only.
func (s *Service) PruneHistory(ctx context.Context, sess *models.Session, keep int) (int64, error) {
	if err := requireAdmin(sess, "clear historical data"); err != nil {
		return 0, err
	}
	if keep < 0 {
		return 0, models.InvalidField("keep", "must not be negative")
	}

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return 0, err
	}

	var removed int64
	for _, room := range rooms {
		n, err := s.store.PruneSamples(ctx, room.ID, keep)
		if err != nil {
			return removed, err
		}
		removed += n
	}

	s.audit.Record(ctx, sess.User, fmt.Sprintf("Cleared historical data (kept last %d samples per room)", keep))
	s.logger.Info("history pruned", zap.Int("keep", keep), zap.Int64("removed", removed))
	return removed, nil
}
