// Package monitoring exposes the operations an operator performs on the cold
// rooms: reading the dashboard, steering target temperatures, and managing the
// product catalog. Every operation takes the caller's explicit session.
package monitoring

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/domain/rules"
	"github.com/mamadbah2/coldroom/internal/repository"
)

// Store is the persistence the service works against.
type Store interface {
	repository.RoomRepository
	repository.ProductRepository
	repository.SampleRepository
}

// EnvironmentSource supplies the external weather observation.
type EnvironmentSource interface {
	Latest(ctx context.Context) (models.EnvironmentSample, error)
	Refresh(ctx context.Context) (models.EnvironmentSample, error)
}

// AuditSink records operator actions and lists them back.
type AuditSink interface {
	Record(ctx context.Context, user, action string)
	List(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// Sampler takes an on-demand sensor reading of a room.
type Sampler interface {
	Sample(ctx context.Context, roomID string) (*models.SensorSample, error)
}

// Options tunes the service. Sampler is optional; without it SampleRoom fails.
type Options struct {
	Thresholds    rules.Thresholds
	HistoryWindow int
	Sampler       Sampler
}

const (
	defaultHistoryWindow = 100
	defaultAuditLimit    = 100
)

// SystemSession identifies background jobs in the audit trail.
var SystemSession = models.Session{User: "system", Role: models.RoleAdmin}

// Service implements the monitoring operations.
type Service struct {
	store      Store
	env        EnvironmentSource
	audit      AuditSink
	sampler    Sampler
	validate   *validator.Validate
	thresholds rules.Thresholds
	window     int
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires the monitoring service.
func NewService(store Store, env EnvironmentSource, audit AuditSink, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.HistoryWindow <= 0 {
		opts.HistoryWindow = defaultHistoryWindow
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(jsonFieldName)

	return &Service{
		store:      store,
		env:        env,
		audit:      audit,
		sampler:    opts.Sampler,
		validate:   validate,
		thresholds: opts.Thresholds,
		window:     opts.HistoryWindow,
		logger:     logger,
		now:        time.Now,
	}
}

// Thresholds returns the rule thresholds in effect.
func (s *Service) Thresholds() rules.Thresholds {
	return s.thresholds
}

func requireControl(sess *models.Session, action string) error {
	if sess == nil || !sess.Role.CanControl() {
		return models.Forbidden(roleOf(sess), action)
	}
	return nil
}

func requireAdmin(sess *models.Session, action string) error {
	if sess == nil || !sess.Role.CanAdminister() {
		return models.Forbidden(roleOf(sess), action)
	}
	return nil
}

func roleOf(sess *models.Session) models.Role {
	if sess == nil {
		return models.RoleViewer
	}
	return sess.Role
}

// resolveProduct follows the room's weak product reference. A dangling
// reference resolves to no product.
func (s *Service) resolveProduct(ctx context.Context, room *models.Room) (*models.Product, error) {
	if room.ProductID == nil {
		return nil, nil
	}

	product, err := s.store.GetProduct(ctx, *room.ProductID)
	if errors.Is(err, models.ErrNotFound) {
		s.logger.Warn("room references a missing product",
			zap.String("room_id", room.ID),
			zap.String("product_id", *room.ProductID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

// findRoom resolves a room by id, then by case-insensitive name.
func (s *Service) findRoom(ctx context.Context, ref string) (*models.Room, error) {
	room, err := s.store.GetRoom(ctx, ref)
	if err == nil || !errors.Is(err, models.ErrNotFound) {
		return room, err
	}

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if strings.EqualFold(rooms[i].Name, ref) {
			return &rooms[i], nil
		}
	}
	return nil, models.NotFound("room", ref)
}
