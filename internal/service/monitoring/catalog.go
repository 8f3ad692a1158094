package monitoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/domain/rules"
)

// ListProducts returns the catalog ordered by name.
func (s *Service) ListProducts(ctx context.Context) ([]models.Product, error) {
	return s.store.ListProducts(ctx)
}

// GetProduct resolves a product by id, then by name.
func (s *Service) GetProduct(ctx context.Context, ref string) (*models.Product, error) {
	product, err := s.store.GetProduct(ctx, ref)
	if !errors.Is(err, models.ErrNotFound) {
		return product, err
	}

	product, err = s.store.GetProductByName(ctx, strings.TrimSpace(ref))
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.NotFound("product", ref)
	}
	return product, err
}

// AddProduct validates req and adds it to the catalog. A taken name fails with
// models.ErrDuplicateName and leaves the existing product untouched.
func (s *Service) AddProduct(ctx context.Context, sess *models.Session, req models.NewProductRequest) (*models.Product, error) {
	if err := requireControl(sess, "add products"); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := requireFinite("min_temp", req.MinTemp); err != nil {
		return nil, err
	}
	if err := requireFinite("max_temp", req.MaxTemp); err != nil {
		return nil, err
	}
	if err := requireFinite("ideal_humidity", req.IdealHumidity); err != nil {
		return nil, err
	}
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if err := (rules.Range{Min: req.MinTemp, Max: req.MaxTemp}).Validate(); err != nil {
		return nil, err
	}

	product := &models.Product{
		ID:            uuid.NewString(),
		Name:          req.Name,
		MinTemp:       req.MinTemp,
		MaxTemp:       req.MaxTemp,
		IdealHumidity: req.IdealHumidity,
		ShelfLifeDays: req.ShelfLifeDays,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, sess.User, fmt.Sprintf("Added new product: %s", product.Name))
	s.logger.Info("product added", zap.String("product_id", product.ID), zap.String("name", product.Name))
	return product, nil
}

// ListRooms returns every room ordered by name.
func (s *Service) ListRooms(ctx context.Context) ([]models.Room, error) {
	return s.store.ListRooms(ctx)
}

// GetRoom resolves a room by id, then by name.
func (s *Service) GetRoom(ctx context.Context, ref string) (*models.Room, error) {
	return s.findRoom(ctx, ref)
}

// AddRoom registers a room whose target starts at its initial temperature.
func (s *Service) AddRoom(ctx context.Context, sess *models.Session, req models.NewRoomRequest) (*models.Room, error) {
	if err := requireControl(sess, "add rooms"); err != nil {
		return nil, err
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	room := &models.Room{
		ID:              uuid.NewString(),
		Name:            req.Name,
		CurrentTemp:     req.InitialTemp,
		TargetTemp:      req.InitialTemp,
		CurrentHumidity: req.InitialHumidity,
		LastUpdated:     s.now().UTC(),
	}
	if err := s.store.CreateRoom(ctx, room); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, sess.User, fmt.Sprintf("Added new room: %s", room.Name))
	return room, nil
}

// AssignProduct points the room at the product named by ref (id or name). A
// nil ref clears the assignment.
func (s *Service) AssignProduct(ctx context.Context, sess *models.Session, roomID string, ref *string) (*models.Room, error) {
	if err := requireControl(sess, "assign products"); err != nil {
		return nil, err
	}

	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	if ref == nil || strings.TrimSpace(*ref) == "" {
		if err := s.store.AssignProduct(ctx, room.ID, nil); err != nil {
			return nil, err
		}
		room.ProductID = nil
		s.audit.Record(ctx, sess.User, fmt.Sprintf("Cleared product in room %s", room.Name))
		return room, nil
	}

	product, err := s.GetProduct(ctx, *ref)
	if err != nil {
		return nil, err
	}
	if err := s.store.AssignProduct(ctx, room.ID, &product.ID); err != nil {
		return nil, err
	}
	room.ProductID = &product.ID

	s.audit.Record(ctx, sess.User, fmt.Sprintf("Set product to %s in room %s", product.Name, room.Name))
	return room, nil
}
