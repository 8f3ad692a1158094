package monitoring

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

var defaultProducts = []models.NewProductRequest{
	{Name: "Milk", MinTemp: 2, MaxTemp: 4, IdealHumidity: 70, ShelfLifeDays: 5},
	{Name: "Curd", MinTemp: 2, MaxTemp: 4, IdealHumidity: 75, ShelfLifeDays: 7},
	{Name: "Butter", MinTemp: -15, MaxTemp: -10, IdealHumidity: 80, ShelfLifeDays: 90},
	{Name: "Cheese", MinTemp: 1, MaxTemp: 4, IdealHumidity: 85, ShelfLifeDays: 30},
	{Name: "Ice Cream", MinTemp: -25, MaxTemp: -18, IdealHumidity: 70, ShelfLifeDays: 365},
}

var defaultRooms = []models.NewRoomRequest{
	{Name: "Room 1", InitialTemp: 4, InitialHumidity: 70},
	{Name: "Room 2", InitialTemp: 4, InitialHumidity: 70},
	{Name: "Freezer 1", InitialTemp: -18, InitialHumidity: 70},
}

// Seed fills an empty catalog and an empty room registry with the default
// dairy products and rooms. Existing data is left alone.
func (s *Service) Seed(ctx context.Context) error {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		for _, req := range defaultProducts {
			err := s.store.CreateProduct(ctx, &models.Product{
				ID:            uuid.NewString(),
				Name:          req.Name,
				MinTemp:       req.MinTemp,
				MaxTemp:       req.MaxTemp,
				IdealHumidity: req.IdealHumidity,
				ShelfLifeDays: req.ShelfLifeDays,
				CreatedAt:     s.now().UTC(),
			})
			if err != nil && !errors.Is(err, models.ErrDuplicateName) {
				return err
			}
		}
		s.logger.Info("seeded default products", zap.Int("count", len(defaultProducts)))
	}

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		for _, req := range defaultRooms {
			err := s.store.CreateRoom(ctx, &models.Room{
				ID:              uuid.NewString(),
				Name:            req.Name,
				CurrentTemp:     req.InitialTemp,
				TargetTemp:      req.InitialTemp,
				CurrentHumidity: req.InitialHumidity,
				LastUpdated:     s.now().UTC(),
			})
			if err != nil && !errors.Is(err, models.ErrDuplicateName) {
				return err
			}
		}
		s.logger.Info("seeded default rooms", zap.Int("count", len(defaultRooms)))
	}
	return nil
}
