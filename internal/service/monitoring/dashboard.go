package monitoring

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/domain/rules"
)

const (
	statusNormal       = "Normal"
	statusAlert        = "Alert"
	energySavingSuffix = " (Energy Saving)"
)

// RoomStatus is a room with its resolved product and current alerts.
type RoomStatus struct {
	Room    models.Room
	Product *models.Product
	Alerts  []rules.Alert
}

// EvaluateRoom resolves the room's product and evaluates its alerts.
func (s *Service) EvaluateRoom(ctx context.Context, room models.Room, manualOverride bool) (*RoomStatus, error) {
	product, err := s.resolveProduct(ctx, &room)
	if err != nil {
		return nil, err
	}

	in := rules.Input{
		Temperature:    room.CurrentTemp,
		Humidity:       room.CurrentHumidity,
		Range:          rules.RangeOf(product),
		ManualOverride: manualOverride,
	}
	if product != nil {
		ideal := product.IdealHumidity
		in.IdealHumidity = &ideal
	}

	alerts, err := rules.Evaluate(in, s.thresholds)
	if err != nil {
		return nil, err
	}
	return &RoomStatus{Room: room, Product: product, Alerts: alerts}, nil
}

// FacilityStatus evaluates every room without a manual override.
func (s *Service) FacilityStatus(ctx context.Context) ([]RoomStatus, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}

	statuses := make([]RoomStatus, 0, len(rooms))
	for _, room := range rooms {
		status, err := s.EvaluateRoom(ctx, room, false)
		if err != nil {
			s.logger.Warn("failed to evaluate room", zap.String("room_id", room.ID), zap.Error(err))
			continue
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}

// Dashboard assembles the view of the session's current room. Weather being
// unavailable degrades the view (no recommendation, no delta) without failing it.
func (s *Service) Dashboard(ctx context.Context, sess *models.Session) (*models.DashboardView, error) {
	room, err := s.currentRoom(ctx, sess)
	if err != nil {
		return nil, err
	}

	status, err := s.EvaluateRoom(ctx, *room, sess.ManualOverride)
	if err != nil {
		return nil, err
	}

	view := &models.DashboardView{
		Room:    *room,
		Product: status.Product,
		Alerts:  rules.Messages(status.Alerts),
		Status:  statusNormal,
	}
	if len(status.Alerts) > 0 {
		view.Status = statusAlert
	}
	if sess.EnergySaving {
		view.Status += energySavingSuffix
	}

	env, err := s.env.Latest(ctx)
	if err != nil {
		s.logger.Warn("dashboard without weather", zap.Error(err))
	} else {
		view.Environment = &env
		delta := room.CurrentTemp - env.Temperature
		view.DeltaFromExternal = &delta

		recommended, ok, err := rules.Recommend(rules.RangeOf(status.Product), env.Temperature, s.thresholds)
		if err != nil {
			return nil, err
		}
		if ok {
			view.RecommendedTemp = &recommended
		}
	}

	history, err := s.store.RecentSamples(ctx, room.ID, s.window)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []models.SensorSample{}
	}
	view.History = history

	return view, nil
}

// currentRoom returns the session's room, falling back to the first room by
// name when none is selected or the selected one no longer exists.
func (s *Service) currentRoom(ctx context.Context, sess *models.Session) (*models.Room, error) {
	if sess.CurrentRoomID != "" {
		room, err := s.store.GetRoom(ctx, sess.CurrentRoomID)
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}

	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(rooms) == 0 {
		return nil, &models.DomainError{Kind: models.ErrNotFound, Message: "no rooms registered"}
	}
	sess.CurrentRoomID = rooms[0].ID
	return &rooms[0], nil
}
