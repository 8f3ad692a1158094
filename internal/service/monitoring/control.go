package monitoring

import (
	"context"
	"errors"
	"fmt"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/domain/rules"
)

// SelectRoom switches the session to the room named by ref (id or name).
func (s *Service) SelectRoom(ctx context.Context, sess *models.Session, ref string) (*models.Room, error) {
	if err := requireControl(sess, "switch rooms"); err != nil {
		return nil, err
	}

	room, err := s.findRoom(ctx, ref)
	if err != nil {
		return nil, err
	}
	if room.ID == sess.CurrentRoomID {
		return room, nil
	}

	sess.CurrentRoomID = room.ID
	s.audit.Record(ctx, sess.User, fmt.Sprintf("Switched to room %s", room.Name))
	return room, nil
}

// SetManualOverride toggles the session's manual override.
func (s *Service) SetManualOverride(ctx context.Context, sess *models.Session, enabled bool) error {
	if err := requireControl(sess, "toggle the manual override"); err != nil {
		return err
	}
	if sess.ManualOverride == enabled {
		return nil
	}

	sess.ManualOverride = enabled
	s.audit.Record(ctx, sess.User, toggleAction("manual override", enabled))
	return nil
}

// SetEnergySaving toggles the session's energy saving mode.
func (s *Service) SetEnergySaving(ctx context.Context, sess *models.Session, enabled bool) error {
	if err := requireControl(sess, "toggle energy saving"); err != nil {
		return err
	}
	if sess.EnergySaving == enabled {
		return nil
	}

	sess.EnergySaving = enabled
	s.audit.Record(ctx, sess.User, toggleAction("energy saving mode", enabled))
	return nil
}

func toggleAction(feature string, enabled bool) string {
	if enabled {
		return "Enabled " + feature
	}
	return "Disabled " + feature
}

// SetTargetTemp applies a manual setpoint. The manual override must be active.
func (s *Service) SetTargetTemp(ctx context.Context, sess *models.Session, roomID string, value float64) (*models.Room, error) {
	if err := requireControl(sess, "set target temperatures"); err != nil {
		return nil, err
	}
	if !sess.ManualOverride {
		return nil, models.OverrideRequired(true)
	}
	if err := requireFinite("target_temp", value); err != nil {
		return nil, err
	}
	if value < models.TargetTempMin || value > models.TargetTempMax {
		return nil, models.InvalidField("target_temp",
			fmt.Sprintf("must be between %g and %g °C", models.TargetTempMin, models.TargetTempMax))
	}

	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetTargetTemp(ctx, room.ID, value); err != nil {
		return nil, err
	}
	room.TargetTemp = value

	s.audit.Record(ctx, sess.User, fmt.Sprintf("Manually set temperature to %.1f°C in room %s", value, room.Name))
	return room, nil
}

// ApplyRecommended sets the room's target to the current recommendation. The
// manual override must be off and the room must hold a product.
func (s *Service) ApplyRecommended(ctx context.Context, sess *models.Session, roomID string) (*models.Room, error) {
	if err := requireControl(sess, "apply recommendations"); err != nil {
		return nil, err
	}
	if sess.ManualOverride {
		return nil, models.OverrideRequired(false)
	}

	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	product, err := s.resolveProduct(ctx, room)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, models.InvalidField("product", fmt.Sprintf("must be assigned to room %s before applying a recommendation", room.Name))
	}

	env, err := s.env.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("load weather: %w", err)
	}
	recommended, _, err := rules.Recommend(rules.RangeOf(product), env.Temperature, s.thresholds)
	if err != nil {
		return nil, err
	}

	if err := s.store.SetTargetTemp(ctx, room.ID, recommended); err != nil {
		return nil, err
	}
	room.TargetTemp = recommended

	s.audit.Record(ctx, sess.User, fmt.Sprintf("Applied recommended temperature %.1f°C in room %s", recommended, room.Name))
	return room, nil
}

// Recommendation returns the recommended target for the room, or nil when the
// room holds no product.
func (s *Service) Recommendation(ctx context.Context, roomID string) (*float64, error) {
	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	product, err := s.resolveProduct(ctx, room)
	if err != nil || product == nil {
		return nil, err
	}

	env, err := s.env.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("load weather: %w", err)
	}
	recommended, ok, err := rules.Recommend(rules.RangeOf(product), env.Temperature, s.thresholds)
	if err != nil || !ok {
		return nil, err
	}
	return &recommended, nil
}

// Environment returns the cached weather observation.
func (s *Service) Environment(ctx context.Context) (models.EnvironmentSample, error) {
	return s.env.Latest(ctx)
}

// RefreshEnvironment fetches fresh weather.
func (s *Service) RefreshEnvironment(ctx context.Context, sess *models.Session) (models.EnvironmentSample, error) {
	sample, err := s.env.Refresh(ctx)
	if err != nil {
		return models.EnvironmentSample{}, err
	}
	s.audit.Record(ctx, sess.User, "Refreshed weather data")
	return sample, nil
}

// SampleRoom takes a sensor reading of the room immediately.
func (s *Service) SampleRoom(ctx context.Context, sess *models.Session, ref string) (*models.SensorSample, error) {
	if err := requireControl(sess, "trigger sensor readings"); err != nil {
		return nil, err
	}
	if s.sampler == nil {
		return nil, errors.New("no sensor sampler configured")
	}

	room, err := s.findRoom(ctx, ref)
	if err != nil {
		return nil, err
	}
	sample, err := s.sampler.Sample(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	s.audit.Record(ctx, sess.User, fmt.Sprintf("Took sensor reading in room %s: %.1f°C, %.1f%%",
		room.Name, sample.Temperature, sample.Humidity))
	return sample, nil
}
