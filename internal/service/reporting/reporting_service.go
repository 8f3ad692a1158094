package reporting

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/domain/rules"
	"github.com/mamadbah2/coldroom/internal/repository"
	"github.com/mamadbah2/coldroom/internal/service/monitoring"
)

const timeLayout = "2006-01-02 15:04"

// StatusSource evaluates the rooms of the facility.
type StatusSource interface {
	FacilityStatus(ctx context.Context) ([]monitoring.RoomStatus, error)
}

// Service exposes lightweight analytics for operator summaries.
type Service struct {
	rooms   repository.RoomRepository
	samples repository.SampleRepository
	status  StatusSource
	window  int
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance. window is the number of
// recent samples each summary covers.
func NewService(rooms repository.RoomRepository, samples repository.SampleRepository, status StatusSource, window int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{rooms: rooms, samples: samples, status: status, window: window, logger: logger, now: time.Now}
}

// RoomSummary computes temperature and humidity statistics over the room's
// recent samples.
func (s *Service) RoomSummary(ctx context.Context, roomID string) (*models.RoomSummary, error) {
	room, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	samples, err := s.samples.RecentSamples(ctx, room.ID, s.window)
	if err != nil {
		return nil, fmt.Errorf("load samples for room %s: %w", room.ID, err)
	}

	return summarize(room, samples), nil
}

func summarize(room *models.Room, samples []models.SensorSample) *models.RoomSummary {
	summary := &models.RoomSummary{RoomID: room.ID, RoomName: room.Name, Samples: len(samples)}
	if len(samples) == 0 {
		return summary
	}

	summary.MinTemp, summary.MaxTemp = math.Inf(1), math.Inf(-1)
	summary.MinHumidity, summary.MaxHumidity = math.Inf(1), math.Inf(-1)

	var tempSum, humSum float64
	for _, sample := range samples {
		tempSum += sample.Temperature
		humSum += sample.Humidity
		summary.MinTemp = math.Min(summary.MinTemp, sample.Temperature)
		summary.MaxTemp = math.Max(summary.MaxTemp, sample.Temperature)
		summary.MinHumidity = math.Min(summary.MinHumidity, sample.Humidity)
		summary.MaxHumidity = math.Max(summary.MaxHumidity, sample.Humidity)
	}

	n := float64(len(samples))
	summary.AvgTemp = round2(tempSum / n)
	summary.AvgHumidity = round2(humSum / n)
	return summary
}

// FacilityReport renders a plain-text report of every room with its current
// reading, product and alerts.
func (s *Service) FacilityReport(ctx context.Context) (string, error) {
	statuses, err := s.status.FacilityStatus(ctx)
	if err != nil {
		return "", fmt.Errorf("evaluate facility: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Cold room report (%s)\n", s.now().Format(timeLayout))
	if len(statuses) == 0 {
		b.WriteString("No rooms registered.")
		return b.String(), nil
	}

	for _, st := range statuses {
		b.WriteString("\n")
		b.WriteString(RoomLine(st))

		summary, err := s.RoomSummary(ctx, st.Room.ID)
		if err != nil {
			s.logger.Warn("skip room summary", zap.String("room_id", st.Room.ID), zap.Error(err))
		} else if summary.Samples > 0 {
			fmt.Fprintf(&b, "\n  Trend (%d samples): avg %.1f°C [%.1f..%.1f], avg %.1f%% humidity",
				summary.Samples, summary.AvgTemp, summary.MinTemp, summary.MaxTemp, summary.AvgHumidity)
		}

		for _, msg := range rules.Messages(st.Alerts) {
			b.WriteString("\n  ! ")
			b.WriteString(msg)
		}
	}
	return b.String(), nil
}

// RoomLine renders the one-line status of a room.
func RoomLine(st monitoring.RoomStatus) string {
	product := "no product"
	if st.Product != nil {
		product = fmt.Sprintf("%s %.1f..%.1f°C", st.Product.Name, st.Product.MinTemp, st.Product.MaxTemp)
	}

	state := "OK"
	if len(st.Alerts) > 0 {
		state = "ALERT"
	}

	return fmt.Sprintf("%s [%s]: %.1f°C (target %.1f°C), %.1f%% humidity, %s",
		st.Room.Name, state, st.Room.CurrentTemp, st.Room.TargetTemp, st.Room.CurrentHumidity, product)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
