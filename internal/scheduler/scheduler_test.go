package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/coldroom/internal/config"
	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/domain/rules"
	"github.com/mamadbah2/coldroom/internal/service/monitoring"
)

type fakeSampler struct {
	calls int
	err   error
}

func (f *fakeSampler) SampleAll(ctx context.Context) ([]models.SensorSample, error) {
	f.calls++
	return nil, f.err
}

type fakeWeather struct{ calls int }

func (f *fakeWeather) Refresh(ctx context.Context) (models.EnvironmentSample, error) {
	f.calls++
	return models.EnvironmentSample{}, nil
}

type fakeMonitor struct {
	statuses  []monitoring.RoomStatus
	pruneKeep int
	pruneUser string
}

func (f *fakeMonitor) FacilityStatus(ctx context.Context) ([]monitoring.RoomStatus, error) {
	return f.statuses, nil
}

func (f *fakeMonitor) PruneHistory(ctx context.Context, sess *models.Session, keep int) (int64, error) {
	f.pruneKeep = keep
	f.pruneUser = sess.User
	return 3, nil
}

type fakeReporter struct{}

func (fakeReporter) FacilityReport(ctx context.Context) (string, error) {
	return "report body", nil
}

type fakeNotifier struct {
	notified [][]monitoring.RoomStatus
	sent     []models.OutboundMessageRequest
}

func (f *fakeNotifier) NotifyAlerts(ctx context.Context, statuses []monitoring.RoomStatus) error {
	f.notified = append(f.notified, statuses)
	return nil
}

func (f *fakeNotifier) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	f.sent = append(f.sent, req)
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Scheduler: config.SchedulerConfig{
			SensorSchedule:  "@every 1m",
			WeatherSchedule: "@every 15m",
			PruneSchedule:   "@daily",
			ReportSchedule:  "0 20 * * *",
			Timezone:        "UTC",
		},
		History:  config.HistoryConfig{Window: 24, Keep: 500},
		WhatsApp: config.WhatsAppConfig{AlertRecipient: "22499"},
	}
}

func TestSampleRooms_NotifiesStatuses(t *testing.T) {
	sampler := &fakeSampler{}
	monitor := &fakeMonitor{statuses: []monitoring.RoomStatus{{
		Room:   models.Room{ID: "r1"},
		Alerts: []rules.Alert{{Kind: rules.AlertLowTemperature}},
	}}}
	notifier := &fakeNotifier{}

	s, err := NewScheduler(testConfig(), sampler, &fakeWeather{}, monitor, fakeReporter{}, notifier, nil)
	require.NoError(t, err)

	s.sampleRooms()
	assert.Equal(t, 1, sampler.calls)
	require.Len(t, notifier.notified, 1)
	assert.Equal(t, "r1", notifier.notified[0][0].Room.ID)
}

func TestSampleRooms_StopsOnSamplingError(t *testing.T) {
	sampler := &fakeSampler{err: errors.New("store down")}
	notifier := &fakeNotifier{}

	s, err := NewScheduler(testConfig(), sampler, &fakeWeather{}, &fakeMonitor{}, fakeReporter{}, notifier, nil)
	require.NoError(t, err)

	s.sampleRooms()
	assert.Empty(t, notifier.notified)
}

func TestPruneAndWeatherJobs(t *testing.T) {
	weather := &fakeWeather{}
	monitor := &fakeMonitor{}

	s, err := NewScheduler(testConfig(), &fakeSampler{}, weather, monitor, fakeReporter{}, nil, nil)
	require.NoError(t, err)

	s.refreshWeather()
	s.pruneHistory()
	assert.Equal(t, 1, weather.calls)
	assert.Equal(t, 500, monitor.pruneKeep)
	assert.Equal(t, "system", monitor.pruneUser)
}

func TestSendReport(t *testing.T) {
	notifier := &fakeNotifier{}
	s, err := NewScheduler(testConfig(), &fakeSampler{}, &fakeWeather{}, &fakeMonitor{}, fakeReporter{}, notifier, nil)
	require.NoError(t, err)

	s.sendReport()
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, models.OutboundMessageRequest{To: "22499", Message: "report body"}, notifier.sent[0])
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.PruneSchedule = "every tuesday"

	s, err := NewScheduler(cfg, &fakeSampler{}, &fakeWeather{}, &fakeMonitor{}, fakeReporter{}, nil, nil)
	require.NoError(t, err)
	err = s.Start()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history pruning")
}

func TestNewScheduler_BadTimezone(t *testing.T) {
	cfg := testConfig()
	cfg.Scheduler.Timezone = "Mars/Olympus"

	_, err := NewScheduler(cfg, &fakeSampler{}, &fakeWeather{}, &fakeMonitor{}, fakeReporter{}, nil, nil)
	assert.Error(t, err)
}
