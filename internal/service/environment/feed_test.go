package environment

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/pkg/clients/openmeteo"
)

type countingProvider struct {
	calls   int
	samples []models.EnvironmentSample
	err     error
}

func (p *countingProvider) Fetch(ctx context.Context) (models.EnvironmentSample, error) {
	p.calls++
	if p.err != nil {
		return models.EnvironmentSample{}, p.err
	}
	return p.samples[(p.calls-1)%len(p.samples)], nil
}

func TestFeed_LatestRefreshesOnceThenCaches(t *testing.T) {
	provider := &countingProvider{samples: []models.EnvironmentSample{{Temperature: 31}, {Temperature: 12}}}
	feed := NewFeed(provider, nil)
	ctx := context.Background()

	first, err := feed.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 31.0, first.Temperature)

	again, err := feed.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 31.0, again.Temperature)
	assert.Equal(t, 1, provider.calls)

	refreshed, err := feed.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.0, refreshed.Temperature)

	latest, err := feed.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.0, latest.Temperature)
}

func TestFeed_FailedRefreshKeepsPrevious(t *testing.T) {
	provider := &countingProvider{samples: []models.EnvironmentSample{{Temperature: 20}}}
	feed := NewFeed(provider, nil)
	ctx := context.Background()

	_, err := feed.Refresh(ctx)
	require.NoError(t, err)

	provider.err = errors.New("upstream down")
	_, err = feed.Refresh(ctx)
	require.Error(t, err)

	latest, err := feed.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20.0, latest.Temperature)
}

func TestSimulatedProvider_Bounds(t *testing.T) {
	provider := NewSimulatedProvider("Ahmedabad", rand.New(rand.NewSource(11)))

	for i := 0; i < 100; i++ {
		sample, err := provider.Fetch(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Ahmedabad", sample.Location)
		assert.GreaterOrEqual(t, sample.Temperature, 15.0)
		assert.Less(t, sample.Temperature, 45.0)
		assert.GreaterOrEqual(t, sample.Humidity, 30.0)
		assert.Less(t, sample.Humidity, 90.0)
		assert.Contains(t, simulatedConditions, sample.Conditions)
		assert.False(t, sample.Timestamp.IsZero())
	}
}

type stubWeatherClient struct {
	current *openmeteo.CurrentWeather
	err     error
}

func (c stubWeatherClient) CurrentWeather(ctx context.Context, latitude, longitude float64) (*openmeteo.CurrentWeather, error) {
	return c.current, c.err
}

func TestOpenMeteoProvider_MapsCurrentWeather(t *testing.T) {
	client := stubWeatherClient{current: &openmeteo.CurrentWeather{Temperature: 33.5, RelativeHumidity: 41, WeatherCode: 3}}
	provider := NewOpenMeteoProvider(client, "Ahmedabad", 23.02, 72.57)

	sample, err := provider.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ahmedabad", sample.Location)
	assert.Equal(t, 33.5, sample.Temperature)
	assert.Equal(t, 41.0, sample.Humidity)
	assert.Equal(t, "Cloudy", sample.Conditions)
}

func TestOpenMeteoProvider_Error(t *testing.T) {
	provider := NewOpenMeteoProvider(stubWeatherClient{err: errors.New("timeout")}, "Ahmedabad", 0, 0)

	_, err := provider.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Ahmedabad")
}
