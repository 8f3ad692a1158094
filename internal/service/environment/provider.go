package environment

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/pkg/clients/openmeteo"
)

// Provider abstracts an external weather source.
type Provider interface {
	Fetch(ctx context.Context) (models.EnvironmentSample, error)
}

var simulatedConditions = []string{"Sunny", "Cloudy", "Rainy", "Partly Cloudy"}

// SimulatedProvider draws plausible weather from a seeded random source.
type SimulatedProvider struct {
	location string
	now      func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedProvider returns a provider reporting 15–45 °C and 30–90 % humidity.
func NewSimulatedProvider(location string, rng *rand.Rand) *SimulatedProvider {
	return &SimulatedProvider{location: location, rng: rng, now: time.Now}
}

func (p *SimulatedProvider) Fetch(ctx context.Context) (models.EnvironmentSample, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return models.EnvironmentSample{
		Location:    p.location,
		Temperature: 15 + p.rng.Float64()*30,
		Humidity:    30 + p.rng.Float64()*60,
		Conditions:  simulatedConditions[p.rng.Intn(len(simulatedConditions))],
		Timestamp:   p.now().UTC(),
	}, nil
}

// OpenMeteoProvider reads the current weather at fixed coordinates.
type OpenMeteoProvider struct {
	client    openmeteo.Client
	location  string
	latitude  float64
	longitude float64
	now       func() time.Time
}

// NewOpenMeteoProvider wires a provider over the Open-Meteo client.
func NewOpenMeteoProvider(client openmeteo.Client, location string, latitude, longitude float64) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		client:    client,
		location:  location,
		latitude:  latitude,
		longitude: longitude,
		now:       time.Now,
	}
}

func (p *OpenMeteoProvider) Fetch(ctx context.Context) (models.EnvironmentSample, error) {
	current, err := p.client.CurrentWeather(ctx, p.latitude, p.longitude)
	if err != nil {
		return models.EnvironmentSample{}, fmt.Errorf("fetch weather for %s: %w", p.location, err)
	}

	return models.EnvironmentSample{
		Location:    p.location,
		Temperature: current.Temperature,
		Humidity:    current.RelativeHumidity,
		Conditions:  openmeteo.Condition(current.WeatherCode),
		Timestamp:   p.now().UTC(),
	}, nil
}
