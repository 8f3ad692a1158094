package sensor

import (
	"context"
	"math/rand"
	"sync"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

// Reading is one climate measurement produced for a room.
type Reading struct {
	Temperature float64
	Humidity    float64
}

// ReadingProducer yields the next reading for a room. The simulated drift is one
// implementation; a real sensor adapter would be another.
type ReadingProducer interface {
	ProduceReading(ctx context.Context, room models.Room) (Reading, error)
}

// DriftProducer perturbs the room's current state by uniform deltas within
// ±TempJitter and ±HumidityJitter.
type DriftProducer struct {
	TempJitter     float64
	HumidityJitter float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewDriftProducer builds a DriftProducer drawing from rng.
func NewDriftProducer(rng *rand.Rand, tempJitter, humidityJitter float64) *DriftProducer {
	return &DriftProducer{
		TempJitter:     tempJitter,
		HumidityJitter: humidityJitter,
		rng:            rng,
	}
}

func (p *DriftProducer) ProduceReading(ctx context.Context, room models.Room) (Reading, error) {
	p.mu.Lock()
	dt := uniform(p.rng, p.TempJitter)
	dh := uniform(p.rng, p.HumidityJitter)
	p.mu.Unlock()

	return Reading{
		Temperature: room.CurrentTemp + dt,
		Humidity:    room.CurrentHumidity + dh,
	}, nil
}

// uniform draws from [-bound, bound).
func uniform(rng *rand.Rand, bound float64) float64 {
	if bound == 0 {
		return 0
	}
	return (rng.Float64()*2 - 1) * bound
}
