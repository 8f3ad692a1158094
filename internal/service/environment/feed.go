// Package environment keeps the latest external weather observation.
package environment

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

// Feed caches the most recent EnvironmentSample. A sample stays current until
// the next successful refresh replaces it.
type Feed struct {
	provider Provider
	logger   *zap.Logger

	mu     sync.RWMutex
	latest *models.EnvironmentSample
}

// NewFeed wires a feed over provider.
func NewFeed(provider Provider, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feed{provider: provider, logger: logger}
}

// Refresh fetches a new sample and replaces the cached one. On failure the
// previous sample is kept.
func (f *Feed) Refresh(ctx context.Context) (models.EnvironmentSample, error) {
	sample, err := f.provider.Fetch(ctx)
	if err != nil {
		f.logger.Warn("weather refresh failed", zap.Error(err))
		return models.EnvironmentSample{}, err
	}

	f.mu.Lock()
	f.latest = &sample
	f.mu.Unlock()

	f.logger.Debug("weather refreshed",
		zap.String("location", sample.Location),
		zap.Float64("temperature", sample.Temperature),
		zap.String("conditions", sample.Conditions))
	return sample, nil
}

// Latest returns the cached sample, refreshing once when none exists yet.
func (f *Feed) Latest(ctx context.Context) (models.EnvironmentSample, error) {
	f.mu.RLock()
	latest := f.latest
	f.mu.RUnlock()

	if latest != nil {
		return *latest, nil
	}
	return f.Refresh(ctx)
}
