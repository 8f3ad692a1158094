// Package sensor produces room climate readings and records them as history.
package sensor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
	"github.com/mamadbah2/coldroom/internal/repository"
)

// Store is the persistence the simulator writes to.
type Store interface {
	repository.RoomRepository
	repository.SampleRepository
}

// Simulator samples rooms. Samples of the same room are serialized so that
// concurrent callers never interleave their read-modify-write of a room.
type Simulator struct {
	store    Store
	producer ReadingProducer
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSimulator wires a simulator over store and producer.
func NewSimulator(store Store, producer ReadingProducer, logger *zap.Logger) *Simulator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulator{
		store:    store,
		producer: producer,
		logger:   logger,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Simulator) roomLock(roomID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[roomID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[roomID] = lock
	}
	return lock
}

// Sample takes one reading for the room, stores it as the room's current state
// and appends it to the history. A missing room yields models.ErrNotFound and
// writes nothing.
func (s *Simulator) Sample(ctx context.Context, roomID string) (*models.SensorSample, error) {
	// Unknown rooms never get a lock entry.
	if _, err := s.store.GetRoom(ctx, roomID); err != nil {
		return nil, err
	}

	lock := s.roomLock(roomID)
	lock.Lock()
	defer lock.Unlock()

	room, err := s.store.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	reading, err := s.producer.ProduceReading(ctx, *room)
	if err != nil {
		return nil, fmt.Errorf("produce reading for room %s: %w", roomID, err)
	}

	sample := &models.SensorSample{
		ID:          uuid.NewString(),
		RoomID:      roomID,
		Temperature: reading.Temperature,
		Humidity:    reading.Humidity,
		Timestamp:   s.now().UTC(),
	}

	if err := s.store.UpdateReading(ctx, roomID, sample.Temperature, sample.Humidity, sample.Timestamp); err != nil {
		return nil, err
	}
	if err := s.store.AppendSample(ctx, sample); err != nil {
		return nil, err
	}

	s.logger.Debug("room sampled",
		zap.String("room_id", roomID),
		zap.Float64("temperature", sample.Temperature),
		zap.Float64("humidity", sample.Humidity))
	return sample, nil
}

// SampleAll samples every room. Rooms that fail are logged and skipped.
func (s *Simulator) SampleAll(ctx context.Context) ([]models.SensorSample, error) {
	rooms, err := s.store.ListRooms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	samples := make([]models.SensorSample, 0, len(rooms))
	for _, room := range rooms {
		sample, err := s.Sample(ctx, room.ID)
		if err != nil {
			s.logger.Warn("failed to sample room", zap.String("room_id", room.ID), zap.Error(err))
			continue
		}
		samples = append(samples, *sample)
	}
	return samples, nil
}
