package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

// Store implements repository.Store in process memory. A single mutex
// serializes writers, so every mutation is atomic.
type Store struct {
	mu       sync.RWMutex
	rooms    map[string]*models.Room
	products map[string]*models.Product
	// productNames indexes product ids by lower-cased name.
	productNames map[string]string
	samples      map[string][]models.SensorSample
	audit        []models.AuditEntry
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		rooms:        make(map[string]*models.Room),
		products:     make(map[string]*models.Product),
		productNames: make(map[string]string),
		samples:      make(map[string][]models.SensorSample),
	}
}

func (s *Store) ListRooms(ctx context.Context) ([]models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rooms := make([]models.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, copyRoom(r))
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Name < rooms[j].Name })
	return rooms, nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rooms[id]
	if !ok {
		return nil, models.NotFound("room", id)
	}
	room := copyRoom(r)
	return &room, nil
}

func (s *Store) CreateRoom(ctx context.Context, room *models.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.rooms {
		if strings.EqualFold(existing.Name, room.Name) {
			return models.DuplicateName("room", room.Name)
		}
	}
	stored := copyRoom(room)
	s.rooms[room.ID] = &stored
	return nil
}

func (s *Store) SetTargetTemp(ctx context.Context, id string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return models.NotFound("room", id)
	}
	r.TargetTemp = value
	return nil
}

func (s *Store) AssignProduct(ctx context.Context, id string, productID *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return models.NotFound("room", id)
	}
	r.ProductID = copyString(productID)
	return nil
}

func (s *Store) UpdateReading(ctx context.Context, id string, temp, humidity float64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return models.NotFound("room", id)
	}
	r.CurrentTemp = temp
	r.CurrentHumidity = humidity
	r.LastUpdated = at
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, *p)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, models.NotFound("product", id)
	}
	product := *p
	return &product, nil
}

func (s *Store) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.productNames[strings.ToLower(name)]
	if !ok {
		return nil, models.NotFound("product", name)
	}
	product := *s.products[id]
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(product.Name)
	if _, exists := s.productNames[key]; exists {
		return models.DuplicateName("product", product.Name)
	}
	stored := *product
	s.products[product.ID] = &stored
	s.productNames[key] = product.ID
	return nil
}

func (s *Store) AppendSample(ctx context.Context, sample *models.SensorSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.samples[sample.RoomID] = append(s.samples[sample.RoomID], *sample)
	return nil
}

func (s *Store) RecentSamples(ctx context.Context, roomID string, limit int) ([]models.SensorSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.samples[roomID]
	if limit <= 0 || limit > len(history) {
		limit = len(history)
	}

	out := make([]models.SensorSample, 0, limit)
	for i := len(history) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, history[i])
	}
	return out, nil
}

func (s *Store) PruneSamples(ctx context.Context, roomID string, keep int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keep < 0 {
		keep = 0
	}
	history := s.samples[roomID]
	if len(history) <= keep {
		return 0, nil
	}

	removed := len(history) - keep
	kept := make([]models.SensorSample, keep)
	copy(kept, history[removed:])
	s.samples[roomID] = kept
	return int64(removed), nil
}

func (s *Store) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, *entry)
	return nil
}

func (s *Store) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.audit) {
		limit = len(s.audit)
	}
	out := make([]models.AuditEntry, 0, limit)
	for i := len(s.audit) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.audit[i])
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

func copyRoom(r *models.Room) models.Room {
	room := *r
	room.ProductID = copyString(r.ProductID)
	return room
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
