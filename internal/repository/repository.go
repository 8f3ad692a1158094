// Package repository defines the persistence contracts of the monitoring
// system. Every mutation is a single statement against the backing store.
package repository

import (
	"context"
	"time"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

// RoomRepository persists rooms.
type RoomRepository interface {
	ListRooms(ctx context.Context) ([]models.Room, error)
	GetRoom(ctx context.Context, id string) (*models.Room, error)
	CreateRoom(ctx context.Context, room *models.Room) error
	SetTargetTemp(ctx context.Context, id string, value float64) error
	// AssignProduct sets or, with a nil productID, clears the room's product reference.
	AssignProduct(ctx context.Context, id string, productID *string) error
	UpdateReading(ctx context.Context, id string, temp, humidity float64, at time.Time) error
}

// ProductRepository persists the product catalog.
type ProductRepository interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	GetProductByName(ctx context.Context, name string) (*models.Product, error)
	// CreateProduct fails with models.ErrDuplicateName when the name is taken.
	CreateProduct(ctx context.Context, product *models.Product) error
}

// SampleRepository persists the append-only sensor history.
type SampleRepository interface {
	AppendSample(ctx context.Context, sample *models.SensorSample) error
	// RecentSamples returns at most limit samples of the room, newest first.
	RecentSamples(ctx context.Context, roomID string, limit int) ([]models.SensorSample, error)
	// PruneSamples keeps the newest keep samples of the room and returns how many were removed.
	PruneSamples(ctx context.Context, roomID string, keep int) (int64, error)
}

// AuditRepository persists the audit trail.
type AuditRepository interface {
	AppendAudit(ctx context.Context, entry *models.AuditEntry) error
	// ListAudit returns at most limit entries, newest first.
	ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// Store aggregates every repository a backing store provides.
type Store interface {
	RoomRepository
	ProductRepository
	SampleRepository
	AuditRepository
	Close() error
}
