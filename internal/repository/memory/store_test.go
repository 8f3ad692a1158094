package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

func TestCreateProduct_Duplicate(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	milk := &models.Product{ID: "p1", Name: "Milk", MinTemp: 2, MaxTemp: 4, IdealHumidity: 70, ShelfLifeDays: 5}
	require.NoError(t, store.CreateProduct(ctx, milk))

	err := store.CreateProduct(ctx, &models.Product{ID: "p2", Name: "milk", MinTemp: 0, MaxTemp: 1, IdealHumidity: 50, ShelfLifeDays: 1})
	assert.ErrorIs(t, err, models.ErrDuplicateName)

	got, err := store.GetProductByName(ctx, "Milk")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, 2.0, got.MinTemp)

	_, err = store.GetProduct(ctx, "p2")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAssignProduct_RoundTrip(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.CreateRoom(ctx, &models.Room{ID: "r1", Name: "Room 1", CurrentTemp: 4}))

	pid := "p1"
	require.NoError(t, store.AssignProduct(ctx, "r1", &pid))
	pid = "mutated"

	room, err := store.GetRoom(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, room.ProductID)
	assert.Equal(t, "p1", *room.ProductID)

	require.NoError(t, store.AssignProduct(ctx, "r1", nil))
	room, err = store.GetRoom(ctx, "r1")
	require.NoError(t, err)
	assert.Nil(t, room.ProductID)
	assert.Equal(t, "Room 1", room.Name)
}

func TestRoomMutations_NotFound(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	assert.ErrorIs(t, store.SetTargetTemp(ctx, "nope", 3), models.ErrNotFound)
	assert.ErrorIs(t, store.AssignProduct(ctx, "nope", nil), models.ErrNotFound)
	assert.ErrorIs(t, store.UpdateReading(ctx, "nope", 1, 2, time.Now()), models.ErrNotFound)
	_, err := store.GetRoom(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSamples_NewestFirstAndPrune(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, store.AppendSample(ctx, &models.SensorSample{
			ID:          string(rune('a' + i)),
			RoomID:      "r1",
			Temperature: float64(i),
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recent, err := store.RecentSamples(ctx, "r1", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, []float64{4, 3, 2}, []float64{recent[0].Temperature, recent[1].Temperature, recent[2].Temperature})

	removed, err := store.PruneSamples(ctx, "r1", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	all, err := store.RecentSamples(ctx, "r1", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 4.0, all[0].Temperature)
	assert.Equal(t, 3.0, all[1].Temperature)
}

func TestAudit_NewestFirst(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.AppendAudit(ctx, &models.AuditEntry{ID: "1", User: "alice", Action: "User logged in"}))
	require.NoError(t, store.AppendAudit(ctx, &models.AuditEntry{ID: "2", User: "alice", Action: "Added new product: Kefir"}))

	entries, err := store.ListAudit(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Added new product: Kefir", entries[0].Action)
}
