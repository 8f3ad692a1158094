package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

const (
	roomsCollection    = "rooms"
	productsCollection = "products"
	samplesCollection  = "sensor_samples"
	auditCollection    = "audit_log"
)

// caseInsensitive makes the unique name indexes and name lookups ignore case.
var caseInsensitive = options.Collation{Locale: "en", Strength: 2}

// Store implements repository.Store on MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewStore connects to MongoDB and ensures the indexes the store relies on.
func NewStore(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	s := &Store{client: client, db: client.Database(dbName), logger: logger}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	logger.Info("mongodb store ready", zap.String("database", dbName))
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	uniqueName := mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true).SetCollation(&caseInsensitive),
	}
	if _, err := s.db.Collection(roomsCollection).Indexes().CreateOne(ctx, uniqueName); err != nil {
		return fmt.Errorf("failed to create rooms index: %w", err)
	}
	if _, err := s.db.Collection(productsCollection).Indexes().CreateOne(ctx, uniqueName); err != nil {
		return fmt.Errorf("failed to create products index: %w", err)
	}

	samplesIdx := mongo.IndexModel{Keys: bson.D{{Key: "room_id", Value: 1}, {Key: "timestamp", Value: -1}}}
	if _, err := s.db.Collection(samplesCollection).Indexes().CreateOne(ctx, samplesIdx); err != nil {
		return fmt.Errorf("failed to create samples index: %w", err)
	}

	auditIdx := mongo.IndexModel{Keys: bson.D{{Key: "timestamp", Value: -1}}}
	if _, err := s.db.Collection(auditCollection).Indexes().CreateOne(ctx, auditIdx); err != nil {
		return fmt.Errorf("failed to create audit index: %w", err)
	}
	return nil
}

func (s *Store) ListRooms(ctx context.Context) ([]models.Room, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.db.Collection(roomsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}

	var rooms []models.Room
	if err := cursor.All(ctx, &rooms); err != nil {
		return nil, fmt.Errorf("failed to decode rooms: %w", err)
	}
	return rooms, nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	var room models.Room
	err := s.db.Collection(roomsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&room)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NotFound("room", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find room: %w", err)
	}
	return &room, nil
}

func (s *Store) CreateRoom(ctx context.Context, room *models.Room) error {
	_, err := s.db.Collection(roomsCollection).InsertOne(ctx, room)
	if mongo.IsDuplicateKeyError(err) {
		return models.DuplicateName("room", room.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

func (s *Store) SetTargetTemp(ctx context.Context, id string, value float64) error {
	return s.updateRoom(ctx, id, bson.M{"$set": bson.M{"target_temp": value}})
}

func (s *Store) AssignProduct(ctx context.Context, id string, productID *string) error {
	if productID == nil {
		return s.updateRoom(ctx, id, bson.M{"$unset": bson.M{"product_id": ""}})
	}
	return s.updateRoom(ctx, id, bson.M{"$set": bson.M{"product_id": *productID}})
}

func (s *Store) UpdateReading(ctx context.Context, id string, temp, humidity float64, at time.Time) error {
	return s.updateRoom(ctx, id, bson.M{"$set": bson.M{
		"current_temp":     temp,
		"current_humidity": humidity,
		"last_updated":     at,
	}})
}

func (s *Store) updateRoom(ctx context.Context, id string, update bson.M) error {
	result, err := s.db.Collection(roomsCollection).UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.NotFound("room", id)
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := s.db.Collection(productsCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	var products []models.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.findProduct(ctx, bson.M{"_id": id}, id, options.FindOne())
}

func (s *Store) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	return s.findProduct(ctx, bson.M{"name": name}, name, options.FindOne().SetCollation(&caseInsensitive))
}

func (s *Store) findProduct(ctx context.Context, filter bson.M, ref string, opts *options.FindOneOptions) (*models.Product, error) {
	var product models.Product
	err := s.db.Collection(productsCollection).FindOne(ctx, filter, opts).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.NotFound("product", ref)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return &product, nil
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.db.Collection(productsCollection).InsertOne(ctx, product)
	if mongo.IsDuplicateKeyError(err) {
		return models.DuplicateName("product", product.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *Store) AppendSample(ctx context.Context, sample *models.SensorSample) error {
	if _, err := s.db.Collection(samplesCollection).InsertOne(ctx, sample); err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}
	return nil
}

func (s *Store) RecentSamples(ctx context.Context, roomID string, limit int) ([]models.SensorSample, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(samplesCollection).Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}

	var samples []models.SensorSample
	if err := cursor.All(ctx, &samples); err != nil {
		return nil, fmt.Errorf("failed to decode samples: %w", err)
	}
	return samples, nil
}

func (s *Store) PruneSamples(ctx context.Context, roomID string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	coll := s.db.Collection(samplesCollection)
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(keep)).
		SetProjection(bson.M{"_id": 1})
	cursor, err := coll.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to query stale samples: %w", err)
	}

	var stale []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &stale); err != nil {
		return 0, fmt.Errorf("failed to decode stale samples: %w", err)
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]string, 0, len(stale))
	for _, doc := range stale {
		ids = append(ids, doc.ID)
	}
	result, err := coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return 0, fmt.Errorf("failed to prune samples: %w", err)
	}

	s.logger.Debug("pruned samples", zap.String("room_id", roomID), zap.Int64("removed", result.DeletedCount))
	return result.DeletedCount, nil
}

func (s *Store) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	if _, err := s.db.Collection(auditCollection).InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(auditCollection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}

	var entries []models.AuditEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit log: %w", err)
	}
	return entries, nil
}

// Close closes the MongoDB connection.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
