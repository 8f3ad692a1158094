package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/domain/models"
)

// Timestamps are stored as fixed-width UTC text so that lexical order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE,
	min_temp REAL NOT NULL,
	max_temp REAL NOT NULL,
	ideal_humidity REAL NOT NULL,
	shelf_life_days INTEGER NOT NULL,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rooms (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL UNIQUE COLLATE NOCASE,
	current_temp REAL NOT NULL,
	target_temp REAL NOT NULL,
	current_humidity REAL NOT NULL,
	product_id TEXT,
	last_updated TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sensor_samples (
	id TEXT PRIMARY KEY,
	room_id TEXT NOT NULL,
	temperature REAL NOT NULL,
	humidity REAL NOT NULL,
	timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sensor_samples_room_ts ON sensor_samples(room_id, timestamp);

CREATE TABLE IF NOT EXISTS audit_log (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	action TEXT NOT NULL,
	timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_log_ts ON audit_log(timestamp);
`

// Store implements repository.Store on SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStore opens (creating if needed) the SQLite database at dbPath.
func NewStore(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Debug("sqlite schema ready", zap.String("db_path", dbPath))
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, current_temp, target_temp, current_humidity, product_id, last_updated
		FROM rooms
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []models.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, *room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rooms: %w", err)
	}
	return rooms, nil
}

func (s *Store) GetRoom(ctx context.Context, id string) (*models.Room, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, current_temp, target_temp, current_humidity, product_id, last_updated
		FROM rooms
		WHERE id = ?`, id)

	room, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("room", id)
	}
	return room, err
}

func (s *Store) CreateRoom(ctx context.Context, room *models.Room) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rooms (id, name, current_temp, target_temp, current_humidity, product_id, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		room.ID, room.Name, room.CurrentTemp, room.TargetTemp, room.CurrentHumidity,
		nullString(room.ProductID), formatTime(room.LastUpdated))
	if isUniqueViolation(err) {
		return models.DuplicateName("room", room.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert room: %w", err)
	}
	return nil
}

func (s *Store) SetTargetTemp(ctx context.Context, id string, value float64) error {
	return s.execRoomUpdate(ctx, id, `UPDATE rooms SET target_temp = ? WHERE id = ?`, value, id)
}

func (s *Store) AssignProduct(ctx context.Context, id string, productID *string) error {
	return s.execRoomUpdate(ctx, id, `UPDATE rooms SET product_id = ? WHERE id = ?`, nullString(productID), id)
}

func (s *Store) UpdateReading(ctx context.Context, id string, temp, humidity float64, at time.Time) error {
	return s.execRoomUpdate(ctx, id,
		`UPDATE rooms SET current_temp = ?, current_humidity = ?, last_updated = ? WHERE id = ?`,
		temp, humidity, formatTime(at), id)
}

func (s *Store) execRoomUpdate(ctx context.Context, id, query string, args ...any) error {
	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update room: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return models.NotFound("room", id)
	}
	return nil
}

func (s *Store) ListProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, min_temp, max_temp, ideal_humidity, shelf_life_days, created_at
		FROM products
		ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *product)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}
	return products, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.getProduct(ctx, "id", id)
}

func (s *Store) GetProductByName(ctx context.Context, name string) (*models.Product, error) {
	return s.getProduct(ctx, "name", name)
}

func (s *Store) getProduct(ctx context.Context, column, value string) (*models.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, min_temp, max_temp, ideal_humidity, shelf_life_days, created_at
		FROM products
		WHERE `+column+` = ?`, value)

	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NotFound("product", value)
	}
	return product, err
}

func (s *Store) CreateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, name, min_temp, max_temp, ideal_humidity, shelf_life_days, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		product.ID, product.Name, product.MinTemp, product.MaxTemp, product.IdealHumidity,
		product.ShelfLifeDays, formatTime(product.CreatedAt))
	if isUniqueViolation(err) {
		return models.DuplicateName("product", product.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (s *Store) AppendSample(ctx context.Context, sample *models.SensorSample) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sensor_samples (id, room_id, temperature, humidity, timestamp)
		VALUES (?, ?, ?, ?, ?)`,
		sample.ID, sample.RoomID, sample.Temperature, sample.Humidity, formatTime(sample.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}
	return nil
}

func (s *Store) RecentSamples(ctx context.Context, roomID string, limit int) ([]models.SensorSample, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, temperature, humidity, timestamp
		FROM sensor_samples
		WHERE room_id = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, roomID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []models.SensorSample
	for rows.Next() {
		var sample models.SensorSample
		var ts string
		if err := rows.Scan(&sample.ID, &sample.RoomID, &sample.Temperature, &sample.Humidity, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		if sample.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate samples: %w", err)
	}
	return samples, nil
}

func (s *Store) PruneSamples(ctx context.Context, roomID string, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM sensor_samples
		WHERE room_id = ? AND rowid NOT IN (
			SELECT rowid FROM sensor_samples
			WHERE room_id = ?
			ORDER BY timestamp DESC, rowid DESC
			LIMIT ?
		)`, roomID, roomID, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune samples: %w", err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return removed, nil
}

func (s *Store) AppendAudit(ctx context.Context, entry *models.AuditEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, username, action, timestamp) VALUES (?, ?, ?, ?)`,
		entry.ID, entry.User, entry.Action, formatTime(entry.Timestamp))
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

func (s *Store) ListAudit(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, username, action, timestamp
		FROM audit_log
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		var entry models.AuditEntry
		var ts string
		if err := rows.Scan(&entry.ID, &entry.User, &entry.Action, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if entry.Timestamp, err = parseTime(ts); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit log: %w", err)
	}
	return entries, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(row scanner) (*models.Room, error) {
	var room models.Room
	var productID sql.NullString
	var lastUpdated string

	err := row.Scan(&room.ID, &room.Name, &room.CurrentTemp, &room.TargetTemp, &room.CurrentHumidity, &productID, &lastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan room: %w", err)
	}

	if productID.Valid {
		room.ProductID = &productID.String
	}
	if room.LastUpdated, err = parseTime(lastUpdated); err != nil {
		return nil, err
	}
	return &room, nil
}

func scanProduct(row scanner) (*models.Product, error) {
	var product models.Product
	var createdAt string

	err := row.Scan(&product.ID, &product.Name, &product.MinTemp, &product.MaxTemp,
		&product.IdealHumidity, &product.ShelfLifeDays, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan product: %w", err)
	}

	if product.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &product, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return t, nil
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
