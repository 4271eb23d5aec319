package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"order_bot/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SnapshotRecord is the persisted form of one order's last-applied
// snapshot, keyed by order id. The platform carries the same snapshot
// on the pinned message; this table is the gateway's local copy so
// every forwarded event can attach it after a restart.
type SnapshotRecord struct {
	OrderID   string `gorm:"primaryKey"`
	Payload   []byte
	UpdatedAt time.Time
}

// Store persists order snapshots in a local SQLite database.
type Store struct {
	db *gorm.DB
}

// NewStore opens (or creates) the snapshot database.
func NewStore() (*Store, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Pure Go SQLite
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&SnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Store{db: db}, nil
}

func getDBPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "OrderBot", "data", "orderbot.db"), nil
}

// SaveSnapshot writes the latest snapshot for an order.
func (s *Store) SaveSnapshot(id domain.OrderID, snap *domain.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	rec := SnapshotRecord{
		OrderID:   string(id),
		Payload:   payload,
		UpdatedAt: time.Now(),
	}
	return s.db.Save(&rec).Error
}

// GetSnapshot loads the last snapshot for an order. A missing record
// is not an error: the caller decides whether that is corruption.
func (s *Store) GetSnapshot(id domain.OrderID) (*domain.Snapshot, error) {
	var rec SnapshotRecord
	err := s.db.First(&rec, "order_id = ?", string(id)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap domain.Snapshot
	if err := json.Unmarshal(rec.Payload, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot for %s: %w", id, err)
	}
	return &snap, nil
}

// DeleteSnapshot removes an order's record after a close has been
// fully published.
func (s *Store) DeleteSnapshot(id domain.OrderID) error {
	return s.db.Where("order_id = ?", string(id)).Delete(&SnapshotRecord{}).Error
}

// ListOrderIDs returns every order id with a persisted snapshot.
func (s *Store) ListOrderIDs() ([]domain.OrderID, error) {
	var recs []SnapshotRecord
	if err := s.db.Select("order_id").Find(&recs).Error; err != nil {
		return nil, err
	}
	ids := make([]domain.OrderID, 0, len(recs))
	for _, rec := range recs {
		ids = append(ids, domain.OrderID(rec.OrderID))
	}
	return ids, nil
}
