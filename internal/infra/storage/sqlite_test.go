package storage

import (
	"os"
	"testing"

	"order_bot/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *Store {
	dbName := "test.db"
	db, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.AutoMigrate(&SnapshotRecord{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	t.Cleanup(func() {
		os.Remove(dbName)
	})

	return &Store{db: db}
}

func sampleSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		OrderName:    "Friday lunch",
		OrderCreator: "U1",
		OrderState:   domain.OrderStateOpen,
		OrderDetails: map[string]domain.SnapshotItem{
			"Burger": {
				Price:                100,
				Amount:               2,
				PlatformParticipants: map[string]int64{"U2": 2},
				FreeformParticipants: map[string]int64{},
			},
		},
	}
}

func TestSaveAndGetSnapshot(t *testing.T) {
	s := setupTestDB(t)

	if err := s.SaveSnapshot("O1", sampleSnapshot()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	fetched, err := s.GetSnapshot("O1")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if fetched == nil {
		t.Fatal("fetched snapshot is nil")
	}
	if fetched.OrderName != "Friday lunch" || fetched.OrderCreator != "U1" {
		t.Errorf("unexpected snapshot: %+v", fetched)
	}
	if fetched.OrderDetails["Burger"].PlatformParticipants["U2"] != 2 {
		t.Error("participant quantities lost in persistence")
	}
}

func TestGetSnapshotMissing(t *testing.T) {
	s := setupTestDB(t)

	fetched, err := s.GetSnapshot("nope")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if fetched != nil {
		t.Error("expected nil for a missing record")
	}
}

func TestSaveSnapshotOverwrites(t *testing.T) {
	s := setupTestDB(t)
	s.SaveSnapshot("O1", sampleSnapshot())

	updated := sampleSnapshot()
	updated.OrderState = domain.OrderStateClosed
	if err := s.SaveSnapshot("O1", updated); err != nil {
		t.Fatalf("second SaveSnapshot failed: %v", err)
	}

	fetched, _ := s.GetSnapshot("O1")
	if fetched.OrderState != domain.OrderStateClosed {
		t.Errorf("expected closed state, got %s", fetched.OrderState)
	}

	ids, err := s.ListOrderIDs()
	if err != nil {
		t.Fatalf("ListOrderIDs failed: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("expected a single record after overwrite, got %d", len(ids))
	}
}

func TestDeleteSnapshot(t *testing.T) {
	s := setupTestDB(t)
	s.SaveSnapshot("O1", sampleSnapshot())

	if err := s.DeleteSnapshot("O1"); err != nil {
		t.Fatalf("DeleteSnapshot failed: %v", err)
	}

	fetched, err := s.GetSnapshot("O1")
	if err != nil {
		t.Fatalf("GetSnapshot after delete failed: %v", err)
	}
	if fetched != nil {
		t.Error("expected snapshot to be deleted, but found record")
	}
}

func TestListOrderIDs(t *testing.T) {
	s := setupTestDB(t)
	s.SaveSnapshot("O1", sampleSnapshot())
	s.SaveSnapshot("O2", sampleSnapshot())

	ids, err := s.ListOrderIDs()
	if err != nil {
		t.Fatalf("ListOrderIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("expected 2 ids, got %d", len(ids))
	}
}
