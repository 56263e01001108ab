package store

import (
	"context"
	"errors"
	"testing"

	"github.com/erazemk/hsetracker/internal/db"
	"github.com/erazemk/hsetracker/internal/model"
)

func TestCreateAndGetWorker(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	worker, err := CreateWorker(ctx, database, "Ana Novak", "Welder", 39, model.DefaultEquipmentTypes)
	if err != nil {
		t.Fatalf("CreateWorker: %v", err)
	}
	if worker.Name != "Ana Novak" {
		t.Errorf("expected name 'Ana Novak', got %q", worker.Name)
	}
	if worker.Position != "Welder" || worker.ShoeSize != 39 {
		t.Errorf("unexpected worker fields: %+v", worker)
	}

	got, _ := GetWorker(ctx, database, worker.ID)
	if got.Name != "Ana Novak" {
		t.Errorf("expected name 'Ana Novak', got %q", got.Name)
	}

	missing, err := GetWorker(ctx, database, 999)
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for missing worker, got %v, %v", missing, err)
	}
}

func TestCreateWorkerSeedsEquipmentSlots(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	worker, _ := CreateWorker(ctx, database, "Ana", "", 0, []string{"Helmet", "Gloves"})

	record, err := GetEquipmentRecord(ctx, database, worker.ID)
	if err != nil {
		t.Fatalf("GetEquipmentRecord: %v", err)
	}
	if len(record.Equipment) != 2 {
		t.Fatalf("expected 2 slots, got %d", len(record.Equipment))
	}
	for _, e := range record.Equipment {
		if e.Quantity != 0 || e.ReceptionDate != "" || e.ValidityDate != "" || e.Status != "" {
			t.Errorf("expected empty slot, got %+v", e)
		}
	}
}

func TestListWorkersSearch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateWorker(ctx, database, "Ana Novak", "Welder", 39, nil)
	CreateWorker(ctx, database, "Marko Kranjc", "Electrician", 44, nil)

	all, _ := ListWorkers(ctx, database, "")
	if len(all) != 2 {
		t.Errorf("expected 2 workers, got %d", len(all))
	}

	found, _ := ListWorkers(ctx, database, "electr")
	if len(found) != 1 || found[0].Name != "Marko Kranjc" {
		t.Errorf("expected Marko Kranjc, got %v", found)
	}
}

func TestUpdateWorker(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	worker, _ := CreateWorker(ctx, database, "Old", "", 0, nil)
	if err := UpdateWorker(ctx, database, worker.ID, "New", "Foreman", 42); err != nil {
		t.Fatalf("UpdateWorker: %v", err)
	}

	got, _ := GetWorker(ctx, database, worker.ID)
	if got.Name != "New" || got.Position != "Foreman" || got.ShoeSize != 42 {
		t.Errorf("unexpected worker after update: %+v", got)
	}

	if err := UpdateWorker(ctx, database, 999, "x", "", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSoftDeleteWorker(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	worker, _ := CreateWorker(ctx, database, "Delete Me", "", 0, nil)
	if err := DeleteWorker(ctx, database, worker.ID); err != nil {
		t.Fatalf("DeleteWorker: %v", err)
	}

	workers, _ := ListWorkers(ctx, database, "")
	if len(workers) != 0 {
		t.Errorf("expected 0 workers after soft delete, got %d", len(workers))
	}

	got, _ := GetWorker(ctx, database, worker.ID)
	if got == nil || got.DeletedAt == nil {
		t.Error("expected soft-deleted worker to still be fetchable by ID")
	}

	if err := DeleteWorker(ctx, database, worker.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
