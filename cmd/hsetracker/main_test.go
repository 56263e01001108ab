package main

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/erazemk/hsetracker/internal/auth"
	"github.com/erazemk/hsetracker/internal/db"
	"github.com/erazemk/hsetracker/internal/model"
	"github.com/erazemk/hsetracker/internal/store"
)

func TestLevelRouter(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := slog.New(newLevelRouter(&stdout, &stderr)).With("component", "test")

	logger.Debug("hidden")
	logger.Info("started")
	logger.Warn("slow tick")
	logger.Error("tick failed")

	out, errOut := stdout.String(), stderr.String()
	if strings.Contains(out, "hidden") || strings.Contains(errOut, "hidden") {
		t.Error("debug records should be dropped")
	}
	if !strings.Contains(out, "started") || !strings.Contains(out, "slow tick") {
		t.Errorf("stdout = %q, want info and warn records", out)
	}
	if strings.Contains(out, "tick failed") {
		t.Error("error record leaked to stdout")
	}
	if !strings.Contains(errOut, "tick failed") || !strings.Contains(errOut, "component=test") {
		t.Errorf("stderr = %q, want error record with attrs", errOut)
	}
}

func TestGeneratePassword(t *testing.T) {
	a, err := generatePassword(16)
	if err != nil {
		t.Fatal(err)
	}
	b, err := generatePassword(16)
	if err != nil {
		t.Fatal(err)
	}
	if len(a) != 16 {
		t.Errorf("len = %d, want 16", len(a))
	}
	if a == b {
		t.Error("two generated passwords are equal")
	}
}

func TestInitDatabase(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "hse.sqlite3")

	database, password, err := initDatabase(ctx, path, "Admin")
	if err != nil {
		t.Fatalf("initDatabase: %v", err)
	}
	defer database.Close()

	user, err := store.GetUserByUsername(ctx, database, "Admin")
	if err != nil || user == nil {
		t.Fatalf("admin not created: %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Errorf("role = %q, want admin", user.Role)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		t.Error("printed password does not match stored hash")
	}

	var buf bytes.Buffer
	printInitResult(&buf, path, "Admin", password)
	if !strings.Contains(buf.String(), password) {
		t.Error("init output does not contain the password")
	}
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	database := db.NewTestDB(t)

	w, err := store.CreateWorker(ctx, database, "Ana Novak", "Welder", 39, []string{"Helmet", "Gloves", "Vest"})
	if err != nil {
		t.Fatal(err)
	}
	err = store.SaveEquipmentRecord(ctx, database, w.ID, []model.Equipment{
		{Name: "Helmet", Quantity: 1, ReceptionDate: "2023-01-01", ValidityDate: "2024-01-09"},
		{Name: "Gloves", Quantity: 2, ReceptionDate: "2023-06-01", ValidityDate: "2024-01-11"},
	})
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	now := time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)
	expired, err := check(ctx, &buf, database, now, time.UTC)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if expired != 1 {
		t.Errorf("expired = %d, want 1", expired)
	}

	out := buf.String()
	for _, want := range []string{"Ana Novak", "Expired", "Expires tomorrow"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Vest") {
		t.Errorf("unset slot should not be listed:\n%s", out)
	}
}
