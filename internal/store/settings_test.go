package store

import (
	"context"
	"testing"

	"github.com/erazemk/hsetracker/internal/db"
)

func TestGetJWTSecret_GeneratesAndPersists(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	secret1, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(secret1) != 64 { // 32 bytes = 64 hex chars
		t.Fatalf("expected 64 hex chars, got %d", len(secret1))
	}

	secret2, err := GetJWTSecret(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if secret1 != secret2 {
		t.Fatalf("expected same secret, got %q and %q", secret1, secret2)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	value, err := GetSetting(ctx, database, SettingLastRollover)
	if err != nil || value != "" {
		t.Fatalf("expected empty unset setting, got %q (%v)", value, err)
	}

	SetSetting(ctx, database, SettingLastRollover, "2024-01-10")
	SetSetting(ctx, database, SettingLastRollover, "2024-01-11")

	value, _ = GetSetting(ctx, database, SettingLastRollover)
	if value != "2024-01-11" {
		t.Errorf("expected 2024-01-11, got %q", value)
	}
}
